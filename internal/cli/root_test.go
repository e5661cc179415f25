package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	resetHelpFlags(rootCmd)
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetHelpFlags clears the sticky --help flag on the shared command tree so
// one test's --help invocation doesn't short-circuit later executions.
func resetHelpFlags(c *cobra.Command) {
	if f := c.Flags().Lookup("help"); f != nil {
		_ = f.Value.Set("false")
		f.Changed = false
	}
	for _, sub := range c.Commands() {
		resetHelpFlags(sub)
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersion("test-version")
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "test-version") {
		t.Errorf("expected version output to contain 'test-version', got: %s", out)
	}
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedSubcommands := []string{
		"run", "batch", "config", "status", "history", "version",
	}
	for _, sub := range expectedSubcommands {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing subcommand %q", sub)
		}
	}
}

func TestConfigSubcommands(t *testing.T) {
	for _, sub := range []string{"validate", "show"} {
		out, err := executeCommand("config", sub, "--help")
		if err != nil {
			t.Errorf("config %s --help failed: %v", sub, err)
		}
		if out == "" {
			t.Errorf("config %s --help produced no output", sub)
		}
	}
}

func TestExitCode(t *testing.T) {
	if got := ExitCode(&ExitError{Code: 3, Err: errors.New("x")}); got != 3 {
		t.Errorf("ExitCode = %d, want 3", got)
	}
	if got := ExitCode(fmt.Errorf("wrap: %w", &ExitError{Code: 4, Err: errors.New("x")})); got != 4 {
		t.Errorf("ExitCode through wrap = %d, want 4", got)
	}
	if got := ExitCode(errors.New("plain")); got != 1 {
		t.Errorf("ExitCode for plain error = %d, want 1", got)
	}
}

func writeRunInputs(t *testing.T) (framework string, target string) {
	t.Helper()
	dir := t.TempDir()
	framework = filepath.Join(dir, "hl.pdb")
	target = filepath.Join(dir, "t.pdb")
	for _, p := range []string{framework, target} {
		if err := os.WriteFile(p, []byte("ATOM\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return framework, target
}

func TestRunDryRunFromFlags(t *testing.T) {
	framework, target := writeRunInputs(t)
	out, err := executeCommand("run",
		"--name", "9gox",
		"--framework", framework,
		"--target", target,
		"--hotspots", "T305,T456",
		"--loops", "H1:7,H2:6,H3:5-13",
		"--num-designs", "2",
		"--seqs-per-struct", "10",
		"--output", filepath.Join(t.TempDir(), "out"),
		"--dry-run",
	)
	if err != nil {
		t.Fatalf("run --dry-run error: %v\noutput: %s", err, out)
	}

	for _, want := range []string{
		"rfdiffusion",
		"proteinmpnn",
		"rf2",
		"ppi.hotspot_res=[T305,T456]",
		"antibody.design_loops=[H1:7,H2:6,H3:5-13]",
		"-seqs_per_struct 10",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dry-run output missing %q:\n%s", want, out)
		}
	}
}

func TestRunRejectsInvalidFlags(t *testing.T) {
	framework, target := writeRunInputs(t)
	_, err := executeCommand("run",
		"--name", "bad",
		"--framework", framework,
		"--target", target,
		"--hotspots", "not-a-hotspot",
		"--loops", "H1:7",
		"--num-designs", "1",
		"--output", t.TempDir(),
		"--dry-run",
	)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if got := ExitCode(err); got != 1 {
		t.Errorf("configuration error exit code = %d, want 1", got)
	}
}

func TestConfigValidateCommand(t *testing.T) {
	framework, target := writeRunInputs(t)
	content := fmt.Sprintf(`
design:
  name: t1
  framework_pdb: %s
  target_pdb: %s
  hotspots: "A1"
  design_loops: "H3:5-13"
  num_designs: 1
output_dir: %s
`, framework, target, t.TempDir())
	path := filepath.Join(t.TempDir(), "rfab.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := executeCommand("config", "validate", path); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("design:\n  name: x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := executeCommand("config", "validate", bad); err == nil {
		t.Error("invalid config accepted")
	}
}
