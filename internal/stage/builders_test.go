package stage

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/partrita/RFantibody/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Design: config.Design{
			Name:          "9gox",
			FrameworkPDB:  "/in/9gox_HL.pdb",
			TargetPDB:     "/in/9gox_T.pdb",
			Hotspots:      "T305,T456",
			DesignLoops:   "H1:7,H2:6,H3:5-13",
			NumDesigns:    20,
			SeqsPerStruct: 10,
		},
		OutputDir: "/out/9gox",
		Tools: config.Tools{
			Python:      "python3",
			RFdiffusion: "/opt/scripts/rfdiffusion_inference.py",
			ProteinMPNN: "/opt/scripts/proteinmpnn_interface_design.py",
			RF2:         "/opt/scripts/rf2_predict.py",
		},
	}
	if err := cfg.Resolve(); err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	return cfg
}

func findFlagValue(args []string, flag string) (string, bool) {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func findOverride(args []string, key string) (string, bool) {
	prefix := key + "="
	for _, a := range args {
		if strings.HasPrefix(a, prefix) {
			return strings.TrimPrefix(a, prefix), true
		}
	}
	return "", false
}

func TestBuildProducesThreeOrderedStages(t *testing.T) {
	stages, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(stages))
	}
	wantNames := []string{"rfdiffusion", "proteinmpnn", "rf2"}
	for i, s := range stages {
		if s.Index != i+1 {
			t.Errorf("stage %d has Index %d", i, s.Index)
		}
		if s.Name != wantNames[i] {
			t.Errorf("stage %d Name = %q, want %q", i, s.Name, wantNames[i])
		}
		if s.Program != "python3" {
			t.Errorf("stage %d Program = %q, want python3", i, s.Program)
		}
	}
}

func TestBuildRequiresResolvedConfig(t *testing.T) {
	cfg := testConfig(t)
	unresolved := &config.Config{Design: cfg.Design, OutputDir: cfg.OutputDir, Tools: cfg.Tools}
	if _, err := Build(unresolved); err == nil {
		t.Fatal("expected error for unresolved config")
	}
}

// Stage coupling: each stage's input directory must equal the previous
// stage's output directory, structurally.
func TestStageDirectoryCoupling(t *testing.T) {
	stages, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	mpnnIn, ok := findFlagValue(stages[1].Args, "-pdbdir")
	if !ok {
		t.Fatal("proteinmpnn args missing -pdbdir")
	}
	if mpnnIn != stages[0].OutputDir {
		t.Errorf("proteinmpnn -pdbdir = %q, want rfdiffusion output %q", mpnnIn, stages[0].OutputDir)
	}

	rf2In, ok := findOverride(stages[2].Args, "input.pdb_dir")
	if !ok {
		t.Fatal("rf2 args missing input.pdb_dir")
	}
	if rf2In != stages[1].OutputDir {
		t.Errorf("rf2 input.pdb_dir = %q, want proteinmpnn output %q", rf2In, stages[1].OutputDir)
	}
}

// Building twice from identical inputs must yield byte-identical argument
// lists: no timestamps, no map-order leakage.
func TestBuildIsDeterministic(t *testing.T) {
	first, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	second, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("second Build() error: %v", err)
	}
	for i := range first {
		if !reflect.DeepEqual(first[i].Args, second[i].Args) {
			t.Errorf("stage %d args differ between builds:\n%v\n%v", i+1, first[i].Args, second[i].Args)
		}
	}
}

func TestRFdiffusionArgs(t *testing.T) {
	cfg := testConfig(t)
	cfg.Design.Hotspots = "A175, S176"
	cfg.Design.DesignLoops = "H1:7,H2:5"
	cfg.Design.NumDesigns = 2

	stages, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	args := stages[0].Args

	hotspots, ok := findOverride(args, "ppi.hotspot_res")
	if !ok {
		t.Fatal("missing ppi.hotspot_res")
	}
	if hotspots != "[A175,S176]" {
		t.Errorf("hotspot_res = %q, want %q", hotspots, "[A175,S176]")
	}
	// Exactly one hotspot flag.
	count := 0
	for _, a := range args {
		if strings.HasPrefix(a, "ppi.hotspot_res=") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("found %d hotspot_res overrides, want 1", count)
	}

	loops, ok := findOverride(args, "antibody.design_loops")
	if !ok {
		t.Fatal("missing antibody.design_loops")
	}
	if loops != "[H1:7,H2:5]" {
		t.Errorf("design_loops = %q, want %q", loops, "[H1:7,H2:5]")
	}

	if n, _ := findOverride(args, "inference.num_designs"); n != "2" {
		t.Errorf("num_designs = %q, want 2", n)
	}
	prefix, _ := findOverride(args, "inference.output_prefix")
	if prefix != filepath.Join(stages[0].OutputDir, "9gox") {
		t.Errorf("output_prefix = %q, want under %q", prefix, stages[0].OutputDir)
	}
}

func TestRFdiffusionCkptOverride(t *testing.T) {
	cfg := testConfig(t)
	cfg.Stages = map[string]config.StageConfig{
		"rfdiffusion": {CkptOverride: "/weights/ab.pt"},
	}
	stages, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if v, ok := findOverride(stages[0].Args, "inference.ckpt_override_path"); !ok || v != "/weights/ab.pt" {
		t.Errorf("ckpt_override_path = %q (present=%v), want /weights/ab.pt", v, ok)
	}
}

func TestProteinMPNNArgs(t *testing.T) {
	cfg := testConfig(t)
	cfg.Design.SeqsPerStruct = 10
	cfg.Design.LoopFilter = "H1,H2,H3"

	stages, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	args := stages[1].Args

	if n, _ := findFlagValue(args, "-seqs_per_struct"); n != "10" {
		t.Errorf("-seqs_per_struct = %q, want 10", n)
	}
	if f, ok := findFlagValue(args, "-loop_string"); !ok || f != "H1,H2,H3" {
		t.Errorf("-loop_string = %q (present=%v), want H1,H2,H3 verbatim", f, ok)
	}
}

func TestProteinMPNNOmitsEmptyLoopFilter(t *testing.T) {
	stages, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if _, ok := findFlagValue(stages[1].Args, "-loop_string"); ok {
		t.Error("-loop_string should be omitted when no filter is configured")
	}
}

func TestRF2Args(t *testing.T) {
	cfg := testConfig(t)
	cfg.Stages = map[string]config.StageConfig{
		"rf2": {Cautious: true, NumRecycles: 10},
	}
	stages, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	args := stages[2].Args

	if out, _ := findOverride(args, "output.pdb_dir"); out != stages[2].OutputDir {
		t.Errorf("output.pdb_dir = %q, want %q", out, stages[2].OutputDir)
	}
	found := false
	for _, a := range args {
		if a == "inference.cautious=True" {
			found = true
		}
	}
	if !found {
		t.Error("missing inference.cautious=True")
	}
	if n, _ := findOverride(args, "inference.num_recycles"); n != "10" {
		t.Errorf("num_recycles = %q, want 10", n)
	}
}

func TestBuildRejectsBadTokens(t *testing.T) {
	cfg := testConfig(t)
	cfg.Design.Hotspots = "not-a-hotspot"
	if _, err := Build(cfg); err == nil {
		t.Error("expected error for malformed hotspots")
	}

	cfg = testConfig(t)
	cfg.Design.DesignLoops = "H1:9-5"
	if _, err := Build(cfg); err == nil {
		t.Error("expected error for inverted loop range")
	}
}
