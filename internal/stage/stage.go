// Package stage builds the concrete command lines for the three pipeline
// stages. Building is a pure function of the resolved config: the same
// config always yields byte-identical argument lists, and each stage's
// output directory is the next stage's input directory.
package stage

import (
	"fmt"
	"strings"
	"time"
)

// Stage is one external-program invocation, fully resolved and immutable.
type Stage struct {
	Index     int    // 1-based position in the pipeline
	Name      string // "rfdiffusion", "proteinmpnn", "rf2"
	Program   string // executable, typically the Python interpreter
	Args      []string
	OutputDir string // directory this stage produces; input of the next
	Timeout   time.Duration
}

// Command renders the invocation as a single shell-style line for logs and
// dry runs.
func (s Stage) Command() string {
	return s.Program + " " + strings.Join(s.Args, " ")
}

func (s Stage) String() string {
	return fmt.Sprintf("stage %d (%s)", s.Index, s.Name)
}
