package config

// Config is the top-level pipeline configuration parsed from YAML.
type Config struct {
	Design        Design                 `yaml:"design"`
	OutputDir     string                 `yaml:"output_dir"`
	Tools         Tools                  `yaml:"tools"`
	StageDefaults StageDefaults          `yaml:"stage_defaults"`
	Stages        map[string]StageConfig `yaml:"stages"`

	resolved bool
}

// Design holds the per-design inputs: structures, hotspots, loops, and counts.
type Design struct {
	Name          string `yaml:"name"`
	FrameworkPDB  string `yaml:"framework_pdb"`
	TargetPDB     string `yaml:"target_pdb"`
	Hotspots      string `yaml:"hotspots"`
	DesignLoops   string `yaml:"design_loops"`
	NumDesigns    int    `yaml:"num_designs"`
	SeqsPerStruct int    `yaml:"seqs_per_struct"`
	LoopFilter    string `yaml:"loop_filter"`
}

// Tools locates the Python interpreter and the three inference entry points.
type Tools struct {
	Python      string `yaml:"python"`
	RFdiffusion string `yaml:"rfdiffusion"`
	ProteinMPNN string `yaml:"proteinmpnn"`
	RF2         string `yaml:"rf2"`
}

// StageDefaults holds defaults applied to stages without their own values.
type StageDefaults struct {
	Timeout string `yaml:"timeout"`
}

// StageConfig holds optional per-stage overrides. Stage keys are
// "rfdiffusion", "proteinmpnn", and "rf2".
type StageConfig struct {
	Timeout      string  `yaml:"timeout"`
	CkptOverride string  `yaml:"ckpt_override"` // rfdiffusion only
	Temperature  float64 `yaml:"temperature"`   // proteinmpnn only
	Cautious     bool    `yaml:"cautious"`      // rf2 only
	NumRecycles  int     `yaml:"num_recycles"`  // rf2 only
}

// StageNames are the three pipeline stages in execution order.
var StageNames = []string{"rfdiffusion", "proteinmpnn", "rf2"}

// Stage returns the StageConfig for the named stage, zero-valued if unset.
func (c *Config) Stage(name string) StageConfig {
	if c.Stages == nil {
		return StageConfig{}
	}
	return c.Stages[name]
}

// Resolved reports whether Resolve has been applied.
func (c *Config) Resolved() bool {
	return c.resolved
}
