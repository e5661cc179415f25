package config

import (
	"fmt"
	"time"

	"github.com/partrita/RFantibody/internal/design"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// knownStages is the set of stage keys accepted in the stages map.
var knownStages = map[string]bool{
	"rfdiffusion": true,
	"proteinmpnn": true,
	"rf2":         true,
}

// Validate checks a Config for structural and semantic errors before any
// stage runs. It returns a slice of all validation errors found (empty if
// valid).
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	if cfg.Design.Name == "" {
		errs = append(errs, ValidationError{Field: "design.name", Message: "is required"})
	}
	if cfg.Design.FrameworkPDB == "" {
		errs = append(errs, ValidationError{Field: "design.framework_pdb", Message: "is required"})
	}
	if cfg.Design.TargetPDB == "" {
		errs = append(errs, ValidationError{Field: "design.target_pdb", Message: "is required"})
	}
	if cfg.OutputDir == "" {
		errs = append(errs, ValidationError{Field: "output_dir", Message: "is required"})
	}
	if cfg.Design.NumDesigns <= 0 {
		errs = append(errs, ValidationError{Field: "design.num_designs", Message: "must be a positive integer"})
	}
	if cfg.Design.SeqsPerStruct <= 0 {
		errs = append(errs, ValidationError{Field: "design.seqs_per_struct", Message: "must be a positive integer"})
	}

	if cfg.Design.Hotspots == "" {
		errs = append(errs, ValidationError{Field: "design.hotspots", Message: "is required"})
	} else if _, err := design.ParseHotspots(cfg.Design.Hotspots); err != nil {
		errs = append(errs, ValidationError{Field: "design.hotspots", Message: err.Error()})
	}

	if cfg.Design.DesignLoops == "" {
		errs = append(errs, ValidationError{Field: "design.design_loops", Message: "is required"})
	} else if _, err := design.ParseLoops(cfg.Design.DesignLoops); err != nil {
		errs = append(errs, ValidationError{Field: "design.design_loops", Message: err.Error()})
	}

	if _, err := design.ParseLoopFilter(cfg.Design.LoopFilter); err != nil {
		errs = append(errs, ValidationError{Field: "design.loop_filter", Message: err.Error()})
	}

	if cfg.StageDefaults.Timeout != "" {
		if _, err := time.ParseDuration(cfg.StageDefaults.Timeout); err != nil {
			errs = append(errs, ValidationError{Field: "stage_defaults.timeout", Message: "invalid duration"})
		}
	}

	for name, sc := range cfg.Stages {
		if !knownStages[name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("stages.%s", name),
				Message: "unknown stage (want rfdiffusion, proteinmpnn, or rf2)",
			})
			continue
		}
		if sc.Timeout != "" {
			if _, err := time.ParseDuration(sc.Timeout); err != nil {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("stages.%s.timeout", name),
					Message: "invalid duration",
				})
			}
		}
		if sc.Temperature < 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("stages.%s.temperature", name),
				Message: "must not be negative",
			})
		}
		if sc.NumRecycles < 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("stages.%s.num_recycles", name),
				Message: "must not be negative",
			})
		}
	}

	return errs
}

// StageTimeout returns the effective timeout for the named stage: the
// per-stage override if set, otherwise the defaults, otherwise 2h.
func (c *Config) StageTimeout(name string) time.Duration {
	if sc := c.Stage(name); sc.Timeout != "" {
		if d, err := time.ParseDuration(sc.Timeout); err == nil {
			return d
		}
	}
	if c.StageDefaults.Timeout != "" {
		if d, err := time.ParseDuration(c.StageDefaults.Timeout); err == nil {
			return d
		}
	}
	return 2 * time.Hour
}
