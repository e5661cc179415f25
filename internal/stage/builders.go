package stage

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/partrita/RFantibody/internal/config"
	"github.com/partrita/RFantibody/internal/design"
)

// Build derives the full ordered stage list from a resolved config.
// It fails if the config has not been resolved or its design tokens do not
// parse; nothing here touches the filesystem.
func Build(cfg *config.Config) ([]Stage, error) {
	if !cfg.Resolved() {
		return nil, fmt.Errorf("config must be resolved before building stages")
	}

	diffusion, err := buildRFdiffusion(cfg)
	if err != nil {
		return nil, fmt.Errorf("build rfdiffusion stage: %w", err)
	}
	mpnn, err := buildProteinMPNN(cfg, diffusion.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("build proteinmpnn stage: %w", err)
	}
	rf2 := buildRF2(cfg, mpnn.OutputDir)

	return []Stage{diffusion, mpnn, rf2}, nil
}

// buildRFdiffusion assembles the structure-diffusion invocation. RFdiffusion
// takes Hydra-style key=value overrides; hotspots and loops are serialized
// as bracketed list literals.
func buildRFdiffusion(cfg *config.Config) (Stage, error) {
	hotspots, err := design.ParseHotspots(cfg.Design.Hotspots)
	if err != nil {
		return Stage{}, err
	}
	loops, err := design.ParseLoops(cfg.Design.DesignLoops)
	if err != nil {
		return Stage{}, err
	}

	outDir := filepath.Join(cfg.OutputDir, "rfdiffusion")
	args := []string{
		cfg.Tools.RFdiffusion,
		"--config-name", "antibody",
		"antibody.target_pdb=" + cfg.Design.TargetPDB,
		"antibody.framework_pdb=" + cfg.Design.FrameworkPDB,
	}
	if ckpt := cfg.Stage("rfdiffusion").CkptOverride; ckpt != "" {
		args = append(args, "inference.ckpt_override_path="+ckpt)
	}
	args = append(args,
		"ppi.hotspot_res="+hotspots.String(),
		"antibody.design_loops="+loops.String(),
		"inference.num_designs="+strconv.Itoa(cfg.Design.NumDesigns),
		"inference.output_prefix="+filepath.Join(outDir, cfg.Design.Name),
	)

	return Stage{
		Index:     1,
		Name:      "rfdiffusion",
		Program:   cfg.Tools.Python,
		Args:      args,
		OutputDir: outDir,
		Timeout:   cfg.StageTimeout("rfdiffusion"),
	}, nil
}

// buildProteinMPNN assembles the sequence-design invocation. ProteinMPNN
// takes plain dash flags; its -pdbdir must be exactly the rfdiffusion
// output directory.
func buildProteinMPNN(cfg *config.Config, inDir string) (Stage, error) {
	filter, err := design.ParseLoopFilter(cfg.Design.LoopFilter)
	if err != nil {
		return Stage{}, err
	}

	outDir := filepath.Join(cfg.OutputDir, "proteinmpnn")
	args := []string{
		cfg.Tools.ProteinMPNN,
		"-pdbdir", inDir,
		"-outpdbdir", outDir,
		"-seqs_per_struct", strconv.Itoa(cfg.Design.SeqsPerStruct),
	}
	if len(filter) > 0 {
		args = append(args, "-loop_string", strings.Join(filter, ","))
	}
	if temp := cfg.Stage("proteinmpnn").Temperature; temp > 0 {
		args = append(args, "-temperature", strconv.FormatFloat(temp, 'g', -1, 64))
	}

	return Stage{
		Index:     2,
		Name:      "proteinmpnn",
		Program:   cfg.Tools.Python,
		Args:      args,
		OutputDir: outDir,
		Timeout:   cfg.StageTimeout("proteinmpnn"),
	}, nil
}

// buildRF2 assembles the structure-prediction invocation. Like rfdiffusion,
// rf2 takes Hydra-style overrides; its input.pdb_dir must be exactly the
// proteinmpnn output directory.
func buildRF2(cfg *config.Config, inDir string) Stage {
	outDir := filepath.Join(cfg.OutputDir, "rf2")
	args := []string{
		cfg.Tools.RF2,
		"input.pdb_dir=" + inDir,
		"output.pdb_dir=" + outDir,
	}
	sc := cfg.Stage("rf2")
	if sc.Cautious {
		args = append(args, "inference.cautious=True")
	}
	if sc.NumRecycles > 0 {
		args = append(args, "inference.num_recycles="+strconv.Itoa(sc.NumRecycles))
	}

	return Stage{
		Index:     3,
		Name:      "rf2",
		Program:   cfg.Tools.Python,
		Args:      args,
		OutputDir: outDir,
		Timeout:   cfg.StageTimeout("rf2"),
	}
}
