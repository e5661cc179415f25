package run

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store manages run state and captured stage logs under one run's output
// directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at the run's output directory.
func NewStore(outputDir string) *Store {
	return &Store{dir: outputDir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) statePath() string {
	return filepath.Join(s.dir, "run.json")
}

// Create initialises a new run record on disk. An existing completed or
// failed run record is replaced; output from prior stages is retained.
func (s *Store) Create(runID string, designName string) (*State, error) {
	if err := os.MkdirAll(filepath.Join(s.dir, "logs"), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir logs: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	st := &State{
		RunID:     runID,
		Design:    designName,
		Status:    "pending",
		Stages:    []StageRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := WriteJSON(s.statePath(), st); err != nil {
		return nil, fmt.Errorf("write run.json: %w", err)
	}
	return st, nil
}

// Get reads the run state.
func (s *Store) Get() (*State, error) {
	var st State
	if err := ReadJSON(s.statePath(), &st); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no run found in %s", s.dir)
		}
		return nil, err
	}
	return &st, nil
}

// Update performs an atomic read-modify-write of the run state.
func (s *Store) Update(fn func(*State)) error {
	st, err := s.Get()
	if err != nil {
		return err
	}
	fn(st)
	st.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return WriteJSON(s.statePath(), st)
}

// StageLogPaths returns the stdout and stderr log paths for a stage.
func (s *Store) StageLogPaths(index int, name string) (stdout string, stderr string) {
	base := filepath.Join(s.dir, "logs", fmt.Sprintf("%d-%s", index, name))
	return base + ".stdout.log", base + ".stderr.log"
}

// SaveStageLogs writes the captured child-process output for a stage.
func (s *Store) SaveStageLogs(index int, name string, stdout string, stderr string) (string, string, error) {
	outPath, errPath := s.StageLogPaths(index, name)
	if err := WriteAtomic(outPath, []byte(stdout)); err != nil {
		return "", "", fmt.Errorf("save stdout log: %w", err)
	}
	if err := WriteAtomic(errPath, []byte(stderr)); err != nil {
		return "", "", fmt.Errorf("save stderr log: %w", err)
	}
	return outPath, errPath, nil
}
