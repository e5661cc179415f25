package run

// State is the persisted record for a single pipeline run, stored as
// run.json under the run's output directory.
type State struct {
	RunID        string        `json:"run_id"`
	Design       string        `json:"design"`
	Status       string        `json:"status"` // "pending", "in_progress", "completed", "failed"
	CurrentStage string        `json:"current_stage,omitempty"`
	Stages       []StageRecord `json:"stages"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
}

// StageRecord is the persisted outcome of one completed stage.
type StageRecord struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Status    string `json:"status"` // "succeeded", "failed"
	ExitCode  int    `json:"exit_code"`
	Duration  string `json:"duration"`
	Error     string `json:"error,omitempty"`
	StdoutLog string `json:"stdout_log,omitempty"`
	StderrLog string `json:"stderr_log,omitempty"`
}
