package models

// Stage is one discrete phase of the analysis pipeline.
type Stage string

const (
	StageIdle          Stage = "IDLE"
	StageInit          Stage = "INIT"
	StageHashing       Stage = "HASHING"
	StageLoadingModels Stage = "LOADING_MODELS"
	StageInference     Stage = "INFERENCE"
	StageComplete      Stage = "COMPLETE"
	StageFailed        Stage = "FAILED"
)

// AnalysisState is the pipeline progress record. It is owned and mutated
// exclusively by the orchestrator; everyone else sees copies taken with
// Clone, which they must treat as immutable snapshots.
type AnalysisState struct {
	IsRunning    bool     `json:"isRunning"`
	Progress     int      `json:"progress"`
	CurrentStage Stage    `json:"currentStage"`
	Log          []string `json:"log"`
}

// NewIdleState returns a fresh state for a newly selected file.
func NewIdleState() AnalysisState {
	return AnalysisState{
		IsRunning:    false,
		Progress:     0,
		CurrentStage: StageIdle,
		Log:          []string{},
	}
}

// Clone returns a snapshot with its own copy of the log.
func (s AnalysisState) Clone() AnalysisState {
	out := s
	out.Log = make([]string, len(s.Log))
	copy(out.Log, s.Log)
	return out
}
