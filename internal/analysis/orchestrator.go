package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/verilens/verilens/internal/classify"
	"github.com/verilens/verilens/internal/digest"
	"github.com/verilens/verilens/internal/models"
	"github.com/verilens/verilens/internal/report"
)

var (
	// ErrNoFileSelected is returned when a run is requested before a file
	// has been selected.
	ErrNoFileSelected = errors.New("no file selected")

	// ErrAnalysisRunning is returned when a run is requested while another
	// run is still in flight.
	ErrAnalysisRunning = errors.New("analysis already running")
)

// Fixed progress checkpoints per stage.
const (
	progressInit      = 0
	progressHashed    = 20
	progressWarmupA   = 40
	progressWarmupB   = 50
	progressInference = 90
	progressComplete  = 100
)

// Update is one observable pipeline event: a state snapshot, plus the
// published report on the final successful update.
type Update struct {
	State  models.AnalysisState
	Report *models.ForensicReport
}

// Orchestrator drives the staged analysis pipeline for one session:
// hashing, model warm-up, remote inference, report assembly. It owns the
// single mutable AnalysisState; everyone else reads snapshots.
//
// Exactly one run may be in flight at a time. Selecting a new file while a
// run is in flight supersedes it: the generation counter bumps and every
// late effect of the stale run is discarded before it can touch state.
type Orchestrator struct {
	digest     digest.Service
	classifier classify.Service
	timing     TimingPolicy
	normalizer *report.Normalizer

	mu         sync.Mutex
	state      models.AnalysisState
	report     *models.ForensicReport
	file       *models.SourceFile
	claim      models.ContextClaim
	generation uint64
}

func NewOrchestrator(digestService digest.Service, classifier classify.Service, timing TimingPolicy) *Orchestrator {
	return &Orchestrator{
		digest:     digestService,
		classifier: classifier,
		timing:     timing,
		normalizer: report.NewNormalizer(),
		state:      models.NewIdleState(),
	}
}

// SelectFile makes file the analysis subject and resets the state to a fresh
// idle instance, discarding any prior run's log and progress. An in-flight
// run becomes stale and its remaining effects are dropped. A previously
// published report stays visible until a new run succeeds.
func (o *Orchestrator) SelectFile(file models.SourceFile, claim models.ContextClaim) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	o.file = &file
	o.claim = claim
	o.state = models.NewIdleState()
}

// Start launches the pipeline for the selected file. It rejects a start with
// no file selected and a start while a run is in flight; otherwise it returns
// a channel of state updates that is closed when the run settles. Failures
// surface through the state, never through the channel or a panic.
func (o *Orchestrator) Start(ctx context.Context) (<-chan Update, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.file == nil {
		return nil, ErrNoFileSelected
	}
	if o.state.IsRunning {
		return nil, ErrAnalysisRunning
	}

	o.state = models.NewIdleState()
	o.state.IsRunning = true
	gen := o.generation
	file := *o.file
	claim := o.claim

	// Seven transitions at most per run, so the channel never fills.
	updates := make(chan Update, 16)
	go o.run(ctx, gen, file, claim, updates)

	return updates, nil
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() models.AnalysisState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}

// Report returns the most recently published report, or nil before the first
// successful run. The returned value is immutable.
func (o *Orchestrator) Report() *models.ForensicReport {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.report
}

func (o *Orchestrator) run(ctx context.Context, gen uint64, file models.SourceFile, claim models.ContextClaim, updates chan<- Update) {
	defer close(updates)

	if !o.transition(gen, updates, models.StageInit, progressInit, "Initializing core modules.") {
		return
	}

	hash, err := o.digest.Digest(file.Data)
	if err != nil {
		o.fail(gen, updates, fmt.Errorf("hashing failed: %w", err))
		return
	}
	hashLine := fmt.Sprintf("Hashed '%s' (%s): %s", file.Name, models.FormatSizeMB(file.Size), previewHash(hash))
	if !o.transition(gen, updates, models.StageHashing, progressHashed, hashLine) {
		return
	}

	if err := o.timing.Warmup(ctx, 0); err != nil {
		o.fail(gen, updates, fmt.Errorf("model loading interrupted: %w", err))
		return
	}
	if !o.transition(gen, updates, models.StageLoadingModels, progressWarmupA, "Loading ensemble detection models.") {
		return
	}

	if err := o.timing.Warmup(ctx, 1); err != nil {
		o.fail(gen, updates, fmt.Errorf("model loading interrupted: %w", err))
		return
	}
	if !o.transition(gen, updates, models.StageLoadingModels, progressWarmupB, "Calibrating semantic analysis engine.") {
		return
	}

	kind := models.MediaKindFromContentType(file.ContentType)
	raw, err := o.classifier.Classify(ctx, file.Data, kind, claim)
	if err != nil {
		o.fail(gen, updates, fmt.Errorf("inference failed: %w", err))
		return
	}
	if !o.transition(gen, updates, models.StageInference, progressInference, "Inference complete. Aggregating results.") {
		return
	}

	rep := o.normalizer.Normalize(raw, file, kind, hash)

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}
	o.state.CurrentStage = models.StageComplete
	o.state.Progress = progressComplete
	o.state.Log = append(o.state.Log, "Report generated successfully.")
	o.state.IsRunning = false
	o.report = &rep
	snapshot := o.state.Clone()
	o.mu.Unlock()

	updates <- Update{State: snapshot, Report: &rep}
}

// transition applies one stage checkpoint atomically: stage, progress, and
// exactly one log line. It reports false when the run has been superseded.
func (o *Orchestrator) transition(gen uint64, updates chan<- Update, stage models.Stage, progress int, line string) bool {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return false
	}
	o.state.CurrentStage = stage
	o.state.Progress = progress
	o.state.Log = append(o.state.Log, line)
	snapshot := o.state.Clone()
	o.mu.Unlock()

	updates <- Update{State: snapshot}
	return true
}

// fail parks the state machine in the terminal FAILED stage. Progress
// freezes where it was, the log keeps its full history for post-mortem
// inspection, and any previously published report stays untouched.
func (o *Orchestrator) fail(gen uint64, updates chan<- Update, err error) {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}
	o.state.CurrentStage = models.StageFailed
	o.state.Log = append(o.state.Log, fmt.Sprintf("Analysis failed: %v", err))
	o.state.IsRunning = false
	snapshot := o.state.Clone()
	o.mu.Unlock()

	updates <- Update{State: snapshot}
}

func previewHash(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:16] + "..."
}
