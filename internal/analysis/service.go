package analysis

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verilens/verilens/internal/classify"
	"github.com/verilens/verilens/internal/digest"
	"github.com/verilens/verilens/internal/models"
)

// Session is one analysis run bound to an uploaded media file. Updates
// carries every state transition and is closed when the run settles.
type Session struct {
	ID        string
	MediaID   string
	StartedAt time.Time
	Updates   <-chan Update

	orchestrator *Orchestrator
}

// Snapshot returns the run's current state.
func (s *Session) Snapshot() models.AnalysisState {
	return s.orchestrator.Snapshot()
}

// Report returns the published report, or nil while the run is unfinished or
// after it failed.
func (s *Session) Report() *models.ForensicReport {
	return s.orchestrator.Report()
}

// CompletionFunc is invoked once per successful run with the published report.
type CompletionFunc func(sessionID, mediaID string, rep models.ForensicReport)

// Service manages analysis sessions, one orchestrator per session.
type Service struct {
	digest     digest.Service
	classifier classify.Service
	timing     TimingPolicy
	onComplete CompletionFunc

	sessions   map[string]*Session
	sessionsMu sync.RWMutex
}

func NewService(digestService digest.Service, classifier classify.Service, timing TimingPolicy, onComplete CompletionFunc) *Service {
	return &Service{
		digest:     digestService,
		classifier: classifier,
		timing:     timing,
		onComplete: onComplete,
		sessions:   make(map[string]*Session),
	}
}

// StartAnalysis creates a session for the media file and launches its
// pipeline. Pipeline failures surface through session state, not through the
// returned error.
func (s *Service) StartAnalysis(ctx context.Context, mediaID string, file models.SourceFile, claim models.ContextClaim) (*Session, error) {
	if s.classifier == nil {
		return nil, fmt.Errorf("classification service not configured")
	}

	orch := NewOrchestrator(s.digest, s.classifier, s.timing)
	orch.SelectFile(file, claim)

	runUpdates, err := orch.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting analysis: %w", err)
	}

	forwarded := make(chan Update, 16)
	session := &Session{
		ID:           uuid.New().String(),
		MediaID:      mediaID,
		StartedAt:    time.Now(),
		Updates:      forwarded,
		orchestrator: orch,
	}

	s.sessionsMu.Lock()
	s.sessions[session.ID] = session
	s.sessionsMu.Unlock()

	go s.forward(session, runUpdates, forwarded)

	log.Printf("[ANALYSIS] Started session %s for media %s (%s)", session.ID, mediaID, file.Name)
	return session, nil
}

// GetSession looks up a session by ID.
func (s *Service) GetSession(sessionID string) (*Session, bool) {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *Service) forward(session *Session, in <-chan Update, out chan<- Update) {
	defer close(out)

	for update := range in {
		if update.Report != nil && s.onComplete != nil {
			s.onComplete(session.ID, session.MediaID, *update.Report)
		}

		select {
		case out <- update:
		default:
			// A slow consumer drops intermediate snapshots; the final state
			// is always available through Snapshot.
		}
	}
}
