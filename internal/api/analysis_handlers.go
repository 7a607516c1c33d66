package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/verilens/verilens/internal/models"
)

type analysisSnapshot struct {
	SessionID string                 `json:"sessionId"`
	MediaID   string                 `json:"mediaId"`
	State     models.AnalysisState   `json:"state"`
	Report    *models.ForensicReport `json:"report"`
}

// AnalysisSnapshotHandler returns the current pipeline state for a session,
// including the report once one has been published. The report field is null
// before the first successful run.
func (app *App) AnalysisSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, exists := app.Analysis.GetSession(sessionID)
	if !exists {
		app.renderError(w, http.StatusNotFound, "Session not found")
		return
	}

	app.renderJSON(w, http.StatusOK, analysisSnapshot{
		SessionID: session.ID,
		MediaID:   session.MediaID,
		State:     session.Snapshot(),
		Report:    session.Report(),
	})
}

// AnalysisStreamHandler streams pipeline updates over SSE: one "state" event
// per stage transition and a final "report" event on success.
func (app *App) AnalysisStreamHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, exists := app.Analysis.GetSession(sessionID)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	clientGone := r.Context().Done()

	for {
		select {
		case update, ok := <-session.Updates:
			if !ok {
				return
			}

			if err := writeEvent(w, "state", update.State); err != nil {
				log.Printf("Error writing state event: %v", err)
				return
			}
			if update.Report != nil {
				if err := writeEvent(w, "report", update.Report); err != nil {
					log.Printf("Error writing report event: %v", err)
					return
				}
			}
			flusher.Flush()

		case <-clientGone:
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
