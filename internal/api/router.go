package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/media", app.UploadHandler)
		r.Get("/media", app.ListMediaHandler)
		r.Get("/media/{id}/content", app.MediaContentHandler)

		r.Get("/analyses/{sessionID}", app.AnalysisSnapshotHandler)
		r.Get("/analyses/{sessionID}/events", app.AnalysisStreamHandler)

		r.Get("/reports", app.ListReportsHandler)
		r.Get("/reports/{id}", app.GetReportHandler)
	})

	return r
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
