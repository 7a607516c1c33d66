package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/verilens/verilens/internal/analysis"
	"github.com/verilens/verilens/internal/database"
	"github.com/verilens/verilens/internal/models"
	"github.com/verilens/verilens/internal/storage"
)

type App struct {
	Storage       storage.Storage
	DB            *database.DB
	MediaRepo     *database.MediaRepository
	ReportRepo    *database.ReportRepository
	Analysis      *analysis.Service
	MaxUploadSize int64
}

type uploadResponse struct {
	SessionID string `json:"sessionId"`
	MediaID   string `json:"mediaId"`
}

// UploadHandler accepts a multipart upload ("file", optional "claim") and
// starts an analysis session for it. The claim form field being present but
// empty is a provided empty claim, which is not the same as no claim.
func (app *App) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		app.renderError(w, http.StatusBadRequest, "File too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		app.renderError(w, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		app.renderError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	var claim models.ContextClaim
	if values, ok := r.MultipartForm.Value["claim"]; ok && len(values) > 0 {
		claim = models.NewContextClaim(values[0])
	}

	storedName, err := app.Storage.SaveFile(bytes.NewReader(data), storage.FileInfo{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	})
	if err != nil {
		app.renderError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	media := models.NewMediaFile(header.Filename, storedName, contentType, int64(len(data)), claim)
	if err := app.MediaRepo.Insert(media); err != nil {
		app.Storage.DeleteFile(storedName)
		app.renderError(w, http.StatusInternalServerError, "Failed to save media information")
		return
	}

	source := models.SourceFile{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}

	// The pipeline outlives this request.
	session, err := app.Analysis.StartAnalysis(context.Background(), media.ID, source, claim)
	if err != nil {
		app.renderError(w, http.StatusServiceUnavailable, "Failed to start analysis")
		return
	}

	app.renderJSON(w, http.StatusAccepted, uploadResponse{
		SessionID: session.ID,
		MediaID:   media.ID,
	})
}

func (app *App) ListMediaHandler(w http.ResponseWriter, r *http.Request) {
	files, err := app.MediaRepo.List()
	if err != nil {
		app.renderError(w, http.StatusInternalServerError, "Failed to list media")
		return
	}
	if files == nil {
		files = []models.MediaFile{}
	}
	app.renderJSON(w, http.StatusOK, files)
}

func (app *App) MediaContentHandler(w http.ResponseWriter, r *http.Request) {
	mediaID := chi.URLParam(r, "id")
	if mediaID == "" {
		http.NotFound(w, r)
		return
	}

	media, err := app.MediaRepo.GetByID(mediaID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	file, err := app.Storage.OpenFile(media.StoredName)
	if err != nil {
		http.Error(w, "Media file not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	stat, err := file.(interface{ Stat() (os.FileInfo, error) }).Stat()
	if err != nil {
		http.Error(w, "Error accessing media file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", media.ContentType)
	// ServeContent handles Range requests and partial content headers.
	http.ServeContent(w, r, media.OriginalName, stat.ModTime(), file)
}

func (app *App) ListReportsHandler(w http.ResponseWriter, r *http.Request) {
	reports, err := app.ReportRepo.List(r.Context())
	if err != nil {
		app.renderError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}
	if reports == nil {
		reports = []database.StoredReport{}
	}

	out := make([]reportResponse, 0, len(reports))
	for _, stored := range reports {
		out = append(out, reportResponse{MediaID: stored.MediaID, Report: stored.Report})
	}
	app.renderJSON(w, http.StatusOK, out)
}

func (app *App) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "id")
	if reportID == "" {
		http.NotFound(w, r)
		return
	}

	stored, err := app.ReportRepo.GetByID(r.Context(), reportID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	app.renderJSON(w, http.StatusOK, reportResponse{MediaID: stored.MediaID, Report: stored.Report})
}

type reportResponse struct {
	MediaID string                `json:"mediaId"`
	Report  models.ForensicReport `json:"report"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (app *App) renderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func (app *App) renderError(w http.ResponseWriter, status int, message string) {
	app.renderJSON(w, status, errorResponse{Error: message})
}
