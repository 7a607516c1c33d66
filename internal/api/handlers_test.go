package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verilens/verilens/internal/analysis"
	"github.com/verilens/verilens/internal/classify"
	"github.com/verilens/verilens/internal/database"
	"github.com/verilens/verilens/internal/digest"
	"github.com/verilens/verilens/internal/models"
	"github.com/verilens/verilens/internal/storage"
)

type stubClassifier struct {
	mu      sync.Mutex
	payload classify.RawPayload
	claims  []models.ContextClaim
}

func (c *stubClassifier) Classify(ctx context.Context, data []byte, kind models.MediaKind, claim models.ContextClaim) (classify.RawPayload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.claims = append(c.claims, claim)
	return c.payload, nil
}

func (c *stubClassifier) seenClaims() []models.ContextClaim {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ContextClaim, len(c.claims))
	copy(out, c.claims)
	return out
}

func newTestApp(t *testing.T, classifier classify.Service) (*App, *httptest.Server) {
	t.Helper()

	tmpDir := t.TempDir()

	localStorage, err := storage.NewLocalStorage(filepath.Join(tmpDir, "uploads"))
	require.NoError(t, err)

	db, err := database.NewDB(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reportRepo := database.NewReportRepository(db)
	onComplete := func(sessionID, mediaID string, rep models.ForensicReport) {
		if err := reportRepo.Insert(context.Background(), mediaID, rep); err != nil {
			t.Errorf("failed to persist report: %v", err)
		}
	}

	app := &App{
		Storage:       localStorage,
		DB:            db,
		MediaRepo:     database.NewMediaRepository(db),
		ReportRepo:    reportRepo,
		Analysis:      analysis.NewService(digest.NewSHA256Service(), classifier, analysis.ZeroTiming{}, onComplete),
		MaxUploadSize: 10 << 20,
	}

	server := httptest.NewServer(NewRouter(app))
	t.Cleanup(server.Close)

	return app, server
}

func uploadFile(t *testing.T, server *httptest.Server, filename string, content []byte, contentType string, claim *string) uploadResponse {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	if claim != nil {
		require.NoError(t, writer.WriteField("claim", *claim))
	}
	require.NoError(t, writer.Close())

	resp, err := http.Post(server.URL+"/api/media", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var out uploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.SessionID)
	require.NotEmpty(t, out.MediaID)
	return out
}

func waitForCompletion(t *testing.T, server *httptest.Server, sessionID string) analysisSnapshot {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(server.URL + "/api/analyses/" + sessionID)
		require.NoError(t, err)

		var snapshot analysisSnapshot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
		resp.Body.Close()

		if snapshot.State.CurrentStage == models.StageComplete || snapshot.State.CurrentStage == models.StageFailed {
			return snapshot
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("analysis did not settle in time")
	return analysisSnapshot{}
}

func TestUploadStartsAnalysisAndPublishesReport(t *testing.T) {
	score := 92.0
	classifier := &stubClassifier{payload: classify.RawPayload{AuthenticityScore: &score}}
	_, server := newTestApp(t, classifier)

	claim := "a genuine photograph"
	uploaded := uploadFile(t, server, "sample.png", []byte("png bytes"), "image/png", &claim)

	snapshot := waitForCompletion(t, server, uploaded.SessionID)
	require.Equal(t, models.StageComplete, snapshot.State.CurrentStage)
	assert.Equal(t, 100, snapshot.State.Progress)

	require.NotNil(t, snapshot.Report)
	assert.Equal(t, 92.0, snapshot.Report.AuthenticityScore)
	assert.Equal(t, "sample.png", snapshot.Report.FileName)
	assert.Equal(t, models.MediaKindImage, snapshot.Report.FileType)
	assert.Equal(t, "image/png", snapshot.Report.Metadata["mimeType"])

	claims := classifier.seenClaims()
	require.Len(t, claims, 1)
	assert.True(t, claims[0].Provided)
	assert.Equal(t, "a genuine photograph", claims[0].Text)
}

func TestUploadWithoutClaimIsAbsentClaim(t *testing.T) {
	classifier := &stubClassifier{}
	_, server := newTestApp(t, classifier)

	uploaded := uploadFile(t, server, "clip.mp4", []byte("mp4 bytes"), "video/mp4", nil)
	waitForCompletion(t, server, uploaded.SessionID)

	claims := classifier.seenClaims()
	require.Len(t, claims, 1)
	assert.False(t, claims[0].Provided)
}

func TestUploadWithoutFileFails(t *testing.T) {
	_, server := newTestApp(t, &stubClassifier{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("claim", "no file here"))
	require.NoError(t, writer.Close())

	resp, err := http.Post(server.URL+"/api/media", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReportEndpointsAfterCompletion(t *testing.T) {
	score := 33.0
	manipulated := true
	classifier := &stubClassifier{payload: classify.RawPayload{
		AuthenticityScore: &score,
		IsManipulated:     &manipulated,
	}}
	_, server := newTestApp(t, classifier)

	uploaded := uploadFile(t, server, "fake.png", []byte("suspicious bytes"), "image/png", nil)
	snapshot := waitForCompletion(t, server, uploaded.SessionID)
	require.NotNil(t, snapshot.Report)

	// Persistence runs just after the final state transition, so poll for it.
	var listed []reportResponse
	require.Eventually(t, func() bool {
		resp, err := http.Get(server.URL + "/api/reports")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		listed = nil
		if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
			return false
		}
		return len(listed) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, uploaded.MediaID, listed[0].MediaID)
	assert.True(t, listed[0].Report.IsManipulated)

	// Single fetch by report ID.
	single, err := http.Get(server.URL + "/api/reports/" + snapshot.Report.ID)
	require.NoError(t, err)
	defer single.Body.Close()
	require.Equal(t, http.StatusOK, single.StatusCode)

	var fetched reportResponse
	require.NoError(t, json.NewDecoder(single.Body).Decode(&fetched))
	assert.Equal(t, snapshot.Report.ID, fetched.Report.ID)
}

func TestAnalysisSnapshotUnknownSession(t *testing.T) {
	_, server := newTestApp(t, &stubClassifier{})

	resp, err := http.Get(server.URL + "/api/analyses/unknown")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPing(t *testing.T) {
	_, server := newTestApp(t, &stubClassifier{})

	resp, err := http.Get(server.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
}
