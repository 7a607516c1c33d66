package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/verilens/verilens/internal/analysis"
	"github.com/verilens/verilens/internal/api"
	"github.com/verilens/verilens/internal/classify"
	"github.com/verilens/verilens/internal/database"
	"github.com/verilens/verilens/internal/digest"
	"github.com/verilens/verilens/internal/models"
	"github.com/verilens/verilens/internal/storage"
)

func main() {
	godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	maxUploadSize := os.Getenv("MAX_UPLOAD_SIZE")
	if maxUploadSize == "" {
		maxUploadSize = "104857600"
	}
	maxSize, err := strconv.ParseInt(maxUploadSize, 10, 64)
	if err != nil {
		log.Fatal("Invalid MAX_UPLOAD_SIZE:", err)
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./verilens.db"
	}

	localStorage, err := storage.NewLocalStorage(uploadDir)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	db, err := database.NewDB(dbPath)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	mediaRepo := database.NewMediaRepository(db)
	reportRepo := database.NewReportRepository(db)

	var classifier classify.Service
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		classifier = classify.NewOpenAIClassifier(apiKey, os.Getenv("OPENAI_MODEL"))
		log.Printf("Classification service enabled")
	} else {
		log.Printf("Classification service not configured. Set OPENAI_API_KEY to enable analysis.")
	}

	onComplete := func(sessionID, mediaID string, rep models.ForensicReport) {
		if err := reportRepo.Insert(context.Background(), mediaID, rep); err != nil {
			log.Printf("[ANALYSIS] Failed to persist report %s for session %s: %v", rep.ID, sessionID, err)
			return
		}
		log.Printf("[ANALYSIS] Persisted report %s for media %s", rep.ID, mediaID)
	}

	analysisService := analysis.NewService(
		digest.NewSHA256Service(),
		classifier,
		analysis.DefaultTiming(),
		onComplete,
	)

	app := &api.App{
		Storage:       localStorage,
		DB:            db,
		MediaRepo:     mediaRepo,
		ReportRepo:    reportRepo,
		Analysis:      analysisService,
		MaxUploadSize: maxSize,
	}

	router := api.NewRouter(app)

	log.Printf("Server starting on port %s", port)
	log.Printf("Upload directory: %s", uploadDir)
	log.Printf("Database path: %s", dbPath)
	log.Printf("Max upload size: %d bytes", maxSize)

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}
