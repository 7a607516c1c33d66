package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/verilens/verilens/internal/analysis"
	"github.com/verilens/verilens/internal/classify"
	"github.com/verilens/verilens/internal/digest"
	"github.com/verilens/verilens/internal/models"
)

func main() {
	var (
		filePath = flag.String("file", "", "Path of the media file to analyze")
		claimArg = flag.String("claim", "", "Context claim accompanying the file")
	)
	flag.Parse()

	if *filePath == "" {
		log.Fatal("Please provide a media file with -file flag")
	}

	godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY is not set")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal("Failed to read file:", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(*filePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file := models.SourceFile{
		Name:        filepath.Base(*filePath),
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}

	var claim models.ContextClaim
	if flagWasSet("claim") {
		claim = models.NewContextClaim(*claimArg)
	}

	orch := analysis.NewOrchestrator(
		digest.NewSHA256Service(),
		classify.NewOpenAIClassifier(apiKey, os.Getenv("OPENAI_MODEL")),
		analysis.DefaultTiming(),
	)
	orch.SelectFile(file, claim)

	updates, err := orch.Start(context.Background())
	if err != nil {
		log.Fatal("Failed to start analysis:", err)
	}

	fmt.Printf("Analyzing %s (%s)\n", file.Name, models.FormatSizeMB(file.Size))

	var finalReport *models.ForensicReport
	for update := range updates {
		if n := len(update.State.Log); n > 0 {
			fmt.Printf("[%3d%%] %s %s\n", update.State.Progress, update.State.CurrentStage, update.State.Log[n-1])
		}
		if update.Report != nil {
			finalReport = update.Report
		}
	}

	if finalReport == nil {
		os.Exit(1)
	}

	out, err := json.MarshalIndent(finalReport, "", "  ")
	if err != nil {
		log.Fatal("Failed to render report:", err)
	}
	fmt.Println(string(out))
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
