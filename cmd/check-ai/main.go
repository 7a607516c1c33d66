package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	godotenv.Load()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./verilens.db"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	fmt.Println("🔍 Checking Analysis Configuration")
	fmt.Println("==================================")

	if os.Getenv("OPENAI_API_KEY") == "" {
		fmt.Println("⚠️  WARNING: OPENAI_API_KEY not configured, analysis is disabled")
	} else {
		fmt.Println("✅ Classification service configured")
	}
	fmt.Println()

	var mediaCount int
	err = db.QueryRow("SELECT COUNT(*) FROM media_files").Scan(&mediaCount)
	if err != nil {
		fmt.Println("❌ No media_files table found (server not yet run)")
		return
	}
	fmt.Printf("📁 Total media files: %d\n", mediaCount)

	var reportCount int
	err = db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&reportCount)
	if err != nil {
		fmt.Println("❌ No reports table found")
		return
	}
	fmt.Printf("📄 Total reports: %d\n\n", reportCount)

	rows, err := db.Query(`
		SELECT
			m.original_name,
			r.file_type,
			r.authenticity_score,
			r.is_manipulated,
			r.reasoning
		FROM reports r
		JOIN media_files m ON r.media_id = m.id
		ORDER BY r.created_at DESC
		LIMIT 5
	`)
	if err != nil {
		log.Fatal("Failed to query reports:", err)
	}
	defer rows.Close()

	fmt.Println("Recent reports:")
	for rows.Next() {
		var (
			name          string
			fileType      string
			score         float64
			isManipulated int
			reasoning     string
		)
		if err := rows.Scan(&name, &fileType, &score, &isManipulated, &reasoning); err != nil {
			log.Fatal("Failed to scan report:", err)
		}

		verdict := "authentic"
		if isManipulated != 0 {
			verdict = "MANIPULATED"
		}
		fmt.Printf("  %s [%s] score=%.0f verdict=%s\n", name, fileType, score, verdict)
		if reasoning != "" {
			fmt.Printf("    %.100s\n", reasoning)
		}
	}
	if err := rows.Err(); err != nil {
		log.Fatal("Failed reading reports:", err)
	}
}
