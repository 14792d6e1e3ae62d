package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gochart/adapters/postgres"
	"gochart/internal/migration"
	"gochart/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	var feedbackDir string
	switch len(os.Args) {
	case 1:
	case 2:
		feedbackDir = os.Args[1]
	default:
		databaseURL, feedbackDir = os.Args[1], os.Args[2]
	}
	if databaseURL == "" {
		log.Fatal("Usage: migrate [database_url] [feedback_dir]  (DATABASE_URL is used when no url is given)")
	}

	ctx := context.Background()
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema at version %s", runner.Version())

	if feedbackDir == "" {
		return
	}

	files, err := findFeedbackFiles(feedbackDir)
	if err != nil {
		log.Fatalf("Failed to find feedback files: %v", err)
	}
	log.Printf("Found %d feedback files to import", len(files))

	repo := postgres.NewFeedbackRepository(db)
	imported, skipped := 0, 0
	for _, file := range files {
		records, err := loadFeedbackFile(file)
		if err != nil {
			log.Printf("Failed to load %s: %v", file, err)
			skipped++
			continue
		}
		for i := range records {
			rec := &records[i]
			if err := rec.Validate(); err != nil {
				log.Printf("Skipping record %d of %s: %v", i, file, err)
				skipped++
				continue
			}
			if err := repo.SaveFeedback(ctx, rec); err != nil {
				log.Printf("Failed to save record %d of %s: %v", i, file, err)
				skipped++
				continue
			}
			imported++
		}
	}
	log.Printf("Import complete: %d imported, %d skipped", imported, skipped)
}

func findFeedbackFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".json") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// loadFeedbackFile accepts a single record or an array of records
func loadFeedbackFile(path string) ([]models.FeedbackRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var records []models.FeedbackRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return records, nil
	}
	var rec models.FeedbackRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return []models.FeedbackRecord{rec}, nil
}
