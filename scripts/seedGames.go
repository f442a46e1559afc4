package main

import (
	"encoding/csv"
	"log"
	"os"
	"strconv"
	"strings"

	"playvault/config"
	"playvault/database"
	"playvault/models"
)

// Seeds the game catalog from games.csv with columns:
// name,slug,login_url,account_username,account_password,entry_credits
func main() {
	config.LoadConfig()
	db, err := database.Connect(config.AppConfig)
	if err != nil {
		log.Fatalf("Database setup failed: %v", err)
	}

	file, err := os.Open("games.csv")
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	header := records[0]
	log.Printf("CSV Headers: %v", header)
	log.Printf("Total rows to import: %d", len(records)-1)

	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{"name", "slug", "login_url", "account_username", "account_password", "entry_credits"} {
		if _, ok := headerIndex[col]; !ok {
			log.Fatalf("CSV is missing required column %q", col)
		}
	}

	inserted := 0
	updated := 0
	skipped := 0

	for i, row := range records[1:] {
		slug := strings.TrimSpace(row[headerIndex["slug"]])
		if slug == "" {
			log.Printf("Row %d: missing slug, skipping", i+1)
			skipped++
			continue
		}

		entryCredits, err := strconv.ParseInt(strings.TrimSpace(row[headerIndex["entry_credits"]]), 10, 64)
		if err != nil || entryCredits <= 0 {
			log.Printf("Row %d (%s): invalid entry_credits, skipping", i+1, slug)
			skipped++
			continue
		}

		game := models.Game{
			Name:            strings.TrimSpace(row[headerIndex["name"]]),
			Slug:            slug,
			LoginURL:        strings.TrimSpace(row[headerIndex["login_url"]]),
			AccountUsername: strings.TrimSpace(row[headerIndex["account_username"]]),
			AccountPassword: strings.TrimSpace(row[headerIndex["account_password"]]),
			EntryCredits:    entryCredits,
			IsActive:        true,
		}

		var existing models.Game
		if err := db.Where("slug = ?", slug).First(&existing).Error; err == nil {
			game.ID = existing.ID
			if err := db.Model(&existing).Updates(&game).Error; err != nil {
				log.Printf("Row %d (%s): update failed: %v", i+1, slug, err)
				skipped++
				continue
			}
			updated++
			continue
		}

		if err := db.Create(&game).Error; err != nil {
			log.Printf("Row %d (%s): insert failed: %v", i+1, slug, err)
			skipped++
			continue
		}
		inserted++
	}

	log.Printf("Import complete: %d inserted, %d updated, %d skipped", inserted, updated, skipped)
}
