package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/volunteerhub/portal-backend/config"
	"github.com/volunteerhub/portal-backend/internal/app/repository"
	"github.com/volunteerhub/portal-backend/internal/app/service"
	"github.com/volunteerhub/portal-backend/internal/db"
	"github.com/volunteerhub/portal-backend/pkg/logger"
	"github.com/volunteerhub/portal-backend/pkg/mailer"
	"github.com/xuri/excelize/v2"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run ./cmd/seed <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	ngoService := service.NewNGOService(
		repository.NewNGORepository(db.GetDB()),
		repository.NewUserRepository(db.GetDB()),
		mailer.New(cfg.SMTP),
		mailer.Templates{AppName: cfg.App.Name, PublicURL: cfg.App.PublicURL, CodeTTL: cfg.Verification.CodeTTL},
	)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	records, err := readNGOsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total NGOs to import: %d\n", len(records))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	result, err := ngoService.Import(records)
	if err != nil {
		log.Fatal("Failed to import NGOs:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("  Created: %d\n", result.Created)
	fmt.Printf("  Skipped (duplicates or empty names): %d\n", result.Skipped)
}

// header aliases, matched case-insensitively
var columnAliases = map[string][]string{
	"name":        {"name", "название", "организация"},
	"description": {"description", "описание"},
	"city":        {"city", "город"},
	"address":     {"address", "адрес"},
	"latitude":    {"latitude", "lat", "широта"},
	"longitude":   {"longitude", "lon", "lng", "долгота"},
	"categories":  {"categories", "категории", "направления"},
	"website":     {"website", "сайт"},
	"email":       {"email", "e-mail", "почта"},
	"phone":       {"phone", "телефон"},
}

func readNGOsFromXLSX(filePath string) ([]service.ImportRecord, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return parseNGORows(rows)
}

// parseNGORows maps a header row plus data rows to import records. Rows
// without a name or with unparsable coordinates are skipped.
func parseNGORows(rows [][]string) ([]service.ImportRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	columns := mapColumns(rows[0])
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("header row has no name column: %v", rows[0])
	}

	var records []service.ImportRecord
	seen := make(map[string]bool)
	skipped := 0
	invalidCoords := 0

	for _, row := range rows[1:] {
		cell := func(key string) string {
			idx, ok := columns[key]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		name := cell("name")
		if name == "" {
			skipped++
			continue
		}

		key := strings.ToLower(name)
		if seen[key] {
			skipped++
			continue
		}

		lat, latOK := parseCoordinate(cell("latitude"), 90)
		lon, lonOK := parseCoordinate(cell("longitude"), 180)
		if !latOK || !lonOK {
			invalidCoords++
			skipped++
			continue
		}
		seen[key] = true

		records = append(records, service.ImportRecord{
			Name:        name,
			Description: cell("description"),
			City:        cell("city"),
			Address:     cell("address"),
			Latitude:    lat,
			Longitude:   lon,
			Categories:  splitCategories(cell("categories")),
			Website:     cell("website"),
			Email:       strings.ToLower(cell("email")),
			Phone:       cell("phone"),
		})
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid NGOs: %d\n", len(records))
	fmt.Printf("  Skipped rows: %d\n", skipped)
	fmt.Printf("  Rows with invalid coordinates: %d\n", invalidCoords)

	return records, nil
}

func mapColumns(header []string) map[string]int {
	columns := make(map[string]int)
	for idx, title := range header {
		title = strings.ToLower(strings.TrimSpace(title))
		for key, aliases := range columnAliases {
			if _, taken := columns[key]; taken {
				continue
			}
			for _, alias := range aliases {
				if title == alias {
					columns[key] = idx
				}
			}
		}
	}
	return columns
}

// parseCoordinate accepts an empty cell as "no coordinate". A comma decimal
// separator is tolerated.
func parseCoordinate(value string, limit float64) (*float64, bool) {
	if value == "" {
		return nil, true
	}
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil || parsed < -limit || parsed > limit {
		return nil, false
	}
	return &parsed, true
}

func splitCategories(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})

	categories := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			categories = append(categories, part)
		}
	}
	return categories
}
