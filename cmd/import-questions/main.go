package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/classbridge/qbank-backend/internal/config"
	"github.com/classbridge/qbank-backend/internal/database"
	"github.com/classbridge/qbank-backend/internal/logger"
	"github.com/classbridge/qbank-backend/internal/model"
	"github.com/classbridge/qbank-backend/internal/repository"
	"github.com/classbridge/qbank-backend/internal/service"
)

// import-questions runs a bulk import straight against the database,
// bypassing the HTTP surface. Useful for seeding freshly migrated
// environments from exported files.
func main() {
	var (
		filePath   string
		format     string
		department string
		overwrite  bool
	)
	flag.StringVar(&filePath, "file", "", "Path to a JSON or CSV question export")
	flag.StringVar(&format, "format", "", "Import format: json or csv (default: by file extension)")
	flag.StringVar(&department, "department", "", "Department code to attach to imported questions")
	flag.BoolVar(&overwrite, "overwrite", false, "Overwrite questions whose text already exists")
	flag.Parse()

	if filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: import-questions -file questions.json [-format json|csv] [-department CODE] [-overwrite]")
		os.Exit(2)
	}

	if format == "" {
		switch strings.ToLower(filepath.Ext(filePath)) {
		case ".csv":
			format = model.ImportFormatCSV
		default:
			format = model.ImportFormatJSON
		}
	}

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	raw, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", filePath).Msg("Failed to read import file")
	}

	req := &model.BulkImportRequest{
		Format:            format,
		OverwriteExisting: overwrite,
	}
	if department != "" {
		req.Department = &department
	}

	switch format {
	case model.ImportFormatCSV:
		req.CSVData = string(raw)
	case model.ImportFormatJSON:
		if err := json.Unmarshal(raw, &req.Questions); err != nil {
			log.Fatal().Err(err).Msg("Import file is not a JSON array of questions")
		}
	default:
		log.Fatal().Str("format", format).Msg("Unknown import format")
	}

	imports := service.NewImportService(repository.NewQuestionRepository(pool), log)

	resp, err := imports.Run(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	for _, item := range resp.Results {
		if item.Status == model.ImportStatusError && item.Error != nil {
			log.Warn().Int("row", item.Index).Str("error", *item.Error).Msg("Row rejected")
		}
	}

	fmt.Printf("imported: %d, updated: %d, failed: %d (of %d rows)\n",
		resp.Imported, resp.Updated, resp.Failed, len(resp.Results))
	if resp.Failed > 0 {
		os.Exit(1)
	}
}
