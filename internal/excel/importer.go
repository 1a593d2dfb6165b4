package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/lexbox/internal/backlog"
	"github.com/example/lexbox/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath       string // Path to the Excel or CSV file
	SheetName      string // Name of the sheet to import (Excel only)
	TermColumn     int    // 0-based column holding the term
	PriorityColumn int    // 0-based column holding the priority; -1 to disable
	StartRow       int    // The row to start importing from (1-based index)
	UserID         int64  // Owner of the imported terms
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SheetName:      "Sheet1",
		TermColumn:     0,
		PriorityColumn: 1,
		StartRow:       2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	Added          int      `json:"added"`
	Duplicates     int      `json:"duplicates"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors,omitempty"`
}

// ImportTerms imports candidate terms from an Excel or CSV file into the
// owner's backlog. Duplicates (exact normalized-key matches against cards,
// backlog and earlier rows of the same file) are counted, not treated as
// errors: an import never loses data over a similarity score.
func ImportTerms(ctx context.Context, svc *backlog.Service, config ImportConfig, now time.Time) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(ctx, svc, config, now)
	}
	return importFromExcel(ctx, svc, config, now)
}

// importFromExcel imports terms from an Excel file
func importFromExcel(ctx context.Context, svc *backlog.Service, config ImportConfig, now time.Time) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &ImportResult{}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		processRow(ctx, svc, config, row, i+1, now, result)
	}
	return result, nil
}

// importFromCSV imports terms from a CSV file
func importFromCSV(ctx context.Context, svc *backlog.Service, config ImportConfig, now time.Time) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	result := &ImportResult{}
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
			continue
		}
		if line < config.StartRow {
			continue
		}
		processRow(ctx, svc, config, row, line, now, result)
	}
	return result, nil
}

// processRow feeds one row into the backlog
func processRow(ctx context.Context, svc *backlog.Service, config ImportConfig, row []string, line int, now time.Time, result *ImportResult) {
	result.TotalProcessed++

	if config.TermColumn >= len(row) {
		result.Skipped++
		return
	}
	term := strings.TrimSpace(row[config.TermColumn])
	if term == "" {
		result.Skipped++
		return
	}

	priority := models.PriorityMedium
	if config.PriorityColumn >= 0 && config.PriorityColumn < len(row) {
		if p := models.Priority(strings.ToLower(strings.TrimSpace(row[config.PriorityColumn]))); p.IsValid() {
			priority = p
		}
	}

	_, _, err := svc.Add(ctx, config.UserID, term, priority, "import", now)
	switch {
	case errors.Is(err, backlog.ErrDuplicate):
		result.Duplicates++
	case errors.Is(err, backlog.ErrEmptyTerm):
		result.Skipped++
	case err != nil:
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
	default:
		result.Added++
	}
}
