// Package excel imports phrase catalogs from Excel workbooks.
package excel

import (
	"context"
	"fmt"
	"strings"

	"github.com/grigorevrodion-lab/EnglishCards-Bot/internal/database"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel file
	EnglishColumn     string // Column with the English phrase
	TranslationColumn string // Column with the Russian translation
	CategoryColumn    string // Column with the category
	LevelColumn       string // Column with the CEFR level
	SheetName         string // Name of the sheet to import
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		EnglishColumn:     "A",
		TranslationColumn: "B",
		CategoryColumn:    "C",
		LevelColumn:       "D",
		SheetName:         "Sheet1",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// ImportPhrases imports phrases from an Excel file into the shared catalog
func ImportPhrases(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	phraseRepo := database.NewPhraseRepository()

	result := &ImportResult{
		Errors: make([]string, 0),
	}

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}

		result.TotalProcessed++

		if err := processRow(ctx, row, config, phraseRepo, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	return result, nil
}

// processRow imports a single spreadsheet row
func processRow(ctx context.Context, row []string, config ImportConfig,
	phraseRepo *database.PhraseRepository, result *ImportResult) error {
	var english, russian, category, level string

	// Check bounds for each column
	if colIdx := columnToIndex(config.EnglishColumn); colIdx >= 0 && colIdx < len(row) {
		english = row[colIdx]
	}
	if colIdx := columnToIndex(config.TranslationColumn); colIdx >= 0 && colIdx < len(row) {
		russian = row[colIdx]
	}
	if colIdx := columnToIndex(config.CategoryColumn); colIdx >= 0 && colIdx < len(row) {
		category = row[colIdx]
	}
	if colIdx := columnToIndex(config.LevelColumn); colIdx >= 0 && colIdx < len(row) {
		level = row[colIdx]
	}

	english = cleanPhrase(english)
	russian = cleanPhrase(russian)
	category = strings.TrimSpace(category)
	level = strings.TrimSpace(level)

	if english == "" {
		return fmt.Errorf("english phrase cannot be empty")
	}
	if russian == "" {
		return fmt.Errorf("translation cannot be empty")
	}
	if category == "" {
		category = "general"
	}
	if level == "" {
		level = "beginner"
	}

	_, created, err := phraseRepo.Add(ctx, english, russian, category, level)
	if err != nil {
		return fmt.Errorf("failed to add phrase: %v", err)
	}
	if !created {
		result.Skipped++
		return nil
	}

	result.Created++
	return nil
}

// cleanPhrase strips extra information in parentheses, e.g. "go (went, gone)"
func cleanPhrase(phrase string) string {
	if idx := strings.Index(phrase, "("); idx > 0 {
		return strings.TrimSpace(phrase[:idx])
	}
	return strings.TrimSpace(phrase)
}

// columnToIndex converts an Excel column letter to a zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
