package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"classroom-notes-go/models"
)

// ClassesSheet is the sheet written by WriteClassesWorkbook.
const ClassesSheet = "Classes"

// ImportNotesFromExcel reads a workbook and saves one note per row.
// The first sheet is used, row 1 is a header, column A is the classroom ID
// and column B the content. Rows without an ID are skipped.
func ImportNotesFromExcel(ctx context.Context, repo NotesRepository, file io.Reader, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := excelize.OpenReader(file)
	if err != nil {
		return 0, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Error closing excel file", zap.Error(err))
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return 0, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return 0, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}

	importedCount := 0
	for i, row := range rows {
		if i == 0 {
			continue // Skip header row
		}

		var classroomID, content string
		if len(row) > 0 {
			classroomID = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			content = row[1]
		}
		if classroomID == "" {
			logger.Debug("Skipping row without classroom ID", zap.Int("row", i+1))
			continue
		}

		// Stop at the first failed write; earlier rows stay saved.
		if err := repo.PutNotes(ctx, classroomID, content); err != nil {
			return importedCount, fmt.Errorf("row %d: %w", i+1, err)
		}
		importedCount++
	}

	logger.Info("Imported notes from excel", zap.Int("count", importedCount))
	return importedCount, nil
}

// WriteClassesWorkbook writes records to w as an xlsx workbook, in the given order.
func WriteClassesWorkbook(w io.Writer, records []models.NoteRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ClassesSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{classroomIDAttr, lastUpdatedAttr, contentAttr}
	if err := f.SetSheetRow(ClassesSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.ClassroomID, r.LastUpdated, r.Text()}
		if err := f.SetSheetRow(ClassesSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write classroom %s: %w", r.ClassroomID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
