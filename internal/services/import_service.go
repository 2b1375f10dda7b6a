package services

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "expensedash/internal/errors"
	"expensedash/internal/logger"
	"expensedash/internal/models"
	"expensedash/internal/uuid"
)

// Accepted layouts for the expenseDate column.
var importDateLayouts = []string{"1/2/2006", "2006-01-02"}

// importService runs the bulk CSV import pipeline:
// parse (fully buffered) -> validate per row -> one batched insert.
// Validation is all-or-nothing per request; the first unresolved name
// aborts with no partial insert.
type importService struct {
	db *gorm.DB
}

// NewImportService creates a new ImportServicer.
func NewImportService(db *gorm.DB) ImportServicer {
	return &importService{db: db}
}

// ImportRecords ingests the CSV file at filePath on behalf of the user.
// The file is removed on every exit path.
func (s *importService) ImportRecords(userID, filePath string) (*ImportResult, error) {
	defer func() {
		if err := os.Remove(filePath); err != nil {
			logger.Get().Warnw("failed to remove uploaded file", "path", filePath, "error", err)
		}
	}()

	categories, subCategories, err := s.loadLookups(userID)
	if err != nil {
		return nil, err
	}

	rows, err := parseCSVFile(filePath)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "file contains no records")
	}

	records := make([]models.ExpenseRecord, 0, len(rows))
	for i, row := range rows {
		record, err := s.buildRecord(userID, row, i+2, categories, subCategories)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	// One multi-row insert; the store's per-statement atomicity makes
	// the batch all-or-nothing.
	if err := s.db.Create(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &ImportResult{Count: len(records), Records: records}, nil
}

// loadLookups builds the caller's category and sub-category name->id
// maps. They are sized to the caller's graph, not the whole dataset.
func (s *importService) loadLookups(userID string) (map[string]string, map[string]string, error) {
	var categories []models.Category
	if err := s.db.Select("id", "name").Where("user_id = ?", userID).Find(&categories).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var subCategories []models.SubCategory
	if err := s.db.Select("id", "name").Where("user_id = ?", userID).Find(&subCategories).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryIDs[c.Name] = c.ID
	}
	subCategoryIDs := make(map[string]string, len(subCategories))
	for _, sc := range subCategories {
		subCategoryIDs[sc.Name] = sc.ID
	}
	return categoryIDs, subCategoryIDs, nil
}

// csvRow is one parsed, trimmed data row keyed by header name.
type csvRow map[string]string

// parseCSVFile reads the whole file up front: all rows are buffered
// before any validation so a mid-file failure cannot leave a partial
// batch behind.
func parseCSVFile(filePath string) ([]csvRow, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	defer f.Close()

	reader := csv.NewReader(stripBOM(f))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMalformedCSV, err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"expenseDate", "amount", "currency", "category", "subCategory"} {
		if _, ok := columns[required]; !ok {
			return nil, apperrors.WithMessage(apperrors.ErrMalformedCSV,
				fmt.Sprintf("missing required column %q", required))
		}
	}

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMalformedCSV, err)
	}

	rows := make([]csvRow, 0, len(raw))
	for _, fields := range raw {
		row := make(csvRow, len(columns))
		for name, idx := range columns {
			if idx < len(fields) {
				row[name] = strings.TrimSpace(fields[idx])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// stripBOM drops a leading UTF-8 byte-order marker; spreadsheet exports
// routinely carry one.
func stripBOM(r io.Reader) io.Reader {
	buffered := bufio.NewReader(r)
	leading, err := buffered.Peek(3)
	if err == nil && leading[0] == 0xEF && leading[1] == 0xBB && leading[2] == 0xBF {
		_, _ = buffered.Discard(3)
	}
	return buffered
}

// buildRecord validates and transforms one buffered row. line is the
// 1-based file line for error messages (header is line 1).
func (s *importService) buildRecord(userID string, row csvRow, line int, categoryIDs, subCategoryIDs map[string]string) (models.ExpenseRecord, error) {
	categoryID, ok := categoryIDs[row["category"]]
	if !ok {
		return models.ExpenseRecord{}, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("category %q was not found", row["category"]))
	}
	subCategoryID, ok := subCategoryIDs[row["subCategory"]]
	if !ok {
		return models.ExpenseRecord{}, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("sub-category %q was not found", row["subCategory"]))
	}

	expenseDate, err := parseImportDate(row["expenseDate"])
	if err != nil {
		return models.ExpenseRecord{}, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("invalid expenseDate %q on line %d", row["expenseDate"], line))
	}

	amount, err := strconv.ParseFloat(row["amount"], 64)
	if err != nil {
		return models.ExpenseRecord{}, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("invalid amount %q on line %d", row["amount"], line))
	}

	return models.ExpenseRecord{
		Base:          models.Base{ID: uuid.New()},
		UserID:        userID,
		ExpenseDate:   expenseDate,
		Amount:        formatAmount(amount),
		Currency:      row["currency"],
		Reason:        row["reason"],
		CategoryID:    categoryID,
		SubCategoryID: subCategoryID,
	}, nil
}

// parseImportDate parses the row date and normalizes it to noon local
// time so a timezone offset on storage cannot shift the calendar date.
func parseImportDate(value string) (time.Time, error) {
	for _, layout := range importDateLayouts {
		parsed, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 12, 0, 0, 0, time.Local), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
