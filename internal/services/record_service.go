package services

import (
	"errors"
	"strconv"

	"gorm.io/gorm"

	apperrors "expensedash/internal/errors"
	"expensedash/internal/models"
	"expensedash/internal/pagination"
)

// formatAmount serializes a currency value as a fixed-point string with
// two fractional digits, the storage representation for all amounts.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// recordService handles expense record business logic.
type recordService struct {
	db *gorm.DB
}

// NewRecordService creates a new RecordServicer.
func NewRecordService(db *gorm.DB) RecordServicer {
	return &recordService{db: db}
}

// CreateRecord creates an expense record. The referenced category and
// sub-category must exist and be owned by the caller.
func (s *recordService) CreateRecord(userID string, input RecordInput) (*models.ExpenseRecord, error) {
	if input.Currency == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency is required")
	}
	if input.Amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be negative")
	}

	if err := s.checkReferences(userID, input.CategoryID, input.SubCategoryID); err != nil {
		return nil, err
	}

	record := &models.ExpenseRecord{
		UserID:        userID,
		ExpenseDate:   input.ExpenseDate,
		Amount:        formatAmount(input.Amount),
		Currency:      input.Currency,
		Reason:        input.Reason,
		CategoryID:    input.CategoryID,
		SubCategoryID: input.SubCategoryID,
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return record, nil
}

// GetUserRecords retrieves a paginated, filtered list of the user's records.
func (s *recordService) GetUserRecords(userID string, page pagination.PageRequest, filter RecordFilter) (*pagination.PageResponse[models.ExpenseRecord], error) {
	page.Defaults()

	base := s.db.Model(&models.ExpenseRecord{}).Where("user_id = ?", userID)
	if filter.Reason != "" {
		base = base.Where("LOWER(reason) LIKE LOWER(?)", "%"+filter.Reason+"%")
	}
	if filter.CategoryID != "" {
		base = base.Where("category_id = ?", filter.CategoryID)
	}
	if filter.SubCategoryID != "" {
		base = base.Where("sub_category_id = ?", filter.SubCategoryID)
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		base = base.Where("expense_date >= ? AND expense_date <= ?", *filter.StartDate, *filter.EndDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	switch filter.SortBy {
	case "oldest":
		base = base.Order("expense_date ASC")
	case "highest":
		base = base.Order("amount DESC")
	case "lowest":
		base = base.Order("amount ASC")
	default: // newest
		base = base.Order("expense_date DESC")
	}

	var records []models.ExpenseRecord
	if err := base.Preload("Category").Preload("SubCategory").
		Scopes(pagination.Paginate(page)).Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(records, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetRecordByID retrieves a record owned by the user.
func (s *recordService) GetRecordByID(userID, recordID string) (*models.ExpenseRecord, error) {
	var record models.ExpenseRecord
	if err := s.db.Preload("Category").Preload("SubCategory").
		Where("id = ? AND user_id = ?", recordID, userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &record, nil
}

// UpdateRecord applies a patch to a record. Absent fields stay
// unchanged; changed category/sub-category references are re-validated
// against the caller's graph.
func (s *recordService) UpdateRecord(userID, recordID string, patch RecordPatch) (*models.ExpenseRecord, error) {
	record, err := s.getOwnedRecord(userID, recordID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if patch.ExpenseDate != nil {
		updates["expense_date"] = *patch.ExpenseDate
	}
	if patch.Amount != nil {
		if *patch.Amount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be negative")
		}
		updates["amount"] = formatAmount(*patch.Amount)
	}
	if patch.Currency != nil {
		if *patch.Currency == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency cannot be empty")
		}
		updates["currency"] = *patch.Currency
	}
	if patch.Reason != nil {
		updates["reason"] = *patch.Reason
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(userID, *patch.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *patch.CategoryID
	}
	if patch.SubCategoryID != nil {
		if err := s.checkSubCategory(userID, *patch.SubCategoryID); err != nil {
			return nil, err
		}
		updates["sub_category_id"] = *patch.SubCategoryID
	}

	if len(updates) > 0 {
		if err := s.db.Model(record).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return record, nil
}

// DeleteRecord deletes a record owned by the user.
func (s *recordService) DeleteRecord(userID, recordID string) error {
	record, err := s.getOwnedRecord(userID, recordID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(record).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *recordService) checkReferences(userID, categoryID, subCategoryID string) error {
	if err := s.checkCategory(userID, categoryID); err != nil {
		return err
	}
	return s.checkSubCategory(userID, subCategoryID)
}

func (s *recordService) checkCategory(userID, categoryID string) error {
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

func (s *recordService) checkSubCategory(userID, subCategoryID string) error {
	var count int64
	if err := s.db.Model(&models.SubCategory{}).
		Where("id = ? AND user_id = ?", subCategoryID, userID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrSubCategoryNotFound
	}
	return nil
}

// getOwnedRecord fetches by id alone so ownership mismatch surfaces as
// forbidden rather than not-found.
func (s *recordService) getOwnedRecord(userID, recordID string) (*models.ExpenseRecord, error) {
	var record models.ExpenseRecord
	if err := s.db.Where("id = ?", recordID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if record.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return &record, nil
}
