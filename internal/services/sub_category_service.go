package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "expensedash/internal/errors"
	"expensedash/internal/models"
	"expensedash/internal/pagination"
)

// subCategoryService handles sub-category business logic.
type subCategoryService struct {
	db *gorm.DB
}

// NewSubCategoryService creates a new SubCategoryServicer.
func NewSubCategoryService(db *gorm.DB) SubCategoryServicer {
	return &subCategoryService{db: db}
}

// CreateSubCategory creates a sub-category under one of the user's categories.
func (s *subCategoryService) CreateSubCategory(userID, name, description, categoryID string) (*models.SubCategory, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "sub-category name is required")
	}
	if categoryID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category_id is required")
	}

	// Parent must exist and belong to the same user.
	var parent models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&parent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var count int64
	if err := s.db.Model(&models.SubCategory{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "sub-category with this name already exists")
	}

	subCategory := &models.SubCategory{
		UserID:      userID,
		Name:        name,
		Description: description,
		CategoryID:  categoryID,
	}
	if err := s.db.Create(subCategory).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return subCategory, nil
}

// GetUserSubCategories retrieves a paginated list of the user's
// sub-categories with their parent category preloaded, newest first.
func (s *subCategoryService) GetUserSubCategories(userID, nameFilter string, page pagination.PageRequest) (*pagination.PageResponse[models.SubCategory], error) {
	page.Defaults()

	base := s.db.Model(&models.SubCategory{}).Where("user_id = ?", userID)
	if nameFilter != "" {
		base = base.Where("LOWER(name) LIKE LOWER(?)", "%"+nameFilter+"%")
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var subCategories []models.SubCategory
	if err := base.Preload("Category").Order("created_at DESC").
		Scopes(pagination.Paginate(page)).Find(&subCategories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(subCategories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetSubCategoryByID retrieves a sub-category owned by the user.
func (s *subCategoryService) GetSubCategoryByID(userID, subCategoryID string) (*models.SubCategory, error) {
	var subCategory models.SubCategory
	if err := s.db.Where("id = ? AND user_id = ?", subCategoryID, userID).First(&subCategory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &subCategory, nil
}

// UpdateSubCategory applies a patch to a sub-category. Moving it to
// another category re-validates ownership of the new parent.
func (s *subCategoryService) UpdateSubCategory(userID, subCategoryID string, patch SubCategoryPatch) (*models.SubCategory, error) {
	subCategory, err := s.getOwnedSubCategory(userID, subCategoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "sub-category name cannot be empty")
		}
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.CategoryID != nil {
		var parent models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *patch.CategoryID, userID).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["category_id"] = *patch.CategoryID
	}

	if len(updates) > 0 {
		if err := s.db.Model(subCategory).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return subCategory, nil
}

// DeleteSubCategory deletes a sub-category that has no referencing records.
func (s *subCategoryService) DeleteSubCategory(userID, subCategoryID string) error {
	subCategory, err := s.getOwnedSubCategory(userID, subCategoryID)
	if err != nil {
		return err
	}

	var refCount int64
	if err := s.db.Model(&models.ExpenseRecord{}).Where("sub_category_id = ?", subCategoryID).Count(&refCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if refCount > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.db.Delete(subCategory).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *subCategoryService) getOwnedSubCategory(userID, subCategoryID string) (*models.SubCategory, error) {
	var subCategory models.SubCategory
	if err := s.db.Where("id = ?", subCategoryID).First(&subCategory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if subCategory.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return &subCategory, nil
}
