package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "expensedash/internal/errors"
	"expensedash/internal/pagination"
	"expensedash/internal/services"
)

// SubCategoryHandler handles sub-category-related requests
type SubCategoryHandler struct {
	subCategoryService services.SubCategoryServicer
}

// NewSubCategoryHandler creates a new SubCategoryHandler
func NewSubCategoryHandler(subCategoryService services.SubCategoryServicer) *SubCategoryHandler {
	return &SubCategoryHandler{subCategoryService: subCategoryService}
}

// CreateSubCategoryRequest represents the request payload for creating a sub-category
type CreateSubCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
	CategoryID  string `json:"category_id" binding:"required,uuid"`
}

// UpdateSubCategoryRequest represents the patch payload for updating a
// sub-category; absent fields stay unchanged.
type UpdateSubCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CategoryID  *string `json:"category_id"`
}

// CreateSubCategory handles the creation of a new sub-category
// @Summary     Create a sub-category
// @Description Create a new sub-category under an owned category
// @Tags        sub-categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSubCategoryRequest true "Sub-category details"
// @Success     201 {object} map[string]interface{} "Sub-category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Parent category not found"
// @Router      /sub-categories [post]
func (h *SubCategoryHandler) CreateSubCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	subCategory, err := h.subCategoryService.CreateSubCategory(userID, req.Name, req.Description, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"sub_category": subCategory})
}

// GetUserSubCategories handles the paginated listing of sub-categories
// @Summary     List sub-categories
// @Description List the authenticated user's sub-categories with optional name filter
// @Tags        sub-categories
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       name query string false "Name substring filter"
// @Success     200 {object} map[string]interface{} "Paginated sub-categories"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /sub-categories [get]
func (h *SubCategoryHandler) GetUserSubCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.subCategoryService.GetUserSubCategories(userID, c.Query("name"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSubCategoryByID handles the retrieval of a specific sub-category
// @Summary     Get sub-category by ID
// @Description Get a specific sub-category by ID
// @Tags        sub-categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Sub-category ID"
// @Success     200 {object} map[string]interface{} "Sub-category details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Sub-category not found"
// @Router      /sub-categories/{id} [get]
func (h *SubCategoryHandler) GetSubCategoryByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subCategory, err := h.subCategoryService.GetSubCategoryByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sub_category": subCategory})
}

// UpdateSubCategory handles updating a sub-category
// @Summary     Update sub-category
// @Description Patch an existing sub-category; absent fields stay unchanged
// @Tags        sub-categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Sub-category ID"
// @Param       request body UpdateSubCategoryRequest true "Updated sub-category details"
// @Success     200 {object} map[string]interface{} "Updated sub-category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Sub-category not found"
// @Router      /sub-categories/{id} [put]
func (h *SubCategoryHandler) UpdateSubCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	subCategory, err := h.subCategoryService.UpdateSubCategory(userID, c.Param("id"), services.SubCategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sub_category": subCategory})
}

// DeleteSubCategory handles deleting a sub-category
// @Summary     Delete sub-category
// @Description Delete a sub-category that has no referencing records
// @Tags        sub-categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Sub-category ID"
// @Success     200 {object} MessageResponse "Sub-category deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Sub-category not found"
// @Failure     409 {object} ErrorResponse "Sub-category in use"
// @Router      /sub-categories/{id} [delete]
func (h *SubCategoryHandler) DeleteSubCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.subCategoryService.DeleteSubCategory(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sub-category deleted successfully"})
}
