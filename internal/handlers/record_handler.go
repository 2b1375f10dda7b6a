package handlers

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"expensedash/internal/config"
	apperrors "expensedash/internal/errors"
	"expensedash/internal/pagination"
	"expensedash/internal/services"
	"expensedash/internal/uuid"
)

// RecordHandler handles expense record requests, including bulk import.
type RecordHandler struct {
	recordService services.RecordServicer
	importService services.ImportServicer
}

// NewRecordHandler creates a new RecordHandler
func NewRecordHandler(recordService services.RecordServicer, importService services.ImportServicer) *RecordHandler {
	return &RecordHandler{recordService: recordService, importService: importService}
}

// CreateRecordRequest represents the request payload for creating an expense record
type CreateRecordRequest struct {
	ExpenseDate   string  `json:"expense_date" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gte=0"`
	Currency      string  `json:"currency" binding:"required,max=10"`
	Reason        string  `json:"reason" binding:"max=500"`
	CategoryID    string  `json:"category_id" binding:"required,uuid"`
	SubCategoryID string  `json:"sub_category_id" binding:"required,uuid"`
}

// UpdateRecordRequest represents the patch payload for updating an
// expense record; absent fields stay unchanged.
type UpdateRecordRequest struct {
	ExpenseDate   *string  `json:"expense_date"`
	Amount        *float64 `json:"amount"`
	Currency      *string  `json:"currency"`
	Reason        *string  `json:"reason"`
	CategoryID    *string  `json:"category_id"`
	SubCategoryID *string  `json:"sub_category_id"`
}

// ListRecordsQuery holds the filter parameters for listing records.
type ListRecordsQuery struct {
	Reason        string `form:"reason"`
	CategoryID    string `form:"category_id"`
	SubCategoryID string `form:"sub_category_id"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	SortBy        string `form:"sort_by" binding:"omitempty,record_sort"`
}

// parseRecordDate accepts a full RFC3339 timestamp or a bare date.
// Date-only values normalize to noon local time so they cannot shift
// across a day boundary under the chart window offset.
func parseRecordDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.Local), nil
}

// CreateRecord handles the creation of a new expense record
// @Summary     Create an expense record
// @Description Create a new expense record under owned category and sub-category
// @Tags        records
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRecordRequest true "Record details"
// @Success     201 {object} map[string]interface{} "Record created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category or sub-category not found"
// @Router      /records [post]
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expenseDate, err := parseRecordDate(req.ExpenseDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "expense_date must be an RFC 3339 timestamp or YYYY-MM-DD date"))
		return
	}

	record, err := h.recordService.CreateRecord(userID, services.RecordInput{
		ExpenseDate:   expenseDate,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Reason:        req.Reason,
		CategoryID:    req.CategoryID,
		SubCategoryID: req.SubCategoryID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// GetUserRecords handles the paginated, filtered listing of expense records
// @Summary     List expense records
// @Description List the authenticated user's expense records with optional filters
// @Tags        records
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       reason query string false "Reason substring filter"
// @Param       category_id query string false "Category ID filter"
// @Param       sub_category_id query string false "Sub-category ID filter"
// @Param       start_date query string false "Range start (inclusive)"
// @Param       end_date query string false "Range end (inclusive)"
// @Param       sort_by query string false "Sort order" Enums(newest, oldest, highest, lowest)
// @Success     200 {object} map[string]interface{} "Paginated records"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /records [get]
func (h *RecordHandler) GetUserRecords(c *gin.Context) {
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

	var query ListRecordsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.RecordFilter{
		Reason:        query.Reason,
		CategoryID:    query.CategoryID,
		SubCategoryID: query.SubCategoryID,
		SortBy:        query.SortBy,
	}
	if query.StartDate != "" {
		start, err := parseRecordDate(query.StartDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date must be an RFC 3339 timestamp or YYYY-MM-DD date"))
			return
		}
		filter.StartDate = &start
	}
	if query.EndDate != "" {
		end, err := parseRecordDate(query.EndDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "end_date must be an RFC 3339 timestamp or YYYY-MM-DD date"))
			return
		}
		filter.EndDate = &end
	}

	result, err := h.recordService.GetUserRecords(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecordByID handles the retrieval of a specific expense record
// @Summary     Get record by ID
// @Description Get a specific expense record by ID
// @Tags        records
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Record ID"
// @Success     200 {object} map[string]interface{} "Record details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Record not found"
// @Router      /records/{id} [get]
func (h *RecordHandler) GetRecordByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	record, err := h.recordService.GetRecordByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": record})
}

// UpdateRecord handles updating an expense record
// @Summary     Update record
// @Description Patch an existing expense record; absent fields stay unchanged
// @Tags        records
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Record ID"
// @Param       request body UpdateRecordRequest true "Updated record details"
// @Success     200 {object} map[string]interface{} "Updated record"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Record not found"
// @Router      /records/{id} [put]
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	patch := services.RecordPatch{
		Amount:        req.Amount,
		Currency:      req.Currency,
		Reason:        req.Reason,
		CategoryID:    req.CategoryID,
		SubCategoryID: req.SubCategoryID,
	}
	if req.ExpenseDate != nil {
		expenseDate, err := parseRecordDate(*req.ExpenseDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "expense_date must be an RFC 3339 timestamp or YYYY-MM-DD date"))
			return
		}
		patch.ExpenseDate = &expenseDate
	}

	record, err := h.recordService.UpdateRecord(userID, c.Param("id"), patch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": record})
}

// DeleteRecord handles deleting an expense record
// @Summary     Delete record
// @Description Delete an expense record
// @Tags        records
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Record ID"
// @Success     200 {object} MessageResponse "Record deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Record not found"
// @Router      /records/{id} [delete]
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recordService.DeleteRecord(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Record deleted successfully"})
}

// BulkImport handles the CSV bulk upload of expense records
// @Summary     Bulk import records
// @Description Upload a CSV file of expense records; the whole file is validated before any insert
// @Tags        records
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "CSV file"
// @Success     201 {object} map[string]interface{} "Import result"
// @Failure     400 {object} ErrorResponse "Invalid or malformed file"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /records/bulk [post]
func (h *RecordHandler) BulkImport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, apperrors.ErrFileRequired)
		return
	}

	// The upload is staged on disk and removed by the import service.
	dst := filepath.Join(config.Get().UploadDir, "import-"+uuid.New()+".csv")
	if err := c.SaveUploadedFile(file, dst); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	result, err := h.importService.ImportRecords(userID, dst)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Records imported successfully",
		"count":   result.Count,
		"records": result.Records,
	})
}
