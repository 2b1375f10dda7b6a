package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "expensedash/internal/errors"
	"expensedash/internal/services"
)

// DashboardHandler serves the aggregation views.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// BarChartRequest holds the bar chart query parameters.
type BarChartRequest struct {
	CategoryID    string `form:"category_id" binding:"omitempty,uuid"`
	SubCategoryID string `form:"sub_category_id" binding:"omitempty,uuid"`
	PeriodType    string `form:"period_type" binding:"omitempty,period_type"`
	IncludeHigh   bool   `form:"include_high"`
}

// PieChartRequest holds the pie chart query parameters.
type PieChartRequest struct {
	Year        int    `form:"year" binding:"omitempty,gte=1970,lte=9999"`
	Month       int    `form:"month" binding:"omitempty,gte=1,lte=12"`
	GroupBy     string `form:"group_by" binding:"omitempty,chart_group"`
	IncludeHigh bool   `form:"include_high"`
}

// GetCardSummary returns the headline spending figures
// @Summary     Dashboard card summary
// @Description Lifetime total expense, days since first record, and daily average
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.CardSummary "Summary figures"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetCardSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.dashboardService.GetCardSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetBarChart returns the spending time series
// @Summary     Dashboard bar chart
// @Description Bucketed spending over the trailing window, monthly or yearly
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       category_id query string false "Category ID filter"
// @Param       sub_category_id query string false "Sub-category ID filter"
// @Param       period_type query string false "Bucket size" Enums(monthly, yearly)
// @Param       include_high query bool false "Include high-value expenses"
// @Success     200 {object} services.BarChartResult "Bar chart payload"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No data in window"
// @Router      /dashboard/bar-chart [get]
func (h *DashboardHandler) GetBarChart(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BarChartRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.PeriodType == "" {
		req.PeriodType = "monthly"
	}

	result, err := h.dashboardService.GetBarChart(userID, services.BarChartQuery{
		CategoryID:    req.CategoryID,
		SubCategoryID: req.SubCategoryID,
		PeriodType:    req.PeriodType,
		IncludeHigh:   req.IncludeHigh,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPieChart returns the spending breakdown by group
// @Summary     Dashboard pie chart
// @Description Spending breakdown by category or sub-category for a month or a year
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Year, defaults to current"
// @Param       month query int false "Month 1-12; absent means whole year"
// @Param       group_by query string false "Grouping" Enums(category, subCategory)
// @Param       include_high query bool false "Include high-value expenses"
// @Success     200 {object} services.PieChartResult "Pie chart payload"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No data in period"
// @Router      /dashboard/pie-chart [get]
func (h *DashboardHandler) GetPieChart(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PieChartRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.Year == 0 {
		req.Year = time.Now().Year()
	}
	if req.GroupBy == "" {
		req.GroupBy = "category"
	}

	result, err := h.dashboardService.GetPieChart(userID, services.PieChartQuery{
		Year:        req.Year,
		Month:       req.Month,
		GroupBy:     req.GroupBy,
		IncludeHigh: req.IncludeHigh,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
