package services

import (
	"time"

	"expensedash/internal/models"
	"expensedash/internal/pagination"
)

// UserServicer defines the contract for identity and verification logic.
// Registration and password reset are two-step: a durable verification
// code row is staged first, then consumed by the confirming call.
type UserServicer interface {
	StartRegistration(email, password string) error
	VerifyRegistration(email, code string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	StartPasswordReset(email string) error
	ResetPassword(email, code, newPassword string) error
}

// CategoryPatch carries optional category updates. A nil field means
// "unchanged"; a pointer to the empty string is a deliberate clear.
type CategoryPatch struct {
	Name        *string
	Description *string
}

// CategoryServicer defines the contract for category business logic.
type CategoryServicer interface {
	CreateCategory(userID, name, description string) (*models.Category, error)
	GetUserCategories(userID, nameFilter string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryTree(userID string) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, patch CategoryPatch) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// SubCategoryPatch carries optional sub-category updates.
type SubCategoryPatch struct {
	Name        *string
	Description *string
	CategoryID  *string
}

// SubCategoryServicer defines the contract for sub-category business logic.
type SubCategoryServicer interface {
	CreateSubCategory(userID, name, description, categoryID string) (*models.SubCategory, error)
	GetUserSubCategories(userID, nameFilter string, page pagination.PageRequest) (*pagination.PageResponse[models.SubCategory], error)
	GetSubCategoryByID(userID, subCategoryID string) (*models.SubCategory, error)
	UpdateSubCategory(userID, subCategoryID string, patch SubCategoryPatch) (*models.SubCategory, error)
	DeleteSubCategory(userID, subCategoryID string) error
}

// RecordInput holds the fields for creating an expense record.
type RecordInput struct {
	ExpenseDate   time.Time
	Amount        float64
	Currency      string
	Reason        string
	CategoryID    string
	SubCategoryID string
}

// RecordPatch carries optional expense record updates; nil means "unchanged".
type RecordPatch struct {
	ExpenseDate   *time.Time
	Amount        *float64
	Currency      *string
	Reason        *string
	CategoryID    *string
	SubCategoryID *string
}

// RecordFilter holds optional filter parameters for listing records.
type RecordFilter struct {
	Reason        string
	CategoryID    string
	SubCategoryID string
	StartDate     *time.Time
	EndDate       *time.Time
	SortBy        string // newest | oldest | highest | lowest
}

// RecordServicer defines the contract for expense record business logic.
type RecordServicer interface {
	CreateRecord(userID string, input RecordInput) (*models.ExpenseRecord, error)
	GetUserRecords(userID string, page pagination.PageRequest, filter RecordFilter) (*pagination.PageResponse[models.ExpenseRecord], error)
	GetRecordByID(userID, recordID string) (*models.ExpenseRecord, error)
	UpdateRecord(userID, recordID string, patch RecordPatch) (*models.ExpenseRecord, error)
	DeleteRecord(userID, recordID string) error
}

// CardSummary is the dashboard headline: lifetime total, days since the
// first record, and the daily average over that span.
type CardSummary struct {
	TotalExpense  float64 `json:"total_expense"`
	TotalDays     int     `json:"total_days"`
	AveragePerDay float64 `json:"average_per_day"`
}

// BarChartQuery holds the bar chart parameters.
type BarChartQuery struct {
	CategoryID    string
	SubCategoryID string
	PeriodType    string // monthly | yearly
	IncludeHigh   bool
}

// BarChartPoint is one time bucket in the bar chart series.
type BarChartPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// BarChartResult is the bar chart payload.
type BarChartResult struct {
	TotalExpense    float64         `json:"total_expense"`
	AverageExpense  float64         `json:"average_expense"`
	PeriodsWithData int             `json:"periods_with_data"`
	DataPoints      []BarChartPoint `json:"data_points"`
}

// PieChartQuery holds the pie chart parameters. Month of zero means the
// whole year.
type PieChartQuery struct {
	Year        int
	Month       int
	GroupBy     string // category | subCategory
	IncludeHigh bool
}

// PieChartSlice is one group in the pie chart breakdown.
type PieChartSlice struct {
	Label      string  `json:"label"`
	Amount     string  `json:"amount"`
	Percentage float64 `json:"percentage"`
	Count      int     `json:"count"`
}

// PieChartResult is the pie chart payload.
type PieChartResult struct {
	TotalExpense float64         `json:"total_expense"`
	PieChartData []PieChartSlice `json:"pie_chart_data"`
}

// DashboardServicer defines the contract for the aggregation views.
type DashboardServicer interface {
	GetCardSummary(userID string) (*CardSummary, error)
	GetBarChart(userID string, query BarChartQuery) (*BarChartResult, error)
	GetPieChart(userID string, query PieChartQuery) (*PieChartResult, error)
}

// ImportResult reports a completed bulk import.
type ImportResult struct {
	Count   int                    `json:"count"`
	Records []models.ExpenseRecord `json:"records"`
}

// ImportServicer defines the contract for the bulk CSV import pipeline.
type ImportServicer interface {
	ImportRecords(userID, filePath string) (*ImportResult, error)
}
