package services

import (
	"database/sql"
	"errors"
	"math"
	"sort"
	"strconv"
	"time"

	"gorm.io/gorm"

	apperrors "expensedash/internal/errors"
	"expensedash/internal/models"
)

// Bar chart window sizes: last 12 calendar months or last 7 calendar years.
const (
	barChartMonths = 12
	barChartYears  = 7
)

// dashboardService computes the derived aggregation views. Amounts are
// kept as fixed-point strings at rest; this service parses them to
// float64, accumulates, and rounds to two places only for display.
type dashboardService struct {
	db *gorm.DB
	// highThreshold gates the include-high filters: when a query
	// excludes high expenses, rows with amount >= highThreshold drop out.
	highThreshold float64
	// dayStartHour offsets period start boundaries so date-only expense
	// timestamps cannot shift across a day boundary between the store's
	// and the API's timezones. A normalization convention, configured
	// rather than hardcoded.
	dayStartHour int
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB, highThreshold float64, dayStartHour int) DashboardServicer {
	return &dashboardService{db: db, highThreshold: highThreshold, dayStartHour: dayStartHour}
}

// round2 rounds half-up to two decimal places for display.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// parseAmount converts a stored fixed-point string to float64.
// Unparseable amounts count as zero rather than failing a whole view.
func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// GetCardSummary computes the lifetime total, the day span since the
// earliest record, and the per-day average. A caller with zero records
// gets a zeroed summary, not an error.
func (s *dashboardService) GetCardSummary(userID string) (*CardSummary, error) {
	var agg struct {
		Total sql.NullFloat64
	}
	if err := s.db.Model(&models.ExpenseRecord{}).
		Select("SUM(CAST(amount AS numeric)) AS total").
		Where("user_id = ?", userID).
		Scan(&agg).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var oldest models.ExpenseRecord
	if err := s.db.Where("user_id = ?", userID).
		Order("expense_date ASC").First(&oldest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CardSummary{}, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totalDays := int(math.Ceil(time.Since(oldest.ExpenseDate).Hours() / 24))
	if totalDays < 1 {
		totalDays = 1
	}

	total := agg.Total.Float64
	return &CardSummary{
		TotalExpense:  round2(total),
		TotalDays:     totalDays,
		AveragePerDay: round2(total / float64(totalDays)),
	}, nil
}

// GetBarChart buckets the caller's records by month or year over a
// trailing window and sums each bucket in first-seen order.
func (s *dashboardService) GetBarChart(userID string, query BarChartQuery) (*BarChartResult, error) {
	now := time.Now()
	var start time.Time
	yearly := query.PeriodType == "yearly"
	if yearly {
		start = time.Date(now.Year()-(barChartYears-1), time.January, 1, s.dayStartHour, 0, 0, 0, time.Local)
	} else {
		start = time.Date(now.Year(), now.Month()-(barChartMonths-1), 1, s.dayStartHour, 0, 0, 0, time.Local)
	}

	base := s.db.Model(&models.ExpenseRecord{}).
		Where("user_id = ?", userID).
		Where("expense_date >= ?", start)
	if query.CategoryID != "" {
		base = base.Where("category_id = ?", query.CategoryID)
	}
	if query.SubCategoryID != "" {
		base = base.Where("sub_category_id = ?", query.SubCategoryID)
	}

	var records []models.ExpenseRecord
	if err := base.Order("expense_date ASC").Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Buckets keep first-seen order, keyed "YYYY-M" or "YYYY".
	keys := make([]string, 0, barChartMonths)
	buckets := make(map[string]float64)
	totalExpense := 0.0

	for _, record := range records {
		amount := parseAmount(record.Amount)
		if !query.IncludeHigh && amount >= s.highThreshold {
			continue
		}

		var key string
		if yearly {
			key = strconv.Itoa(record.ExpenseDate.Year())
		} else {
			key = strconv.Itoa(record.ExpenseDate.Year()) + "-" + strconv.Itoa(int(record.ExpenseDate.Month()))
		}

		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] += amount
		totalExpense += amount
	}

	if len(keys) == 0 {
		return nil, apperrors.ErrNoData
	}

	points := make([]BarChartPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, BarChartPoint{Date: key, Amount: buckets[key]})
	}

	periodsWithData := len(keys)
	return &BarChartResult{
		TotalExpense:    round2(totalExpense),
		AverageExpense:  round2(totalExpense / float64(periodsWithData)),
		PeriodsWithData: periodsWithData,
		DataPoints:      points,
	}, nil
}

// pieRow is the join projection for the pie chart query.
type pieRow struct {
	Amount          string
	CategoryName    sql.NullString
	SubCategoryName sql.NullString
}

// GetPieChart groups one month's or one year's records by category or
// sub-category display name and annotates each group's share of the total.
func (s *dashboardService) GetPieChart(userID string, query PieChartQuery) (*PieChartResult, error) {
	var start, end time.Time
	if query.Month > 0 {
		start = time.Date(query.Year, time.Month(query.Month), 1, s.dayStartHour, 0, 0, 0, time.Local)
		end = start.AddDate(0, 1, 0)
	} else {
		start = time.Date(query.Year, time.January, 1, s.dayStartHour, 0, 0, 0, time.Local)
		end = start.AddDate(1, 0, 0)
	}

	var rows []pieRow
	if err := s.db.Model(&models.ExpenseRecord{}).
		Select("expense_records.amount, categories.name AS category_name, sub_categories.name AS sub_category_name").
		Joins("LEFT JOIN categories ON categories.id = expense_records.category_id").
		Joins("LEFT JOIN sub_categories ON sub_categories.id = expense_records.sub_category_id").
		Where("expense_records.user_id = ?", userID).
		Where("expense_records.expense_date >= ? AND expense_records.expense_date < ?", start, end).
		Order("expense_records.expense_date ASC").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type group struct {
		total float64
		count int
	}
	keys := make([]string, 0, len(rows))
	groups := make(map[string]*group)
	totalExpense := 0.0

	for _, row := range rows {
		amount := parseAmount(row.Amount)
		if !query.IncludeHigh && amount >= s.highThreshold {
			continue
		}

		// Unresolved names group under the empty label.
		var key string
		if query.GroupBy == "subCategory" {
			key = row.SubCategoryName.String
		} else {
			key = row.CategoryName.String
		}

		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			keys = append(keys, key)
		}
		g.total += amount
		g.count++
		totalExpense += amount
	}

	if len(keys) == 0 {
		return nil, apperrors.ErrNoData
	}

	// Descending by amount; insertion order breaks ties.
	sort.SliceStable(keys, func(i, j int) bool {
		return groups[keys[i]].total > groups[keys[j]].total
	})

	slices := make([]PieChartSlice, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		percentage := 0.0
		if totalExpense > 0 {
			percentage = round2(g.total / totalExpense * 100)
		}
		slices = append(slices, PieChartSlice{
			Label:      key,
			Amount:     strconv.FormatFloat(round2(g.total), 'f', 2, 64),
			Percentage: percentage,
			Count:      g.count,
		})
	}

	return &PieChartResult{
		TotalExpense: round2(totalExpense),
		PieChartData: slices,
	}, nil
}
