package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

// ExpenseRecord is a single expense entry. Amount is stored as a
// fixed-point decimal string with two fractional digits so values
// never accumulate floating-point drift at rest; aggregation parses it
// to float64 only at summation time.
type ExpenseRecord struct {
	Base
	UserID        string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ExpenseDate   time.Time `gorm:"not null;index" json:"expense_date"`
	Amount        string    `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency      string    `gorm:"not null" json:"currency"`
	Reason        string    `json:"reason"`
	CategoryID    string    `gorm:"type:uuid;not null;index" json:"category_id"`
	SubCategoryID string    `gorm:"type:uuid;not null;index" json:"sub_category_id"`

	Category    *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SubCategory *SubCategory `gorm:"foreignKey:SubCategoryID" json:"sub_category,omitempty"`
}

// AfterFind restores the two-decimal display form. Drivers with numeric
// column affinity can strip trailing zeros on the way back out.
func (r *ExpenseRecord) AfterFind(tx *gorm.DB) error {
	if v, err := strconv.ParseFloat(r.Amount, 64); err == nil {
		r.Amount = strconv.FormatFloat(v, 'f', 2, 64)
	}
	return nil
}
