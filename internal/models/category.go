package models

// Category is a top-level expense grouping owned by a single user.
// Names are unique per owner, not globally.
type Category struct {
	Base
	UserID      string `gorm:"type:uuid;not null;index;uniqueIndex:idx_category_owner_name" json:"user_id"`
	Name        string `gorm:"not null;uniqueIndex:idx_category_owner_name" json:"name"`
	Description string `json:"description"`

	SubCategories []SubCategory   `gorm:"foreignKey:CategoryID" json:"sub_categories,omitempty"`
	Records       []ExpenseRecord `gorm:"foreignKey:CategoryID" json:"records,omitempty"`
}
