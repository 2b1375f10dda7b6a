package models

// SubCategory belongs to exactly one Category owned by the same user.
type SubCategory struct {
	Base
	UserID      string `gorm:"type:uuid;not null;index;uniqueIndex:idx_sub_category_owner_name" json:"user_id"`
	Name        string `gorm:"not null;uniqueIndex:idx_sub_category_owner_name" json:"name"`
	Description string `json:"description"`
	CategoryID  string `gorm:"type:uuid;not null;index" json:"category_id"`

	Category *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Records  []ExpenseRecord `gorm:"foreignKey:SubCategoryID" json:"records,omitempty"`
}
