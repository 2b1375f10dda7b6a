package models

// User represents the user model in the database
type User struct {
	Base
	Email    string `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password string `gorm:"not null" json:"-"`

	Categories    []Category      `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	SubCategories []SubCategory   `gorm:"foreignKey:UserID" json:"sub_categories,omitempty"`
	Records       []ExpenseRecord `gorm:"foreignKey:UserID" json:"records,omitempty"`
}
