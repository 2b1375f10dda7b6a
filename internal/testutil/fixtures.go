package testutil

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"expensedash/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return CreateTestCategoryWithName(t, db, userID, fmt.Sprintf("Test Category %d", nextID()))
}

// CreateTestCategoryWithName creates a category with the given name.
func CreateTestCategoryWithName(t *testing.T, db *gorm.DB, userID, name string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   name,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSubCategory creates a sub-category under the given category.
func CreateTestSubCategory(t *testing.T, db *gorm.DB, userID, categoryID string) *models.SubCategory {
	t.Helper()
	return CreateTestSubCategoryWithName(t, db, userID, categoryID, fmt.Sprintf("Test Sub-Category %d", nextID()))
}

// CreateTestSubCategoryWithName creates a sub-category with the given name.
func CreateTestSubCategoryWithName(t *testing.T, db *gorm.DB, userID, categoryID, name string) *models.SubCategory {
	t.Helper()

	subCategory := &models.SubCategory{
		UserID:     userID,
		Name:       name,
		CategoryID: categoryID,
	}
	if err := db.Create(subCategory).Error; err != nil {
		t.Fatalf("failed to create test sub-category: %v", err)
	}
	return subCategory
}

// CreateTestRecord creates an expense record with the given amount on the given date.
func CreateTestRecord(t *testing.T, db *gorm.DB, userID, categoryID, subCategoryID string, amount float64, date time.Time) *models.ExpenseRecord {
	t.Helper()

	record := &models.ExpenseRecord{
		UserID:        userID,
		ExpenseDate:   date,
		Amount:        strconv.FormatFloat(amount, 'f', 2, 64),
		Currency:      "USD",
		Reason:        fmt.Sprintf("Test Expense %d", nextID()),
		CategoryID:    categoryID,
		SubCategoryID: subCategoryID,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to create test record: %v", err)
	}
	return record
}
