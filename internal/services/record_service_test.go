package services

import (
	"testing"
	"time"

	"expensedash/internal/pagination"
	"expensedash/internal/testutil"
)

func TestCreateRecord(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, user.ID, cat.ID)

		record, err := svc.CreateRecord(user.ID, RecordInput{
			ExpenseDate:   time.Now(),
			Amount:        12.5,
			Currency:      "USD",
			Reason:        "lunch",
			CategoryID:    cat.ID,
			SubCategoryID: sub.ID,
		})
		testutil.AssertNoError(t, err)

		if record.ID == "" {
			t.Fatal("expected non-empty record ID")
		}
		if record.Amount != "12.50" {
			t.Errorf("expected amount 12.50, got %s", record.Amount)
		}
	})

	t.Run("missing_currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, user.ID, cat.ID)

		_, err := svc.CreateRecord(user.ID, RecordInput{
			ExpenseDate:   time.Now(),
			Amount:        5,
			CategoryID:    cat.ID,
			SubCategoryID: sub.ID,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, user.ID, cat.ID)

		_, err := svc.CreateRecord(user.ID, RecordInput{
			ExpenseDate:   time.Now(),
			Amount:        -1,
			Currency:      "USD",
			CategoryID:    cat.ID,
			SubCategoryID: sub.ID,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, user.ID, cat.ID)

		_, err := svc.CreateRecord(user.ID, RecordInput{
			ExpenseDate:   time.Now(),
			Amount:        5,
			Currency:      "USD",
			CategoryID:    "00000000-0000-0000-0000-000000000000",
			SubCategoryID: sub.ID,
		})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("foreign_sub_category_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		ownCat := testutil.CreateTestCategory(t, db, owner.ID)
		foreignCat := testutil.CreateTestCategory(t, db, other.ID)
		foreignSub := testutil.CreateTestSubCategory(t, db, other.ID, foreignCat.ID)

		_, err := svc.CreateRecord(owner.ID, RecordInput{
			ExpenseDate:   time.Now(),
			Amount:        5,
			Currency:      "USD",
			CategoryID:    ownCat.ID,
			SubCategoryID: foreignSub.ID,
		})
		testutil.AssertAppError(t, err, "SUB_CATEGORY_NOT_FOUND")
	})
}

func TestGetUserRecords(t *testing.T) {
	t.Run("returns_user_records_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)

		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat1 := testutil.CreateTestCategory(t, db, user1.ID)
		sub1 := testutil.CreateTestSubCategory(t, db, user1.ID, cat1.ID)
		cat2 := testutil.CreateTestCategory(t, db, user2.ID)
		sub2 := testutil.CreateTestSubCategory(t, db, user2.ID, cat2.ID)

		testutil.CreateTestRecord(t, db, user1.ID, cat1.ID, sub1.ID, 10, time.Now())
		testutil.CreateTestRecord(t, db, user1.ID, cat1.ID, sub1.ID, 20, time.Now())
		testutil.CreateTestRecord(t, db, user2.ID, cat2.ID, sub2.ID, 30, time.Now())

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserRecords(user1.ID, page, RecordFilter{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Errorf("expected 2 records for user1, got %d", result.TotalItems)
		}
	})

	t.Run("filter_by_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)
		cat1 := testutil.CreateTestCategory(t, db, user.ID)
		sub1 := testutil.CreateTestSubCategory(t, db, user.ID, cat1.ID)
		cat2 := testutil.CreateTestCategory(t, db, user.ID)
		sub2 := testutil.CreateTestSubCategory(t, db, user.ID, cat2.ID)

		testutil.CreateTestRecord(t, db, user.ID, cat1.ID, sub1.ID, 10, time.Now())
		testutil.CreateTestRecord(t, db, user.ID, cat2.ID, sub2.ID, 20, time.Now())

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserRecords(user.ID, page, RecordFilter{CategoryID: cat1.ID})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Fatalf("expected 1 record, got %d", result.TotalItems)
		}
		if result.Items[0].CategoryID != cat1.ID {
			t.Errorf("expected category %s, got %s", cat1.ID, result.Items[0].CategoryID)
		}
	})

	t.Run("filter_by_reason_substring", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, user.ID, cat.ID)

		r := testutil.CreateTestRecord(t, db, user.ID, cat.ID, sub.ID, 10, time.Now())
		db.Model(r).Update("reason", "Weekly Groceries")
		testutil.CreateTestRecord(t, db, user.ID, cat.ID, sub.ID, 20, time.Now())

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserRecords(user.ID, page, RecordFilter{Reason: "groceries"})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Errorf("expected 1 record matching reason, got %d", result.TotalItems)
		}
	})

	t.Run("filter_by_date_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, user.ID, cat.ID)

		now := time.Now()
		testutil.CreateTestRecord(t, db, user.ID, cat.ID, sub.ID, 10, now.AddDate(0, 0, -10))
		inRange := testutil.CreateTestRecord(t, db, user.ID, cat.ID, sub.ID, 20, now.AddDate(0, 0, -2))

		start := now.AddDate(0, 0, -5)
		end := now
		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserRecords(user.ID, page, RecordFilter{StartDate: &start, EndDate: &end})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Fatalf("expected 1 record in range, got %d", result.TotalItems)
		}
		if result.Items[0].ID != inRange.ID {
			t.Errorf("expected record %s, got %s", inRange.ID, result.Items[0].ID)
		}
	})

	t.Run("sort_orders", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, user.ID, cat.ID)

		now := time.Now()
		oldCheap := testutil.CreateTestRecord(t, db, user.ID, cat.ID, sub.ID, 5, now.AddDate(0, 0, -3))
		newExpensive := testutil.CreateTestRecord(t, db, user.ID, cat.ID, sub.ID, 50, now.AddDate(0, 0, -1))

		page := pagination.PageRequest{Page: 1, PageSize: 20}

		newest, err := svc.GetUserRecords(user.ID, page, RecordFilter{SortBy: "newest"})
		testutil.AssertNoError(t, err)
		if newest.Items[0].ID != newExpensive.ID {
			t.Error("newest sort should lead with the most recent record")
		}

		oldest, err := svc.GetUserRecords(user.ID, page, RecordFilter{SortBy: "oldest"})
		testutil.AssertNoError(t, err)
		if oldest.Items[0].ID != oldCheap.ID {
			t.Error("oldest sort should lead with the earliest record")
		}

		highest, err := svc.GetUserRecords(user.ID, page, RecordFilter{SortBy: "highest"})
		testutil.AssertNoError(t, err)
		if highest.Items[0].ID != newExpensive.ID {
			t.Error("highest sort should lead with the largest amount")
		}

		lowest, err := svc.GetUserRecords(user.ID, page, RecordFilter{SortBy: "lowest"})
		testutil.AssertNoError(t, err)
		if lowest.Items[0].ID != oldCheap.ID {
			t.Error("lowest sort should lead with the smallest amount")
		}
	})

	t.Run("preloads_relations", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, user.ID, cat.ID)
		testutil.CreateTestRecord(t, db, user.ID, cat.ID, sub.ID, 10, time.Now())

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserRecords(user.ID, page, RecordFilter{})
		testutil.AssertNoError(t, err)

		if result.Items[0].Category == nil || result.Items[0].SubCategory == nil {
			t.Error("expected category and sub-category preloaded")
		}
	})
}

func TestGetRecordByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, user.ID, cat.ID)
		record := testutil.CreateTestRecord(t, db, user.ID, cat.ID, sub.ID, 10, time.Now())

		got, err := svc.GetRecordByID(user.ID, record.ID)
		testutil.AssertNoError(t, err)
		if got.ID != record.ID {
			t.Errorf("expected record %s, got %s", record.ID, got.ID)
		}
	})

	t.Run("reload_keeps_two_decimal_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, user.ID, cat.ID)
		record := testutil.CreateTestRecord(t, db, user.ID, cat.ID, sub.ID, 12.5, time.Now())

		got, err := svc.GetRecordByID(user.ID, record.ID)
		testutil.AssertNoError(t, err)
		if got.Amount != "12.50" {
			t.Errorf("expected amount 12.50 after reload, got %q", got.Amount)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetRecordByID(user.ID, "00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "RECORD_NOT_FOUND")
	})
}

func TestUpdateRecord(t *testing.T) {
	t.Run("patch_amount_and_reason", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, user.ID, cat.ID)
		record := testutil.CreateTestRecord(t, db, user.ID, cat.ID, sub.ID, 10, time.Now())

		amount := 99.9
		reason := "corrected"
		updated, err := svc.UpdateRecord(user.ID, record.ID, RecordPatch{Amount: &amount, Reason: &reason})
		testutil.AssertNoError(t, err)

		got, err := svc.GetRecordByID(user.ID, updated.ID)
		testutil.AssertNoError(t, err)
		if got.Amount != "99.90" {
			t.Errorf("expected amount 99.90, got %s", got.Amount)
		}
		if got.Reason != "corrected" {
			t.Errorf("expected reason corrected, got %s", got.Reason)
		}
		if got.Currency != record.Currency {
			t.Errorf("currency should be unchanged, got %s", got.Currency)
		}
	})

	t.Run("negative_amount_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, user.ID, cat.ID)
		record := testutil.CreateTestRecord(t, db, user.ID, cat.ID, sub.ID, 10, time.Now())

		amount := -5.0
		_, err := svc.UpdateRecord(user.ID, record.ID, RecordPatch{Amount: &amount})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("reassign_to_foreign_category_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, owner.ID)
		sub := testutil.CreateTestSubCategory(t, db, owner.ID, cat.ID)
		foreignCat := testutil.CreateTestCategory(t, db, other.ID)
		record := testutil.CreateTestRecord(t, db, owner.ID, cat.ID, sub.ID, 10, time.Now())

		_, err := svc.UpdateRecord(owner.ID, record.ID, RecordPatch{CategoryID: &foreignCat.ID})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("other_users_record_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, owner.ID)
		sub := testutil.CreateTestSubCategory(t, db, owner.ID, cat.ID)
		record := testutil.CreateTestRecord(t, db, owner.ID, cat.ID, sub.ID, 10, time.Now())

		reason := "hijack"
		_, err := svc.UpdateRecord(other.ID, record.ID, RecordPatch{Reason: &reason})
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}

func TestDeleteRecord(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, user.ID, cat.ID)
		record := testutil.CreateTestRecord(t, db, user.ID, cat.ID, sub.ID, 10, time.Now())

		err := svc.DeleteRecord(user.ID, record.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.GetRecordByID(user.ID, record.ID)
		testutil.AssertAppError(t, err, "RECORD_NOT_FOUND")
	})

	t.Run("other_users_record_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecordService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, owner.ID)
		sub := testutil.CreateTestSubCategory(t, db, owner.ID, cat.ID)
		record := testutil.CreateTestRecord(t, db, owner.ID, cat.ID, sub.ID, 10, time.Now())

		err := svc.DeleteRecord(other.ID, record.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}
