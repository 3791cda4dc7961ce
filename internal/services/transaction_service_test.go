package services

import (
	"testing"
	"time"

	"budgettracker/internal/models"
	"budgettracker/internal/pagination"
	"budgettracker/internal/testutil"

	"gorm.io/gorm"
)

func newTestTransactionService(db *gorm.DB) *transactionService {
	return &transactionService{db: db, now: func() time.Time { return fixedNow }}
}

func countTransactions(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return n
}

func TestCreateTransaction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, TransactionInput{
			Date: "2024-03-15", Kind: "expense", Category: " Food ", Amount: "45.5", Note: "  lunch ",
		})
		testutil.AssertNoError(t, err)

		if tx.ID == 0 {
			t.Fatal("expected non-zero transaction ID")
		}
		if tx.Amount != 4550 {
			t.Errorf("expected amount 4550, got %d", tx.Amount)
		}
		if tx.Category != "Food" || tx.Note != "lunch" {
			t.Errorf("expected trimmed fields, got %q %q", tx.Category, tx.Note)
		}
		if tx.Kind != models.KindExpense || tx.TxDate != "2024-03-15" {
			t.Errorf("unexpected kind/date %s %s", tx.Kind, tx.TxDate)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, TransactionInput{Kind: "income", Amount: "10"})
		testutil.AssertNoError(t, err)

		if tx.Category != models.DefaultCategory {
			t.Errorf("expected category %s, got %s", models.DefaultCategory, tx.Category)
		}
		if tx.TxDate != "2024-03-15" {
			t.Errorf("expected today's date, got %s", tx.TxDate)
		}
	})

	t.Run("rounds_to_cents", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, TransactionInput{Kind: "expense", Amount: "19.999"})
		testutil.AssertNoError(t, err)
		if tx.Amount != 2000 {
			t.Errorf("expected 2000, got %d", tx.Amount)
		}
	})

	failures := []struct {
		name string
		in   TransactionInput
		code string
	}{
		{"negative_amount", TransactionInput{Kind: "expense", Amount: "-5"}, "INVALID_AMOUNT"},
		{"missing_amount", TransactionInput{Kind: "expense"}, "INVALID_AMOUNT"},
		{"garbage_amount", TransactionInput{Kind: "expense", Amount: "ten"}, "INVALID_AMOUNT"},
		{"bad_kind", TransactionInput{Kind: "transfer", Amount: "5"}, "INVALID_KIND"},
		{"missing_kind", TransactionInput{Amount: "5"}, "INVALID_KIND"},
		{"bad_date", TransactionInput{Date: "15/03/2024", Kind: "income", Amount: "5"}, "INVALID_DATE"},
	}
	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			svc := newTestTransactionService(db)
			report := NewReportService(db)
			user := testutil.CreateTestUser(t, db)
			testutil.CreateTestTransaction(t, db, user.ID, "2024-03-01", models.KindIncome, "Salary", 1000)

			before, err := report.MonthlyReport(user.ID, marchFilter())
			testutil.AssertNoError(t, err)

			_, err = svc.CreateTransaction(user.ID, tc.in)
			testutil.AssertAppError(t, err, tc.code)

			if n := countTransactions(t, db, user.ID); n != 1 {
				t.Errorf("expected no new row, got %d rows", n)
			}
			after, err := report.MonthlyReport(user.ID, marchFilter())
			testutil.AssertNoError(t, err)
			if after.Income != before.Income || after.Expense != before.Expense || after.Balance != before.Balance {
				t.Errorf("totals changed after rejected write: %+v -> %+v", before, after)
			}
		})
	}
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("empty_fields_keep_stored_values", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		created, err := svc.CreateTransaction(user.ID, TransactionInput{
			Date: "2024-03-15", Kind: "expense", Category: "Food", Amount: "45.50", Note: "lunch",
		})
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateTransaction(user.ID, created.ID, TransactionInput{Amount: "50"})
		testutil.AssertNoError(t, err)

		if updated.Amount != 5000 {
			t.Errorf("expected amount 5000, got %d", updated.Amount)
		}
		stored, err := svc.GetTransactionByID(user.ID, created.ID)
		testutil.AssertNoError(t, err)
		if stored.TxDate != "2024-03-15" || stored.Kind != models.KindExpense || stored.Category != "Food" || stored.Note != "lunch" {
			t.Errorf("omitted fields changed: %+v", stored)
		}
		if stored.Amount != 5000 {
			t.Errorf("expected stored amount 5000, got %d", stored.Amount)
		}
	})

	t.Run("moves_to_new_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, "2024-03-15", models.KindExpense, "Food", 100)

		updated, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionInput{Date: "2024-04-02"})
		testutil.AssertNoError(t, err)

		y, m, ok := updated.YearMonth()
		if !ok || y != 2024 || m != 4 {
			t.Errorf("expected 2024-04, got %d-%d", y, m)
		}
	})

	t.Run("invalid_amount_leaves_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, "2024-03-15", models.KindExpense, "Food", 100)

		_, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionInput{Amount: "-1"})
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")

		stored, err := svc.GetTransactionByID(user.ID, tx.ID)
		testutil.AssertNoError(t, err)
		if stored.Amount != 100 {
			t.Errorf("expected unchanged amount 100, got %d", stored.Amount)
		}
	})

	t.Run("invalid_kind", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, "2024-03-15", models.KindExpense, "Food", 100)

		_, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionInput{Kind: "loan"})
		testutil.AssertAppError(t, err, "INVALID_KIND")
	})

	t.Run("other_users_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, owner.ID, "2024-03-15", models.KindExpense, "Food", 100)

		_, err := svc.UpdateTransaction(other.ID, tx.ID, TransactionInput{Amount: "999"})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		stored, err := svc.GetTransactionByID(owner.ID, tx.ID)
		testutil.AssertNoError(t, err)
		if stored.Amount != 100 {
			t.Errorf("foreign edit changed amount to %d", stored.Amount)
		}
	})

	t.Run("missing_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpdateTransaction(user.ID, 9999, TransactionInput{Amount: "1"})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("owner_deletes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, "2024-02-10", models.KindExpense, "Food", 100)

		deleted, err := svc.DeleteTransaction(user.ID, tx.ID)
		testutil.AssertNoError(t, err)

		if deleted.TxDate != "2024-02-10" {
			t.Errorf("expected deleted row date, got %s", deleted.TxDate)
		}
		if n := countTransactions(t, db, user.ID); n != 0 {
			t.Errorf("expected row removed, %d left", n)
		}
	})

	t.Run("other_user_cannot_delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, owner.ID, "2024-02-10", models.KindExpense, "Food", 100)

		_, err := svc.DeleteTransaction(other.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		if n := countTransactions(t, db, owner.ID); n != 1 {
			t.Errorf("expected owner's row to survive, %d left", n)
		}
	})

	t.Run("twice", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, "2024-02-10", models.KindExpense, "Food", 100)

		_, err := svc.DeleteTransaction(user.ID, tx.ID)
		testutil.AssertNoError(t, err)
		_, err = svc.DeleteTransaction(user.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestListTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	a := testutil.CreateTestTransaction(t, db, user.ID, "2024-03-10", models.KindExpense, "Food", 100)
	b := testutil.CreateTestTransaction(t, db, user.ID, "2024-03-01", models.KindExpense, "Food", 200)
	c := testutil.CreateTestTransaction(t, db, user.ID, "2024-03-10", models.KindIncome, "Salary", 300)
	testutil.CreateTestTransaction(t, db, user.ID, "2024-04-01", models.KindIncome, "Salary", 400)

	t.Run("oldest_first", func(t *testing.T) {
		got, err := svc.ListTransactions(user.ID, marchFilter(), Oldest)
		testutil.AssertNoError(t, err)
		want := []uint{b.ID, a.ID, c.ID}
		if len(got) != len(want) {
			t.Fatalf("expected %d rows, got %d", len(want), len(got))
		}
		for i, id := range want {
			if got[i].ID != id {
				t.Errorf("row %d: expected id %d, got %d", i, id, got[i].ID)
			}
		}
	})

	t.Run("newest_first", func(t *testing.T) {
		got, err := svc.ListTransactions(user.ID, marchFilter(), Newest)
		testutil.AssertNoError(t, err)
		want := []uint{c.ID, a.ID, b.ID}
		for i, id := range want {
			if got[i].ID != id {
				t.Errorf("row %d: expected id %d, got %d", i, id, got[i].ID)
			}
		}
	})
}

func TestGetUserTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	for day := 1; day <= 5; day++ {
		testutil.CreateTestTransaction(t, db, user.ID, time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC).Format(models.DateLayout), models.KindExpense, "Food", int64(day))
	}
	testutil.CreateTestTransaction(t, db, other.ID, "2024-03-02", models.KindExpense, "Food", 50)

	result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{Page: 2, PageSize: 2}, marchFilter())
	testutil.AssertNoError(t, err)

	if result.TotalItems != 5 {
		t.Errorf("expected 5 total items, got %d", result.TotalItems)
	}
	if result.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", result.TotalPages)
	}
	if len(result.Data) != 2 || result.Data[0].TxDate != "2024-03-03" {
		t.Errorf("unexpected page: %+v", result.Data)
	}

	defaults, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, marchFilter())
	testutil.AssertNoError(t, err)
	if defaults.Page != 1 || defaults.PageSize != 20 || len(defaults.Data) != 5 {
		t.Errorf("unexpected defaults: page=%d size=%d len=%d", defaults.Page, defaults.PageSize, len(defaults.Data))
	}
}
