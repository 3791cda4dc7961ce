package services

import (
	"testing"

	"budgettracker/internal/models"
	"budgettracker/internal/testutil"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestUserService(db *gorm.DB) *userService {
	return &userService{db: db, cost: bcrypt.MinCost}
}

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestUserService(db)

		user, err := svc.CreateUser("alice@example.com", "password123")
		testutil.AssertNoError(t, err)

		if user.ID == 0 {
			t.Fatal("expected non-zero user ID")
		}
		if user.PasswordHash == "password123" || user.PasswordHash == "" {
			t.Error("expected password to be hashed")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")); err != nil {
			t.Errorf("stored hash does not verify: %v", err)
		}
	})

	t.Run("email_normalized", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestUserService(db)

		user, err := svc.CreateUser("  Alice@EXAMPLE.COM ", "password123")
		testutil.AssertNoError(t, err)

		if user.Email != "alice@example.com" {
			t.Errorf("expected normalized email, got %s", user.Email)
		}
	})

	t.Run("duplicate_email_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestUserService(db)

		_, err := svc.CreateUser("dup@example.com", "password123")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser("DUP@example.com", "other")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("missing_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestUserService(db)

		_, err := svc.CreateUser("", "password123")
		testutil.AssertAppError(t, err, "MISSING_CREDENTIALS")
		_, err = svc.CreateUser("   ", "password123")
		testutil.AssertAppError(t, err, "MISSING_CREDENTIALS")
		_, err = svc.CreateUser("a@b.c", "")
		testutil.AssertAppError(t, err, "MISSING_CREDENTIALS")

		var count int64
		db.Model(&models.User{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no users, got %d", count)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestUserService(db)
		created := testutil.CreateTestUserWithEmail(t, db, "bob@example.com")

		user, err := svc.Authenticate(" BOB@example.com", testutil.TestPassword)
		testutil.AssertNoError(t, err)
		if user.ID != created.ID {
			t.Errorf("expected user %d, got %d", created.ID, user.ID)
		}
	})

	t.Run("wrong_password_and_unknown_email_look_alike", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestUserService(db)
		testutil.CreateTestUserWithEmail(t, db, "bob@example.com")

		_, errPassword := svc.Authenticate("bob@example.com", "wrong")
		testutil.AssertAppError(t, errPassword, "INVALID_CREDENTIALS")
		_, errEmail := svc.Authenticate("nobody@example.com", testutil.TestPassword)
		testutil.AssertAppError(t, errEmail, "INVALID_CREDENTIALS")

		if errPassword.Error() != errEmail.Error() {
			t.Errorf("messages differ: %q vs %q", errPassword, errEmail)
		}
	})
}

func TestGetUserByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestUserService(db)
	created := testutil.CreateTestUser(t, db)

	user, err := svc.GetUserByID(created.ID)
	testutil.AssertNoError(t, err)
	if user.Email != created.Email {
		t.Errorf("expected %s, got %s", created.Email, user.Email)
	}

	_, err = svc.GetUserByID(9999)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestDeleteUser(t *testing.T) {
	t.Run("cascades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestUserService(db)
		user := testutil.CreateTestUser(t, db)
		keep := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransaction(t, db, user.ID, "2024-03-01", models.KindIncome, "Salary", 100)
		testutil.CreateTestTransaction(t, db, keep.ID, "2024-03-01", models.KindIncome, "Salary", 100)
		testutil.CreateTestBudget(t, db, user.ID, 2024, 3, 100)

		testutil.AssertNoError(t, svc.DeleteUser(user.ID))

		var txCount, budgetCount int64
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&txCount)
		db.Model(&models.Budget{}).Where("user_id = ?", user.ID).Count(&budgetCount)
		if txCount != 0 || budgetCount != 0 {
			t.Errorf("owned rows survived: %d transactions, %d budgets", txCount, budgetCount)
		}
		db.Model(&models.Transaction{}).Where("user_id = ?", keep.ID).Count(&txCount)
		if txCount != 1 {
			t.Errorf("other user's rows removed")
		}
	})

	t.Run("missing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestUserService(db)

		testutil.AssertAppError(t, svc.DeleteUser(9999), "USER_NOT_FOUND")
	})
}
