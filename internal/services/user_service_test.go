package services

import (
	"context"
	"testing"

	"pennywise/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(db, "USD")

		user, err := svc.CreateUser(ctx, "alice@example.com", "password123", "Alice", "Smith", "eur")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected a user ID")
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected email alice@example.com, got %s", user.Email)
		}
		if user.BaseCurrency != "EUR" {
			t.Errorf("expected base currency EUR, got %s", user.BaseCurrency)
		}
		if !user.IsActive {
			t.Error("expected user to be active")
		}
	})

	t.Run("default_currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(db, "GBP")

		user, err := svc.CreateUser(ctx, "bob@example.com", "password123", "", "", "")
		testutil.AssertNoError(t, err)
		if user.BaseCurrency != "GBP" {
			t.Errorf("expected base currency GBP, got %s", user.BaseCurrency)
		}
	})

	t.Run("inactive_currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(db, "USD")

		_, err := svc.CreateUser(ctx, "carol@example.com", "password123", "", "", "XTS")
		testutil.AssertAppError(t, err, "CURRENCY_INACTIVE")
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(db, "USD")

		_, err := svc.CreateUser(ctx, "dup@example.com", "password123", "", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser(ctx, "DUP@example.com", "password456", "", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("empty_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(db, "USD")

		_, err := svc.CreateUser(ctx, "", "password123", "", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("empty_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(db, "USD")

		_, err := svc.CreateUser(ctx, "test@example.com", "", "", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("email_normalized_to_lowercase", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(db, "USD")

		user, err := svc.CreateUser(ctx, "Alice@EXAMPLE.COM", "password123", "", "", "")
		testutil.AssertNoError(t, err)

		if user.Email != "alice@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
	})
}

func TestGetUserByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(db, "USD")

		created := testutil.CreateTestUserWithEmail(t, db, "found@example.com")
		user, err := svc.GetUserByEmail(ctx, "Found@example.com")
		testutil.AssertNoError(t, err)

		if user.ID != created.ID {
			t.Errorf("expected user ID %s, got %s", created.ID, user.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(db, "USD")

		_, err := svc.GetUserByEmail(ctx, "nonexistent@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("inactive_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(db, "USD")

		user := testutil.CreateTestUserWithEmail(t, db, "inactive@example.com")
		db.Model(user).Update("is_active", false)

		_, err := svc.GetUserByEmail(ctx, "inactive@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(db, "USD")

		created := testutil.CreateTestUser(t, db)
		user, err := svc.GetUserByID(ctx, created.ID)
		testutil.AssertNoError(t, err)

		if user.Email != created.Email {
			t.Errorf("expected email %s, got %s", created.Email, user.Email)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(db, "USD")

		_, err := svc.GetUserByID(ctx, "0190a3c4-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestVerifyPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewUserService(db, "USD")
	user := testutil.CreateTestUser(t, db)

	// Fixture uses "password123" with bcrypt.MinCost
	if !svc.VerifyPassword(user, "password123") {
		t.Error("expected password verification to succeed")
	}
	if svc.VerifyPassword(user, "wrongpassword") {
		t.Error("expected password verification to fail")
	}
}
