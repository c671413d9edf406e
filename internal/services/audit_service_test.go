package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	ctx := context.Background()

	t.Run("stores changes as json", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db)
		svc := NewAuditService(db)

		svc.Log(ctx, user.ID, "CREATE_BUDGET", "budget", "b-1", "10.0.0.1", map[string]any{"amount": "100"})

		var entry models.AuditLog
		if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
			t.Fatalf("expected an audit entry: %v", err)
		}
		var changes map[string]any
		if err := json.Unmarshal([]byte(entry.Changes), &changes); err != nil {
			t.Fatalf("changes are not json: %v", err)
		}
		if changes["amount"] != "100" {
			t.Errorf("expected amount 100, got %v", changes["amount"])
		}
		if entry.IPAddress != "10.0.0.1" {
			t.Errorf("expected ip 10.0.0.1, got %s", entry.IPAddress)
		}
	})

	t.Run("unserializable changes still log", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db)
		svc := NewAuditService(db)

		svc.Log(ctx, user.ID, "UPDATE_BUDGET", "budget", "b-1", "", map[string]any{"bad": func() {}})

		var entry models.AuditLog
		if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
			t.Fatalf("expected an audit entry: %v", err)
		}
		if entry.Changes != "{}" {
			t.Errorf("expected empty changes object, got %q", entry.Changes)
		}
	})
}

func TestGetUserAuditLogs(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	svc := NewAuditService(db)

	svc.Log(ctx, user.ID, "CREATE_BUDGET_GROUP", "budget_group", "g-1", "", nil)
	svc.Log(ctx, user.ID, "GENERATE_BUDGETS", "budget_group", "g-1", "", nil)
	svc.Log(ctx, user.ID, "CREATE_BUDGET", "budget", "b-1", "", nil)
	svc.Log(ctx, other.ID, "CREATE_BUDGET_GROUP", "budget_group", "g-2", "", nil)

	t.Run("only the user's entries", func(t *testing.T) {
		page, err := svc.GetUserAuditLogs(ctx, user.ID, AuditFilter{}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 3 {
			t.Fatalf("expected 3 entries, got %d", page.TotalItems)
		}
		if page.Data[0].Action != "CREATE_BUDGET" {
			t.Errorf("expected newest first, got %s", page.Data[0].Action)
		}
	})

	t.Run("filters", func(t *testing.T) {
		page, err := svc.GetUserAuditLogs(ctx, user.ID, AuditFilter{ResourceType: "budget_group", ResourceID: "g-1"}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 group entries, got %d", page.TotalItems)
		}

		page, err = svc.GetUserAuditLogs(ctx, user.ID, AuditFilter{Action: "GENERATE_BUDGETS"}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("expected 1 generate entry, got %d", page.TotalItems)
		}

		future := time.Now().Add(time.Hour)
		page, err = svc.GetUserAuditLogs(ctx, user.ID, AuditFilter{Since: &future}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 0 || len(page.Data) != 0 {
			t.Errorf("expected no entries after now, got %d", page.TotalItems)
		}
	})

	t.Run("pages", func(t *testing.T) {
		page, err := svc.GetUserAuditLogs(ctx, user.ID, AuditFilter{}, pagination.PageRequest{Page: 2, PageSize: 2})
		testutil.AssertNoError(t, err)
		if len(page.Data) != 1 || page.TotalPages != 2 {
			t.Errorf("expected 1 entry on page 2 of 2, got %d of %d", len(page.Data), page.TotalPages)
		}
	})
}
