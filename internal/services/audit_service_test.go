package services

import (
	"testing"

	"ledgerly/internal/models"
	"ledgerly/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	t.Run("with_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)
		user := testutil.CreateTestUser(t, db)

		svc.Log(user.ID, "BULK_DELETE", "transaction", "", "10.0.0.1", map[string]interface{}{
			"processed": 2,
			"note":      "<b>&</b>",
		})

		var entry models.AuditLog
		if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
			t.Fatalf("expected audit entry: %v", err)
		}
		if entry.Action != "BULK_DELETE" || entry.ResourceType != "transaction" {
			t.Errorf("unexpected entry: %+v", entry)
		}
		if entry.IPAddress != "10.0.0.1" {
			t.Errorf("expected ip 10.0.0.1, got %s", entry.IPAddress)
		}
		if entry.Changes != `{"note":"<b>&</b>","processed":2}` {
			t.Errorf("unexpected changes %s", entry.Changes)
		}
	})

	t.Run("without_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)
		user := testutil.CreateTestUser(t, db)

		svc.Log(user.ID, "LOGIN", "user", user.ID, "", nil)

		var entry models.AuditLog
		if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
			t.Fatalf("expected audit entry: %v", err)
		}
		if entry.Changes != "" {
			t.Errorf("expected empty changes, got %q", entry.Changes)
		}
	})

	t.Run("unencodable_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)
		user := testutil.CreateTestUser(t, db)

		svc.Log(user.ID, "UPDATE", "transaction", "", "", map[string]interface{}{"bad": make(chan int)})

		var entry models.AuditLog
		if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
			t.Fatalf("expected audit entry: %v", err)
		}
		if entry.Changes != "{}" {
			t.Errorf("expected fallback {}, got %q", entry.Changes)
		}
	})
}
