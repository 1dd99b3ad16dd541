package cron

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"equiptrack/internal/database"
	"equiptrack/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSweepOverdueCountsOnlyOpenPastDue(t *testing.T) {
	db := testDB(t)

	eq := models.Equipment{Name: "Printer", Type: "printer", SerialNumber: "PRN-1", Status: models.StatusAvailable}
	if err := db.Create(&eq).Error; err != nil {
		t.Fatalf("create equipment: %v", err)
	}

	yesterday := time.Now().AddDate(0, 0, -1)
	nextWeek := time.Now().AddDate(0, 0, 7)
	done := time.Now().AddDate(0, 0, -3)

	entries := []models.Maintenance{
		{EquipmentID: eq.ID, Type: models.MaintenanceRepair, ScheduledDate: yesterday, Description: "overdue"},
		{EquipmentID: eq.ID, Type: models.MaintenanceCleaning, ScheduledDate: nextWeek, Description: "future"},
		{EquipmentID: eq.ID, Type: models.MaintenanceInspection, ScheduledDate: done, Description: "completed", Completed: true, CompletedDate: &done},
	}
	for i := range entries {
		if err := db.Create(&entries[i]).Error; err != nil {
			t.Fatalf("create maintenance: %v", err)
		}
	}

	n, err := SweepOverdue(db)
	if err != nil {
		t.Fatalf("SweepOverdue: %v", err)
	}
	if n != 1 {
		t.Errorf("overdue count = %d, want 1", n)
	}
}
