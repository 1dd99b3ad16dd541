// Package cron runs the background maintenance sweep.
package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"equiptrack/internal/models"
)

// Start schedules the daily overdue-maintenance sweep. The caller owns
// the returned scheduler and stops it on shutdown.
func Start(db *gorm.DB) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("0 7 * * *", func() {
		if _, err := SweepOverdue(db); err != nil {
			log.Printf("maintenance sweep failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("failed to register maintenance sweep: %v", err)
	}
	c.Start()
	return c
}

// SweepOverdue logs every open maintenance entry past its scheduled
// date and returns how many there were.
func SweepOverdue(db *gorm.DB) (int, error) {
	var due []models.Maintenance
	err := db.
		Preload("Equipment").
		Where("completed = ? AND scheduled_date < ?", false, time.Now()).
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("listing overdue maintenance: %w", err)
	}

	for _, m := range due {
		log.Printf("maintenance overdue: %s for %s (scheduled %s)",
			m.Type, m.Equipment.Name, m.ScheduledDate.Format("2006-01-02"))
	}
	return len(due), nil
}
