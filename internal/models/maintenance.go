package models

import (
	"time"

	"gorm.io/gorm"
)

type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "preventive"
	MaintenanceRepair     MaintenanceType = "repair"
	MaintenanceCleaning   MaintenanceType = "cleaning"
	MaintenanceUpdate     MaintenanceType = "update"
	MaintenanceInspection MaintenanceType = "inspection"
)

// MaintenanceTypes lists the valid maintenance types in display order.
var MaintenanceTypes = []MaintenanceType{
	MaintenancePreventive,
	MaintenanceRepair,
	MaintenanceCleaning,
	MaintenanceUpdate,
	MaintenanceInspection,
}

// ValidMaintenanceType reports whether t is one of the known types.
func ValidMaintenanceType(t MaintenanceType) bool {
	switch t {
	case MaintenancePreventive, MaintenanceRepair, MaintenanceCleaning,
		MaintenanceUpdate, MaintenanceInspection:
		return true
	}
	return false
}

// Maintenance is a scheduled or completed maintenance entry for one
// equipment item.
type Maintenance struct {
	gorm.Model
	EquipmentID uint `gorm:"index;not null"`
	Equipment   Equipment

	Type          MaintenanceType `gorm:"type:varchar(20);not null"`
	ScheduledDate time.Time       `gorm:"not null"`
	CompletedDate *time.Time
	Description   string `gorm:"type:text;not null"`
	Cost          *float64
	Technician    string `gorm:"size:100"`
	Notes         string `gorm:"type:text"`
	Completed     bool   `gorm:"not null;default:false"`
}

// Overdue reports whether the entry is past due and still open.
func (m Maintenance) Overdue(now time.Time) bool {
	return !m.Completed && m.ScheduledDate.Before(now)
}
