package models

import (
	"time"

	"gorm.io/gorm"
)

type EquipmentStatus string

const (
	StatusAvailable EquipmentStatus = "available"
	StatusInUse     EquipmentStatus = "in_use"
	StatusService   EquipmentStatus = "service"
	StatusRetired   EquipmentStatus = "retired"
)

// EquipmentStatuses lists the valid statuses in display order.
var EquipmentStatuses = []EquipmentStatus{
	StatusAvailable,
	StatusInUse,
	StatusService,
	StatusRetired,
}

// ValidEquipmentStatus reports whether s is one of the known statuses.
func ValidEquipmentStatus(s EquipmentStatus) bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusService, StatusRetired:
		return true
	}
	return false
}

type Equipment struct {
	gorm.Model
	Name          string `gorm:"size:100;not null"`
	Type          string `gorm:"size:100;not null"`
	SerialNumber  string `gorm:"uniqueIndex;size:100;not null"`
	InvoiceNumber string `gorm:"size:100"`
	PurchaseDate  *time.Time
	PurchasePrice *float64
	Location      string `gorm:"size:100"`
	Supplier      string `gorm:"size:100"`
	WarrantyEnd   *time.Time
	Status        EquipmentStatus `gorm:"type:varchar(20);not null;default:'available'"`
	AssignedToID  *uint
	AssignedTo    *User
	Notes         string `gorm:"type:text"`
}

// CanBeTransferred reports whether custody of the item may change.
// Items in service or retired stay where they are.
func (e Equipment) CanBeTransferred() bool {
	return e.Status == StatusAvailable || e.Status == StatusInUse
}

// StatusClass returns the CSS class used to badge the status in templates.
func (e Equipment) StatusClass() string {
	switch e.Status {
	case StatusAvailable:
		return "success"
	case StatusInUse:
		return "primary"
	case StatusService:
		return "warning"
	default:
		return "secondary"
	}
}
