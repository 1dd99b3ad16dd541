package models

import "time"

type AuditLog struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID uint
	User   User

	Entity   string `gorm:"size:50;not null"` // "equipment", "transfer", "maintenance"
	EntityID uint
	Action   string `gorm:"size:50;not null"` // "create", "update", "delete", "propose", "approve", "reject"
	Details  string `gorm:"type:text"`
}
