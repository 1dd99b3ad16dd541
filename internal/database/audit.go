package database

import "equiptrack/internal/models"

// CreateAuditLog appends one audit entry. Failures are ignored: the
// audit trail never blocks the operation it records.
func CreateAuditLog(userID uint, entity string, entityID uint, action, details string) {
	if DB == nil {
		return
	}
	record := models.AuditLog{
		UserID:   userID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	_ = DB.Create(&record).Error
}
