// Package policy answers "may this user do this to this equipment?".
// Every check takes the acting user explicitly; nothing here reads
// session state or touches the database, so the same rules serve the
// handlers and the transfer workflow.
package policy

import (
	"gorm.io/gorm"

	"equiptrack/internal/models"
)

// CanView reports whether the user may open the equipment detail page.
// Standard users only see items currently assigned to them.
func CanView(u models.User, e models.Equipment) bool {
	if u.IsElevated() {
		return true
	}
	return e.AssignedToID != nil && *e.AssignedToID == u.ID
}

// CanCreate reports whether the user may add equipment to the catalog.
func CanCreate(u models.User) bool {
	return u.IsElevated()
}

// CanEdit reports whether the user may change the equipment record at
// all. Standard users may edit items assigned to them, but only the
// fields CanReassign does not guard.
func CanEdit(u models.User, e models.Equipment) bool {
	if u.IsElevated() {
		return true
	}
	return e.AssignedToID != nil && *e.AssignedToID == u.ID
}

// CanReassign reports whether the user may change assignment or status
// directly, outside of the transfer workflow.
func CanReassign(u models.User) bool {
	return u.IsElevated()
}

// CanDelete reports whether the user may remove the equipment record.
func CanDelete(u models.User, e models.Equipment) bool {
	return u.IsElevated()
}

// CanInitiateTransfer reports whether the user may propose a custody
// transfer of the item. Items in service or retired never move; standard
// users can only hand over their own items.
func CanInitiateTransfer(u models.User, e models.Equipment) bool {
	if !e.CanBeTransferred() {
		return false
	}
	if u.IsElevated() {
		return true
	}
	return e.AssignedToID != nil && *e.AssignedToID == u.ID
}

// CanApprove reports whether the user may decide the transfer request.
// Only the recipient of a still-pending request can; role does not
// matter here.
func CanApprove(u models.User, t models.TransferRequest) bool {
	return t.CanBeApprovedBy(u)
}

// VisibleEquipment scopes an equipment query to what the user may list:
// the full catalog for elevated users, own items for everyone else.
func VisibleEquipment(u models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if u.IsElevated() {
			return db
		}
		return db.Where("assigned_to_id = ?", u.ID)
	}
}
