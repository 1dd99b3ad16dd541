package policy

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"equiptrack/internal/models"
)

func user(id uint, role models.UserRole) models.User {
	u := models.User{Role: role, Active: true}
	u.ID = id
	return u
}

func equipment(status models.EquipmentStatus, assignedTo *uint) models.Equipment {
	return models.Equipment{Status: status, AssignedToID: assignedTo}
}

func TestCanViewAndEdit(t *testing.T) {
	ownerID := uint(7)
	admin := user(1, models.RoleAdmin)
	itStaff := user(2, models.RoleIT)
	owner := user(ownerID, models.RoleUser)
	other := user(9, models.RoleUser)

	assigned := equipment(models.StatusInUse, &ownerID)
	unassigned := equipment(models.StatusAvailable, nil)

	tests := []struct {
		name  string
		actor models.User
		eq    models.Equipment
		want  bool
	}{
		{"admin views any", admin, unassigned, true},
		{"it views any", itStaff, assigned, true},
		{"owner views own", owner, assigned, true},
		{"other denied", other, assigned, false},
		{"standard denied unassigned", owner, unassigned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanView(tt.actor, tt.eq); got != tt.want {
				t.Errorf("CanView = %v, want %v", got, tt.want)
			}
			if got := CanEdit(tt.actor, tt.eq); got != tt.want {
				t.Errorf("CanEdit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateDeleteReassignElevatedOnly(t *testing.T) {
	admin := user(1, models.RoleAdmin)
	itStaff := user(2, models.RoleIT)
	standard := user(3, models.RoleUser)
	eq := equipment(models.StatusAvailable, nil)

	for _, u := range []models.User{admin, itStaff} {
		if !CanCreate(u) || !CanDelete(u, eq) || !CanReassign(u) {
			t.Errorf("elevated user %d should manage the catalog", u.ID)
		}
	}
	if CanCreate(standard) || CanDelete(standard, eq) || CanReassign(standard) {
		t.Error("standard user must not manage the catalog")
	}
}

func TestCanInitiateTransfer(t *testing.T) {
	ownerID := uint(7)
	itStaff := user(2, models.RoleIT)
	owner := user(ownerID, models.RoleUser)
	other := user(9, models.RoleUser)

	tests := []struct {
		name  string
		actor models.User
		eq    models.Equipment
		want  bool
	}{
		{"it transfers available", itStaff, equipment(models.StatusAvailable, nil), true},
		{"it transfers in_use", itStaff, equipment(models.StatusInUse, &ownerID), true},
		{"it cannot transfer in service", itStaff, equipment(models.StatusService, nil), false},
		{"it cannot transfer retired", itStaff, equipment(models.StatusRetired, nil), false},
		{"owner transfers own", owner, equipment(models.StatusInUse, &ownerID), true},
		{"owner cannot transfer own in service", owner, equipment(models.StatusService, &ownerID), false},
		{"other cannot transfer", other, equipment(models.StatusInUse, &ownerID), false},
		{"standard cannot transfer stock", other, equipment(models.StatusAvailable, nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanInitiateTransfer(tt.actor, tt.eq); got != tt.want {
				t.Errorf("CanInitiateTransfer = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanApproveIsRecipientOnly(t *testing.T) {
	recipientID := uint(5)
	recipient := user(recipientID, models.RoleUser)
	holder := user(6, models.RoleUser)
	itStaff := user(2, models.RoleIT)

	pending := models.TransferRequest{ToUserID: &recipientID, Status: models.TransferPending}
	decided := models.TransferRequest{ToUserID: &recipientID, Status: models.TransferApproved}
	orphan := models.TransferRequest{Status: models.TransferPending}

	if !CanApprove(recipient, pending) {
		t.Error("recipient should approve a pending request")
	}
	if CanApprove(holder, pending) || CanApprove(itStaff, pending) {
		t.Error("only the recipient decides, role does not matter")
	}
	if CanApprove(recipient, decided) {
		t.Error("decided requests cannot be approved again")
	}
	if CanApprove(recipient, orphan) {
		t.Error("request without recipient cannot be approved")
	}
}

func TestVisibleEquipmentScope(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Equipment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	alice := models.User{Username: "alice", PasswordHash: "x", Role: models.RoleUser, Active: true}
	db.Create(&alice)
	itStaff := models.User{Username: "it", PasswordHash: "x", Role: models.RoleIT, Active: true}
	db.Create(&itStaff)

	db.Create(&models.Equipment{Name: "Mine", Type: "laptop", SerialNumber: "A-1", Status: models.StatusInUse, AssignedToID: &alice.ID})
	db.Create(&models.Equipment{Name: "Stock", Type: "laptop", SerialNumber: "A-2", Status: models.StatusAvailable})
	db.Create(&models.Equipment{Name: "Theirs", Type: "laptop", SerialNumber: "A-3", Status: models.StatusInUse, AssignedToID: &itStaff.ID})

	var n int64
	db.Model(&models.Equipment{}).Scopes(VisibleEquipment(itStaff)).Count(&n)
	if n != 3 {
		t.Errorf("elevated sees %d items, want 3", n)
	}

	db.Model(&models.Equipment{}).Scopes(VisibleEquipment(alice)).Count(&n)
	if n != 1 {
		t.Errorf("standard sees %d items, want 1", n)
	}
}
