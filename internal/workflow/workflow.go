// Package workflow implements the equipment transfer lifecycle: a request
// is proposed pending and decided exactly once by its recipient. Custody
// of the equipment changes only when the recipient approves, and the
// request update and the equipment update commit together.
package workflow

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"equiptrack/internal/models"
	"equiptrack/internal/policy"
)

// now is swapped out in tests.
var now = time.Now

// Propose creates a pending transfer request for the equipment item.
// The previous holder is snapshotted from the current assignment; the
// equipment itself is not touched until the recipient approves.
func Propose(db *gorm.DB, actor models.User, equipmentID, toUserID uint, reason string) (*models.TransferRequest, error) {
	var eq models.Equipment
	if err := db.First(&eq, equipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading equipment: %w", err)
	}

	if !eq.CanBeTransferred() {
		return nil, fmt.Errorf("%w: equipment in status %q cannot be transferred", ErrValidation, eq.Status)
	}
	if !policy.CanInitiateTransfer(actor, eq) {
		return nil, ErrForbidden
	}

	if toUserID == 0 {
		return nil, fmt.Errorf("%w: recipient is required", ErrValidation)
	}
	var to models.User
	if err := db.First(&to, toUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: recipient does not exist", ErrValidation)
		}
		return nil, fmt.Errorf("loading recipient: %w", err)
	}
	if !to.Active {
		return nil, fmt.Errorf("%w: recipient account is inactive", ErrValidation)
	}

	req := models.TransferRequest{
		EquipmentID: eq.ID,
		FromUserID:  eq.AssignedToID,
		ToUserID:    &to.ID,
		InitiatorID: actor.ID,
		Reason:      reason,
		Status:      models.TransferPending,
	}

	// One pending request per item. The check and the insert share a
	// transaction so two racing proposals cannot both slip through.
	err := db.Transaction(func(tx *gorm.DB) error {
		var pending int64
		if err := tx.Model(&models.TransferRequest{}).
			Where("equipment_id = ? AND status = ?", eq.ID, models.TransferPending).
			Count(&pending).Error; err != nil {
			return fmt.Errorf("checking pending transfers: %w", err)
		}
		if pending > 0 {
			return ErrTransferPending
		}
		if err := tx.Create(&req).Error; err != nil {
			return fmt.Errorf("creating transfer request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Approve marks the request approved and moves custody in one
// transaction. The status update is conditional on the row still being
// pending, so of two racing decisions exactly one wins and the other
// gets ErrAlreadyDecided.
func Approve(db *gorm.DB, actor models.User, requestID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var req models.TransferRequest
		if err := tx.First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading transfer request: %w", err)
		}

		if req.ToUserID == nil || *req.ToUserID != actor.ID {
			return ErrForbidden
		}
		if req.Status != models.TransferPending {
			return ErrAlreadyDecided
		}

		res := tx.Model(&models.TransferRequest{}).
			Where("id = ? AND status = ?", req.ID, models.TransferPending).
			Updates(map[string]any{
				"status":      models.TransferApproved,
				"approver_id": actor.ID,
				"decided_at":  now(),
			})
		if res.Error != nil {
			return fmt.Errorf("updating transfer request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyDecided
		}

		eqRes := tx.Model(&models.Equipment{}).
			Where("id = ?", req.EquipmentID).
			Updates(map[string]any{
				"assigned_to_id": *req.ToUserID,
				"status":         models.StatusInUse,
			})
		if eqRes.Error != nil {
			return fmt.Errorf("updating equipment: %w", eqRes.Error)
		}
		// the equipment may have been deleted since the proposal; roll
		// the whole decision back rather than approve a request that
		// moved nothing
		if eqRes.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Reject marks the request rejected with the given reason. The equipment
// is untouched. Same actor rule and same race handling as Approve.
func Reject(db *gorm.DB, actor models.User, requestID uint, reason string) error {
	if reason == "" {
		return ErrMissingReason
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var req models.TransferRequest
		if err := tx.First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading transfer request: %w", err)
		}

		if req.ToUserID == nil || *req.ToUserID != actor.ID {
			return ErrForbidden
		}
		if req.Status != models.TransferPending {
			return ErrAlreadyDecided
		}

		res := tx.Model(&models.TransferRequest{}).
			Where("id = ? AND status = ?", req.ID, models.TransferPending).
			Updates(map[string]any{
				"status":           models.TransferRejected,
				"approver_id":      actor.ID,
				"decided_at":       now(),
				"rejection_reason": reason,
			})
		if res.Error != nil {
			return fmt.Errorf("updating transfer request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyDecided
		}
		return nil
	})
}

// GetRequest loads one transfer request with its references.
func GetRequest(db *gorm.DB, id uint) (*models.TransferRequest, error) {
	var req models.TransferRequest
	err := db.
		Preload("Equipment").
		Preload("FromUser").
		Preload("ToUser").
		Preload("Initiator").
		Preload("Approver").
		First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading transfer request: %w", err)
	}
	return &req, nil
}

// PendingFor returns the pending requests awaiting the user's decision,
// oldest first.
func PendingFor(db *gorm.DB, u models.User) ([]models.TransferRequest, error) {
	var reqs []models.TransferRequest
	err := db.
		Preload("Equipment").
		Preload("FromUser").
		Preload("Initiator").
		Where("to_user_id = ? AND status = ?", u.ID, models.TransferPending).
		Order("created_at asc").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("listing pending transfers: %w", err)
	}
	return reqs, nil
}

// AllPending returns every pending request, oldest first. Used by the
// elevated transfer overview.
func AllPending(db *gorm.DB) ([]models.TransferRequest, error) {
	var reqs []models.TransferRequest
	err := db.
		Preload("Equipment").
		Preload("FromUser").
		Preload("ToUser").
		Preload("Initiator").
		Where("status = ?", models.TransferPending).
		Order("created_at asc").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("listing pending transfers: %w", err)
	}
	return reqs, nil
}

// HistoryFor returns all requests ever made for an equipment item,
// newest first.
func HistoryFor(db *gorm.DB, equipmentID uint) ([]models.TransferRequest, error) {
	var reqs []models.TransferRequest
	err := db.
		Preload("FromUser").
		Preload("ToUser").
		Preload("Initiator").
		Preload("Approver").
		Where("equipment_id = ?", equipmentID).
		Order("created_at desc").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("listing transfer history: %w", err)
	}
	return reqs, nil
}
