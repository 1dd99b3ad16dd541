package models

import (
	"time"

	"gorm.io/gorm"
)

type TransferStatus string

const (
	TransferPending  TransferStatus = "pending"
	TransferApproved TransferStatus = "approved"
	TransferRejected TransferStatus = "rejected"

	// TransferCancelled is reserved for a future cancellation flow.
	// No operation produces it yet.
	TransferCancelled TransferStatus = "cancelled"
)

// TransferRequest is a proposal to move custody of one equipment item to
// another user. It is created pending and decided exactly once by the
// recipient; the equipment itself changes only on approval.
type TransferRequest struct {
	gorm.Model
	EquipmentID uint `gorm:"index;not null"`
	Equipment   Equipment

	// FromUserID is snapshotted from equipment.assigned_to at proposal
	// time. Nil means the item came from stock ("system").
	FromUserID *uint
	FromUser   *User

	ToUserID *uint
	ToUser   *User

	InitiatorID uint `gorm:"not null"`
	Initiator   User

	Reason string         `gorm:"type:text"`
	Status TransferStatus `gorm:"type:varchar(20);not null;index"`

	ApproverID      *uint
	Approver        *User
	DecidedAt       *time.Time
	RejectionReason string `gorm:"type:text"`
}

// IsPending reports whether the request still awaits a decision.
func (t TransferRequest) IsPending() bool {
	return t.Status == TransferPending
}

// CanBeApprovedBy reports whether u may decide the request. Decisions
// belong to the recipient alone, regardless of role.
func (t TransferRequest) CanBeApprovedBy(u User) bool {
	return t.ToUserID != nil && *t.ToUserID == u.ID && t.Status == TransferPending
}
