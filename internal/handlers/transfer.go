package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"equiptrack/internal/database"
	"equiptrack/internal/models"
	"equiptrack/internal/policy"
	"equiptrack/internal/workflow"

	"github.com/gin-gonic/gin"
)

// PROPOSE

func ShowTransferForm(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var eq models.Equipment
	if err := database.DB.Preload("AssignedTo").First(&eq, c.Param("id")).Error; err != nil {
		c.String(http.StatusNotFound, "Equipment not found")
		return
	}

	if !policy.CanInitiateTransfer(user, eq) {
		c.String(http.StatusForbidden, "You cannot transfer this equipment")
		return
	}

	var users []models.User
	database.DB.Where("active = ?", true).Order("username asc").Find(&users)

	render(c, http.StatusOK, "transfer_form.html", gin.H{
		"equipment": eq,
		"users":     users,
		"error":     "",
	})
}

func ProposeTransfer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	eqID, err := strconv.Atoi(c.Param("id"))
	if err != nil || eqID <= 0 {
		c.String(http.StatusBadRequest, "Invalid equipment ID")
		return
	}

	toUserID, _ := strconv.Atoi(c.PostForm("to_user"))
	reason := strings.TrimSpace(c.PostForm("reason"))

	req, err := workflow.Propose(database.DB, user, uint(eqID), uint(toUserID), reason)
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrNotFound):
			c.String(http.StatusNotFound, "Equipment not found")
		case errors.Is(err, workflow.ErrForbidden):
			c.String(http.StatusForbidden, "You cannot transfer this equipment")
		case errors.Is(err, workflow.ErrTransferPending):
			renderTransferError(c, uint(eqID), "This equipment already has a pending transfer")
		case errors.Is(err, workflow.ErrValidation):
			renderTransferError(c, uint(eqID), err.Error())
		default:
			c.String(http.StatusInternalServerError, "Failed to create transfer request")
		}
		return
	}

	database.CreateAuditLog(user.ID, "transfer", req.ID, "propose",
		fmt.Sprintf("Proposed transfer of equipment #%d", req.EquipmentID))
	c.Redirect(http.StatusFound, fmt.Sprintf("/equipment/%d", req.EquipmentID))
}

func renderTransferError(c *gin.Context, equipmentID uint, msg string) {
	var eq models.Equipment
	if err := database.DB.Preload("AssignedTo").First(&eq, equipmentID).Error; err != nil {
		c.String(http.StatusNotFound, "Equipment not found")
		return
	}

	var users []models.User
	database.DB.Where("active = ?", true).Order("username asc").Find(&users)

	render(c, http.StatusBadRequest, "transfer_form.html", gin.H{
		"equipment": eq,
		"users":     users,
		"error":     msg,
	})
}

// INBOX

// PendingTransfers shows the requests waiting for the caller's decision.
// Elevated users additionally see every open request, though they still
// only decide their own.
func PendingTransfers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	mine, err := workflow.PendingFor(database.DB, user)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load pending transfers")
		return
	}

	var all []models.TransferRequest
	if user.IsElevated() {
		all, err = workflow.AllPending(database.DB)
		if err != nil {
			c.String(http.StatusInternalServerError, "Failed to load pending transfers")
			return
		}
	}

	render(c, http.StatusOK, "transfers_pending.html", gin.H{
		"mine": mine,
		"all":  all,
	})
}

// DECIDE

func ApproveTransfer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, "Invalid transfer ID")
		return
	}

	if err := workflow.Approve(database.DB, user, uint(id)); err != nil {
		switch {
		case errors.Is(err, workflow.ErrNotFound):
			c.String(http.StatusNotFound, "Transfer request not found")
		case errors.Is(err, workflow.ErrForbidden):
			c.String(http.StatusForbidden, "Only the recipient can decide this transfer")
		case errors.Is(err, workflow.ErrAlreadyDecided):
			c.String(http.StatusConflict, "This transfer has already been decided")
		default:
			c.String(http.StatusInternalServerError, "Failed to approve transfer")
		}
		return
	}

	database.CreateAuditLog(user.ID, "transfer", uint(id), "approve",
		fmt.Sprintf("Approved transfer request #%d", id))
	c.Redirect(http.StatusFound, "/transfers/pending")
}

func RejectTransfer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, "Invalid transfer ID")
		return
	}

	reason := strings.TrimSpace(c.PostForm("reason"))

	if err := workflow.Reject(database.DB, user, uint(id), reason); err != nil {
		switch {
		case errors.Is(err, workflow.ErrNotFound):
			c.String(http.StatusNotFound, "Transfer request not found")
		case errors.Is(err, workflow.ErrForbidden):
			c.String(http.StatusForbidden, "Only the recipient can decide this transfer")
		case errors.Is(err, workflow.ErrAlreadyDecided):
			c.String(http.StatusConflict, "This transfer has already been decided")
		case errors.Is(err, workflow.ErrMissingReason):
			c.String(http.StatusBadRequest, "A rejection reason is required")
		default:
			c.String(http.StatusInternalServerError, "Failed to reject transfer")
		}
		return
	}

	database.CreateAuditLog(user.ID, "transfer", uint(id), "reject",
		fmt.Sprintf("Rejected transfer request #%d: %s", id, reason))
	c.Redirect(http.StatusFound, "/transfers/pending")
}
