package handlers

import (
	"net/http"
	"time"

	"equiptrack/internal/database"
	"equiptrack/internal/models"
	"equiptrack/internal/policy"
	"equiptrack/internal/workflow"

	"github.com/gin-gonic/gin"
)

// Dashboard shows status counts for the equipment the user may see,
// the transfers awaiting their decision and, for elevated users, open
// overdue maintenance.
func Dashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	statusCounts := map[models.EquipmentStatus]int64{}
	for _, status := range models.EquipmentStatuses {
		var n int64
		database.DB.Model(&models.Equipment{}).
			Scopes(policy.VisibleEquipment(user)).
			Where("status = ?", status).
			Count(&n)
		statusCounts[status] = n
	}

	pending, err := workflow.PendingFor(database.DB, user)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load pending transfers")
		return
	}

	var overdue int64
	if user.IsElevated() {
		database.DB.Model(&models.Maintenance{}).
			Where("completed = ? AND scheduled_date < ?", false, time.Now()).
			Count(&overdue)
	}

	render(c, http.StatusOK, "dashboard.html", gin.H{
		"statusCounts":     statusCounts,
		"pendingTransfers": pending,
		"overdueCount":     overdue,
	})
}
