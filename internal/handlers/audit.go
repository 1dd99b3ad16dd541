package handlers

import (
	"net/http"

	"equiptrack/internal/database"
	"equiptrack/internal/models"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs shows the most recent audit entries. The route is gated
// to elevated users in the router; the check here is a second line.
func ListAuditLogs(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok || !user.IsElevated() {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	var logs []models.AuditLog
	database.DB.
		Preload("User").
		Order("created_at desc").
		Limit(200).
		Find(&logs)

	render(c, http.StatusOK, "audit_list.html", gin.H{
		"logs": logs,
	})
}
