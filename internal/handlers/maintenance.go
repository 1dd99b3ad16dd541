package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"equiptrack/internal/database"
	"equiptrack/internal/models"

	"github.com/gin-gonic/gin"
)

// Maintenance pages are elevated-only, gated in the router.

func ListMaintenance(c *gin.Context) {
	var entries []models.Maintenance
	if err := database.DB.
		Preload("Equipment").
		Order("completed asc, scheduled_date asc").
		Find(&entries).Error; err != nil {
		c.String(http.StatusInternalServerError, "Failed to load maintenance schedule")
		return
	}

	now := time.Now()
	var overdue []models.Maintenance
	for _, m := range entries {
		if m.Overdue(now) {
			overdue = append(overdue, m)
		}
	}

	render(c, http.StatusOK, "maintenance_list.html", gin.H{
		"entries": entries,
		"overdue": overdue,
	})
}

func ShowNewMaintenance(c *gin.Context) {
	var eq models.Equipment
	if err := database.DB.First(&eq, c.Param("id")).Error; err != nil {
		c.String(http.StatusNotFound, "Equipment not found")
		return
	}

	render(c, http.StatusOK, "maintenance_new.html", gin.H{
		"equipment": eq,
		"types":     models.MaintenanceTypes,
		"error":     "",
	})
}

func CreateMaintenance(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var eq models.Equipment
	if err := database.DB.First(&eq, c.Param("id")).Error; err != nil {
		c.String(http.StatusNotFound, "Equipment not found")
		return
	}

	mType := models.MaintenanceType(c.PostForm("type"))
	if !models.ValidMaintenanceType(mType) {
		renderMaintenanceError(c, eq, "Invalid maintenance type")
		return
	}

	scheduled, err := time.Parse("2006-01-02", c.PostForm("scheduled_date"))
	if err != nil {
		renderMaintenanceError(c, eq, "Invalid scheduled date")
		return
	}

	description := strings.TrimSpace(c.PostForm("description"))
	if description == "" {
		renderMaintenanceError(c, eq, "Description is required")
		return
	}

	entry := models.Maintenance{
		EquipmentID:   eq.ID,
		Type:          mType,
		ScheduledDate: scheduled,
		Description:   description,
		Technician:    strings.TrimSpace(c.PostForm("technician")),
		Notes:         strings.TrimSpace(c.PostForm("notes")),
	}

	if v := c.PostForm("cost"); v != "" {
		cost, err := strconv.ParseFloat(v, 64)
		if err != nil || cost < 0 {
			renderMaintenanceError(c, eq, "Invalid cost")
			return
		}
		entry.Cost = &cost
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		renderMaintenanceError(c, eq, "Failed to save maintenance entry")
		return
	}

	database.CreateAuditLog(user.ID, "maintenance", entry.ID, "create",
		fmt.Sprintf("Scheduled %s for %s", entry.Type, eq.Name))
	c.Redirect(http.StatusFound, fmt.Sprintf("/equipment/%d", eq.ID))
}

func CompleteMaintenance(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var entry models.Maintenance
	if err := database.DB.Preload("Equipment").First(&entry, c.Param("id")).Error; err != nil {
		c.String(http.StatusNotFound, "Maintenance entry not found")
		return
	}

	if entry.Completed {
		c.Redirect(http.StatusFound, "/maintenance")
		return
	}

	now := time.Now()
	entry.Completed = true
	entry.CompletedDate = &now

	if err := database.DB.Save(&entry).Error; err != nil {
		c.String(http.StatusInternalServerError, "Failed to update maintenance entry")
		return
	}

	database.CreateAuditLog(user.ID, "maintenance", entry.ID, "complete",
		fmt.Sprintf("Completed %s for %s", entry.Type, entry.Equipment.Name))
	c.Redirect(http.StatusFound, "/maintenance")
}

func renderMaintenanceError(c *gin.Context, eq models.Equipment, msg string) {
	render(c, http.StatusBadRequest, "maintenance_new.html", gin.H{
		"equipment": eq,
		"types":     models.MaintenanceTypes,
		"error":     msg,
	})
}
