package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"equiptrack/internal/database"
	"equiptrack/internal/models"
	"equiptrack/internal/policy"
	"equiptrack/internal/workflow"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const equipmentPageSize = 20

// EQUIPMENT LIST

func ListEquipment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	query := database.DB.Model(&models.Equipment{}).
		Scopes(policy.VisibleEquipment(user)).
		Preload("AssignedTo")

	search := strings.TrimSpace(c.Query("search"))
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(serial_number) LIKE ? OR LOWER(type) LIKE ?",
			like, like, like,
		)
	}

	statusFilter := c.Query("status")
	if statusFilter != "" {
		query = query.Where("status = ?", statusFilter)
	}

	// filtering by holder only makes sense for elevated users,
	// standard users already see just their own items
	userFilter := strings.TrimSpace(c.Query("user"))
	if userFilter != "" && user.IsElevated() {
		query = query.
			Joins("JOIN users ON users.id = equipment.assigned_to_id").
			Where("users.username = ?", userFilter)
	}

	// reused for count and page fetch
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.String(http.StatusInternalServerError, "Failed to load equipment")
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	totalPages := int((total + equipmentPageSize - 1) / equipmentPageSize)
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	var equipment []models.Equipment
	if err := query.
		Order("created_at desc").
		Limit(equipmentPageSize).
		Offset((page - 1) * equipmentPageSize).
		Find(&equipment).Error; err != nil {
		c.String(http.StatusInternalServerError, "Failed to load equipment")
		return
	}

	render(c, http.StatusOK, "equipment_list.html", gin.H{
		"equipment":    equipment,
		"search":       search,
		"statusFilter": statusFilter,
		"userFilter":   userFilter,
		"statuses":     models.EquipmentStatuses,
		"page":         page,
		"totalPages":   totalPages,
	})
}

// MyEquipment lists only the items assigned to the caller, whatever
// their role.
func MyEquipment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	query := database.DB.Model(&models.Equipment{}).
		Where("assigned_to_id = ?", user.ID)

	search := strings.TrimSpace(c.Query("search"))
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(serial_number) LIKE ? OR LOWER(type) LIKE ?",
			like, like, like,
		)
	}

	statusFilter := c.Query("status")
	if statusFilter != "" {
		query = query.Where("status = ?", statusFilter)
	}

	var equipment []models.Equipment
	if err := query.Order("created_at desc").Find(&equipment).Error; err != nil {
		c.String(http.StatusInternalServerError, "Failed to load equipment")
		return
	}

	render(c, http.StatusOK, "my_equipment.html", gin.H{
		"equipment":    equipment,
		"search":       search,
		"statusFilter": statusFilter,
		"statuses":     models.EquipmentStatuses,
	})
}

// EQUIPMENT DETAIL

func ShowEquipmentDetail(c *gin.Context) {
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

	if !policy.CanView(user, eq) {
		c.String(http.StatusForbidden, "You do not have access to this equipment")
		return
	}

	history, err := workflow.HistoryFor(database.DB, eq.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load transfer history")
		return
	}

	var maintenance []models.Maintenance
	if user.IsElevated() {
		database.DB.Where("equipment_id = ?", eq.ID).
			Order("scheduled_date asc").
			Find(&maintenance)
	}

	render(c, http.StatusOK, "equipment_detail.html", gin.H{
		"equipment":   eq,
		"history":     history,
		"maintenance": maintenance,
		"canTransfer": policy.CanInitiateTransfer(user, eq),
		"canEdit":     policy.CanEdit(user, eq),
		"canDelete":   policy.CanDelete(user, eq),
	})
}

// CREATE

func ShowNewEquipment(c *gin.Context) {
	var users []models.User
	database.DB.Where("active = ?", true).Order("username asc").Find(&users)

	render(c, http.StatusOK, "equipment_new.html", gin.H{
		"users":    users,
		"statuses": models.EquipmentStatuses,
		"error":    "",
	})
}

func CreateEquipment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if !policy.CanCreate(user) {
		c.String(http.StatusForbidden, "Not enough permissions")
		return
	}

	eq, errMsg := equipmentFromForm(c, &models.Equipment{})
	if errMsg != "" {
		renderEquipmentError(c, "equipment_new.html", nil, errMsg)
		return
	}

	if err := database.DB.Create(eq).Error; err != nil {
		renderEquipmentError(c, "equipment_new.html", nil, "Failed to save equipment (is the serial number unique?)")
		return
	}

	database.CreateAuditLog(user.ID, "equipment", eq.ID, "create", "Created equipment: "+eq.Name)
	c.Redirect(http.StatusFound, fmt.Sprintf("/equipment/%d", eq.ID))
}

// EDIT

func ShowEditEquipment(c *gin.Context) {
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

	if !policy.CanEdit(user, eq) {
		c.String(http.StatusForbidden, "You cannot edit this equipment")
		return
	}

	var users []models.User
	database.DB.Where("active = ?", true).Order("username asc").Find(&users)

	render(c, http.StatusOK, "equipment_edit.html", gin.H{
		"equipment":   eq,
		"users":       users,
		"statuses":    models.EquipmentStatuses,
		"canReassign": policy.CanReassign(user),
		"error":       "",
	})
}

func UpdateEquipment(c *gin.Context) {
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

	if !policy.CanEdit(user, eq) {
		c.String(http.StatusForbidden, "You cannot edit this equipment")
		return
	}

	if policy.CanReassign(user) {
		updated, errMsg := equipmentFromForm(c, &eq)
		if errMsg != "" {
			renderEquipmentError(c, "equipment_edit.html", &eq, errMsg)
			return
		}
		eq = *updated
	} else {
		// standard users holding the item may only touch location and
		// notes, reassignment goes through the transfer workflow
		eq.Location = strings.TrimSpace(c.PostForm("location"))
		eq.Notes = strings.TrimSpace(c.PostForm("notes"))
	}

	if err := database.DB.Save(&eq).Error; err != nil {
		renderEquipmentError(c, "equipment_edit.html", &eq, "Failed to save equipment")
		return
	}

	database.CreateAuditLog(user.ID, "equipment", eq.ID, "update", "Updated equipment: "+eq.Name)
	c.Redirect(http.StatusFound, fmt.Sprintf("/equipment/%d", eq.ID))
}

// DELETE

func DeleteEquipment(c *gin.Context) {
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

	if !policy.CanDelete(user, eq) {
		c.String(http.StatusForbidden, "Not enough permissions")
		return
	}

	// a pending request would stay approvable against a vanished item
	var pending int64
	if err := database.DB.Model(&models.TransferRequest{}).
		Where("equipment_id = ? AND status = ?", eq.ID, models.TransferPending).
		Count(&pending).Error; err != nil {
		c.String(http.StatusInternalServerError, "Failed to delete equipment")
		return
	}
	if pending > 0 {
		c.String(http.StatusConflict, "Equipment with a pending transfer cannot be deleted")
		return
	}

	// soft delete keeps the row for transfer history references
	if err := database.DB.Delete(&eq).Error; err != nil {
		c.String(http.StatusInternalServerError, "Failed to delete equipment")
		return
	}

	database.CreateAuditLog(user.ID, "equipment", eq.ID, "delete", "Deleted equipment: "+eq.Name)
	c.Redirect(http.StatusFound, "/equipment")
}

// equipmentFromForm fills the record from the POST form. It returns a
// user-facing message when validation fails.
func equipmentFromForm(c *gin.Context, eq *models.Equipment) (*models.Equipment, string) {
	eq.Name = strings.TrimSpace(c.PostForm("name"))
	eq.Type = strings.TrimSpace(c.PostForm("type"))
	eq.SerialNumber = strings.TrimSpace(c.PostForm("serial_number"))
	eq.InvoiceNumber = strings.TrimSpace(c.PostForm("invoice_number"))
	eq.Location = strings.TrimSpace(c.PostForm("location"))
	eq.Supplier = strings.TrimSpace(c.PostForm("supplier"))
	eq.Notes = strings.TrimSpace(c.PostForm("notes"))

	if len(eq.Name) < 3 {
		return nil, "Equipment name must be at least 3 characters"
	}
	if eq.Type == "" {
		return nil, "Equipment type is required"
	}
	if eq.SerialNumber == "" {
		return nil, "Serial number is required"
	}

	if v := c.PostForm("purchase_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, "Invalid purchase date"
		}
		eq.PurchaseDate = &d
	}
	if v := c.PostForm("warranty_end_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, "Invalid warranty end date"
		}
		eq.WarrantyEnd = &d
	}
	if v := c.PostForm("purchase_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 {
			return nil, "Invalid purchase price"
		}
		eq.PurchasePrice = &p
	}

	status := models.EquipmentStatus(c.PostForm("status"))
	if !models.ValidEquipmentStatus(status) {
		return nil, "Invalid status"
	}
	eq.Status = status

	eq.AssignedToID = nil
	if v := c.PostForm("assigned_to"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return nil, "Invalid assigned user"
		}
		var assignee models.User
		if err := database.DB.First(&assignee, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "Assigned user does not exist"
			}
			return nil, "Failed to look up assigned user"
		}
		eq.AssignedToID = &assignee.ID
	}

	if msg := normalizeAssignment(eq); msg != "" {
		return nil, msg
	}
	return eq, ""
}

// normalizeAssignment keeps assignment and status consistent: an
// assigned item is in use, an unassigned item cannot stay in use, and
// items in service or retired hold no assignment.
func normalizeAssignment(eq *models.Equipment) string {
	if eq.AssignedToID != nil {
		switch eq.Status {
		case models.StatusService, models.StatusRetired:
			return "Equipment in service or retired cannot be assigned to a user"
		default:
			eq.Status = models.StatusInUse
		}
		return ""
	}
	if eq.Status == models.StatusInUse {
		eq.Status = models.StatusAvailable
	}
	return ""
}

func renderEquipmentError(c *gin.Context, tmpl string, eq *models.Equipment, msg string) {
	var users []models.User
	database.DB.Where("active = ?", true).Order("username asc").Find(&users)

	data := gin.H{
		"error":    msg,
		"users":    users,
		"statuses": models.EquipmentStatuses,
	}
	if eq != nil {
		data["equipment"] = *eq
		if u, ok := currentUser(c); ok {
			data["canReassign"] = policy.CanReassign(u)
		}
	}
	render(c, http.StatusBadRequest, tmpl, data)
}
