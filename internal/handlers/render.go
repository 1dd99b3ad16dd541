package handlers

import (
	"equiptrack/internal/models"

	"github.com/gin-gonic/gin"
)

// render wraps c.HTML and hands the current user to every template.
func render(c *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if u, ok := currentUser(c); ok {
		data["CurrentUser"] = u
		data["CurrentUsername"] = u.Username
		data["CurrentUserRole"] = u.Role
		data["IsElevated"] = u.IsElevated()
	}

	c.HTML(status, tmpl, data)
}

// currentUser returns the user loaded by middleware.InjectUser.
func currentUser(c *gin.Context) (models.User, bool) {
	uVal, ok := c.Get("CurrentUser")
	if !ok {
		return models.User{}, false
	}
	switch u := uVal.(type) {
	case models.User:
		return u, true
	case *models.User:
		return *u, true
	}
	return models.User{}, false
}
