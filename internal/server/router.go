package server

import (
	"html/template"
	"net/http"
	"time"

	"equiptrack/internal/config"
	"equiptrack/internal/handlers"
	"equiptrack/internal/middleware"
	"equiptrack/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// userName renders a nullable user reference; a missing holder means the
// item came from or went to stock.
func userName(u *models.User) string {
	if u == nil {
		return "System"
	}
	return u.DisplayName()
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.Format("2006-01-02")
}

func fmtTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Static("/static", cfg.StaticDir)

	r.SetFuncMap(template.FuncMap{
		"eq":  func(a, b interface{}) bool { return a == b },
		"add": func(a, b int) int { return a + b },
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
		"userName": userName,
		"fmtDate":  fmtDate,
		"fmtTime":  fmtTime,
	})
	r.LoadHTMLGlob(cfg.TemplateGlob)

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("equiptrack_session", store))

	r.Use(middleware.InjectUser())

	// AUTH
	r.GET("/register", handlers.ShowRegister)
	r.POST("/register", handlers.Register)
	r.GET("/login", handlers.ShowLogin)
	r.POST("/login", handlers.Login)
	r.GET("/logout", handlers.Logout)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())

	// DASHBOARD
	auth.GET("/", handlers.Dashboard)

	// EQUIPMENT
	auth.GET("/equipment", handlers.ListEquipment)
	auth.GET("/my", handlers.MyEquipment)

	auth.GET("/equipment/new",
		middleware.RequireElevated(),
		handlers.ShowNewEquipment,
	)
	auth.POST("/equipment/new",
		middleware.RequireElevated(),
		handlers.CreateEquipment,
	)

	auth.GET("/equipment/:id", handlers.ShowEquipmentDetail)

	// ownership is checked in the handler: standard users may edit
	// their own item's location and notes
	auth.GET("/equipment/:id/edit", handlers.ShowEditEquipment)
	auth.POST("/equipment/:id/edit", handlers.UpdateEquipment)

	auth.POST("/equipment/:id/delete",
		middleware.RequireElevated(),
		handlers.DeleteEquipment,
	)

	// TRANSFERS
	auth.GET("/equipment/:id/transfer", handlers.ShowTransferForm)
	auth.POST("/equipment/:id/transfer", handlers.ProposeTransfer)
	auth.GET("/transfers/pending", handlers.PendingTransfers)
	auth.POST("/transfers/:id/approve", handlers.ApproveTransfer)
	auth.POST("/transfers/:id/reject", handlers.RejectTransfer)

	// MAINTENANCE
	auth.GET("/maintenance",
		middleware.RequireElevated(),
		handlers.ListMaintenance,
	)
	auth.GET("/equipment/:id/maintenance/new",
		middleware.RequireElevated(),
		handlers.ShowNewMaintenance,
	)
	auth.POST("/equipment/:id/maintenance/new",
		middleware.RequireElevated(),
		handlers.CreateMaintenance,
	)
	auth.POST("/maintenance/:id/complete",
		middleware.RequireElevated(),
		handlers.CompleteMaintenance,
	)

	// AUDIT
	auth.GET("/audit",
		middleware.RequireElevated(),
		handlers.ListAuditLogs,
	)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
