package database

import (
	"log"
	"os"
	"strings"
	"time"

	"equiptrack/internal/models"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(dsn string) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Printf("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		DB, err = gorm.Open(openDialector(dsn), &gorm.Config{})
		if err == nil {
			log.Println("connected to DB successfully")
			break
		}

		log.Printf("failed to connect to DB: %v", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatalf("failed to connect to db after %d attempts: %v", maxAttempts, err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	createDefaultAdmin()
	seedDefaultUsers()

	if os.Getenv("SEED_DEMO_DATA") == "1" {
		seedDemoEquipment()
	}
}

// openDialector picks postgres for postgres-looking DSNs and sqlite for
// everything else (a file path or :memory:).
func openDialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// Migrate creates or updates the schema. Exposed so tests can apply it
// to their own databases.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Equipment{},
		&models.TransferRequest{},
		&models.Maintenance{},
		&models.AuditLog{},
	)
}

// admin account comes from env only, never from the register form
func createDefaultAdmin() {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin@equip.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "Admin123!"
	}

	var count int64
	if err := DB.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		log.Printf("failed to check admin user: %v", err)
		return
	}
	if count > 0 {
		// admin already exists, nothing to do
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("failed to hash default admin password: %v", err)
		return
	}

	admin := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Active:       true,
	}

	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("failed to create default admin: %v", err)
		return
	}

	log.Printf("created default admin user: %s (password: %s)", username, password)
}

// a couple of demo accounts: one IT staff member and one standard user
func seedDefaultUsers() {
	type seedUser struct {
		Username string
		FullName string
		Password string
		Role     models.UserRole
	}

	users := []seedUser{
		{
			Username: "it@equip.local",
			FullName: "IT Support",
			Password: "Itstaff123!",
			Role:     models.RoleIT,
		},
		{
			Username: "user@equip.local",
			FullName: "Demo User",
			Password: "User123!",
			Role:     models.RoleUser,
		},
	}

	for _, u := range users {
		var count int64
		if err := DB.Model(&models.User{}).
			Where("username = ?", u.Username).
			Count(&count).Error; err != nil {
			log.Printf("failed to check seed user %s: %v", u.Username, err)
			continue
		}
		if count > 0 {
			// already there, skip
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("failed to hash password for %s: %v", u.Username, err)
			continue
		}

		user := models.User{
			Username:     u.Username,
			FullName:     u.FullName,
			PasswordHash: string(hash),
			Role:         u.Role,
			Active:       true,
		}

		if err := DB.Create(&user).Error; err != nil {
			log.Printf("failed to create seed user %s: %v", u.Username, err)
			continue
		}

		log.Printf("created seed user: %s (role=%s, password=%s)", u.Username, u.Role, u.Password)
	}
}

// a handful of demo equipment so a fresh install has something to show
func seedDemoEquipment() {
	var count int64
	if err := DB.Model(&models.Equipment{}).Count(&count).Error; err != nil {
		log.Printf("failed to check equipment count: %v", err)
		return
	}
	if count > 0 {
		return
	}

	items := []models.Equipment{
		{Name: "Dell OptiPlex 7090", Type: "computer", SerialNumber: "DEMO-PC-0001", Location: "Office 101", Status: models.StatusAvailable},
		{Name: "Lenovo ThinkPad T14", Type: "laptop", SerialNumber: "DEMO-NB-0001", Location: "Office 102", Status: models.StatusAvailable},
		{Name: "HP EliteBook 840 G8", Type: "laptop", SerialNumber: "DEMO-NB-0002", Location: "Office 102", Status: models.StatusAvailable},
		{Name: "Dell U2422H", Type: "monitor", SerialNumber: "DEMO-MON-0001", Location: "Storage", Status: models.StatusAvailable},
		{Name: "Logitech MX Keys", Type: "keyboard", SerialNumber: "DEMO-KB-0001", Location: "Storage", Status: models.StatusAvailable},
		{Name: "Brother HL-L2350DW", Type: "printer", SerialNumber: "DEMO-PRN-0001", Location: "Office 103", Status: models.StatusService},
		{Name: "HP ProDesk 400 G6", Type: "computer", SerialNumber: "DEMO-PC-0002", Location: "Storage", Status: models.StatusRetired},
	}

	for _, item := range items {
		if err := DB.Create(&item).Error; err != nil {
			log.Printf("failed to create demo equipment %s: %v", item.SerialNumber, err)
		}
	}

	log.Printf("created %d demo equipment items", len(items))
}
