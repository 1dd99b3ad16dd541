package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"equiptrack/internal/config"
	"equiptrack/internal/database"
	"equiptrack/internal/models"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db

	cfg := &config.Config{
		SessionSecret: "test-secret",
		TemplateGlob:  "../../web/templates/*.html",
		StaticDir:     "../../web/static",
	}
	return NewRouter(cfg)
}

func seedUser(t *testing.T, username, password string, role models.UserRole) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	if err := database.DB.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// login posts the credentials and returns the session cookies.
func login(t *testing.T, r *gin.Engine, username, password string) []*http.Cookie {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("login status = %d, want 302", rec.Code)
	}
	return rec.Result().Cookies()
}

func get(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func postForm(r *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthcheck(t *testing.T) {
	r := testRouter(t)
	rec := get(r, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", rec.Code)
	}
}

func TestEquipmentListRequiresLogin(t *testing.T) {
	r := testRouter(t)
	rec := get(r, "/equipment", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("GET /equipment status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect location = %q, want /login", loc)
	}
}

func TestLoginAndListEquipment(t *testing.T) {
	r := testRouter(t)
	seedUser(t, "it@test", "secret1", models.RoleIT)

	cookies := login(t, r, "it@test", "secret1")
	rec := get(r, "/equipment", cookies)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /equipment status = %d, want 200", rec.Code)
	}
}

func TestStandardUserCannotCreateEquipment(t *testing.T) {
	r := testRouter(t)
	seedUser(t, "user@test", "secret1", models.RoleUser)

	cookies := login(t, r, "user@test", "secret1")

	rec := get(r, "/equipment/new", cookies)
	if rec.Code != http.StatusForbidden {
		t.Errorf("GET /equipment/new status = %d, want 403", rec.Code)
	}

	form := url.Values{
		"name":          {"Sneaky Laptop"},
		"type":          {"laptop"},
		"serial_number": {"NOPE-1"},
		"status":        {"available"},
	}
	rec = postForm(r, "/equipment/new", form, cookies)
	if rec.Code != http.StatusForbidden {
		t.Errorf("POST /equipment/new status = %d, want 403", rec.Code)
	}

	var count int64
	database.DB.Model(&models.Equipment{}).Count(&count)
	if count != 0 {
		t.Errorf("equipment count = %d, want 0", count)
	}
}

func TestStandardUserSeesOnlyOwnEquipment(t *testing.T) {
	r := testRouter(t)
	alice := seedUser(t, "alice@test", "secret1", models.RoleUser)
	seedUser(t, "bob@test", "secret1", models.RoleUser)

	mine := models.Equipment{Name: "Alice Laptop", Type: "laptop", SerialNumber: "AL-1", Status: models.StatusInUse, AssignedToID: &alice.ID}
	database.DB.Create(&mine)
	other := models.Equipment{Name: "Stock Laptop", Type: "laptop", SerialNumber: "ST-1", Status: models.StatusAvailable}
	database.DB.Create(&other)

	cookies := login(t, r, "alice@test", "secret1")

	rec := get(r, fmt.Sprintf("/equipment/%d", mine.ID), cookies)
	if rec.Code != http.StatusOK {
		t.Errorf("own equipment detail status = %d, want 200", rec.Code)
	}

	rec = get(r, fmt.Sprintf("/equipment/%d", other.ID), cookies)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign equipment detail status = %d, want 403", rec.Code)
	}
}

func TestDeleteEquipmentWithPendingTransferConflicts(t *testing.T) {
	r := testRouter(t)
	seedUser(t, "it@test", "secret1", models.RoleIT)
	bob := seedUser(t, "bob@test", "secret1", models.RoleUser)

	eq := models.Equipment{Name: "Laptop", Type: "laptop", SerialNumber: "DL-1", Status: models.StatusAvailable}
	database.DB.Create(&eq)

	itCookies := login(t, r, "it@test", "secret1")
	form := url.Values{"to_user": {fmt.Sprint(bob.ID)}, "reason": {"new hire"}}
	rec := postForm(r, fmt.Sprintf("/equipment/%d/transfer", eq.ID), form, itCookies)
	if rec.Code != http.StatusFound {
		t.Fatalf("propose status = %d, want 302", rec.Code)
	}

	rec = postForm(r, fmt.Sprintf("/equipment/%d/delete", eq.ID), url.Values{}, itCookies)
	if rec.Code != http.StatusConflict {
		t.Errorf("delete status = %d, want 409", rec.Code)
	}

	var count int64
	database.DB.Model(&models.Equipment{}).Where("id = ?", eq.ID).Count(&count)
	if count != 1 {
		t.Errorf("equipment deleted despite pending transfer")
	}

	// once decided, the delete goes through
	var req models.TransferRequest
	if err := database.DB.Where("equipment_id = ?", eq.ID).First(&req).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}
	bobCookies := login(t, r, "bob@test", "secret1")
	form = url.Values{"reason": {"not needed"}}
	rec = postForm(r, fmt.Sprintf("/transfers/%d/reject", req.ID), form, bobCookies)
	if rec.Code != http.StatusFound {
		t.Fatalf("reject status = %d, want 302", rec.Code)
	}

	rec = postForm(r, fmt.Sprintf("/equipment/%d/delete", eq.ID), url.Values{}, itCookies)
	if rec.Code != http.StatusFound {
		t.Errorf("delete after decision status = %d, want 302", rec.Code)
	}
}

func TestTransferApprovalOverHTTP(t *testing.T) {
	r := testRouter(t)
	seedUser(t, "it@test", "secret1", models.RoleIT)
	bob := seedUser(t, "bob@test", "secret1", models.RoleUser)
	seedUser(t, "carol@test", "secret1", models.RoleUser)

	eq := models.Equipment{Name: "Laptop", Type: "laptop", SerialNumber: "HT-1", Status: models.StatusAvailable}
	database.DB.Create(&eq)

	// IT proposes a transfer to Bob
	itCookies := login(t, r, "it@test", "secret1")
	form := url.Values{"to_user": {fmt.Sprint(bob.ID)}, "reason": {"new hire"}}
	rec := postForm(r, fmt.Sprintf("/equipment/%d/transfer", eq.ID), form, itCookies)
	if rec.Code != http.StatusFound {
		t.Fatalf("propose status = %d, want 302", rec.Code)
	}

	var req models.TransferRequest
	if err := database.DB.Where("equipment_id = ?", eq.ID).First(&req).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}

	// Carol is not the recipient
	carolCookies := login(t, r, "carol@test", "secret1")
	rec = postForm(r, fmt.Sprintf("/transfers/%d/approve", req.ID), url.Values{}, carolCookies)
	if rec.Code != http.StatusForbidden {
		t.Errorf("approve by non-recipient status = %d, want 403", rec.Code)
	}

	// Bob approves
	bobCookies := login(t, r, "bob@test", "secret1")
	rec = postForm(r, fmt.Sprintf("/transfers/%d/approve", req.ID), url.Values{}, bobCookies)
	if rec.Code != http.StatusFound {
		t.Fatalf("approve status = %d, want 302", rec.Code)
	}

	var got models.Equipment
	database.DB.First(&got, eq.ID)
	if got.AssignedToID == nil || *got.AssignedToID != bob.ID || got.Status != models.StatusInUse {
		t.Errorf("custody not moved: assigned=%v status=%s", got.AssignedToID, got.Status)
	}

	// a second approval conflicts
	rec = postForm(r, fmt.Sprintf("/transfers/%d/approve", req.ID), url.Values{}, bobCookies)
	if rec.Code != http.StatusConflict {
		t.Errorf("second approve status = %d, want 409", rec.Code)
	}
}
