package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tomblanch/notable/pkg/notable/auth"
	"github.com/tomblanch/notable/pkg/notable/models"
	"github.com/tomblanch/notable/pkg/notable/notes"
	"github.com/tomblanch/notable/pkg/notable/users"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// setupFullServer creates a Gin engine with all routes registered.
// This mirrors the setup in cmd/notable-server/main.go
func setupFullServer(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		usersHandler := users.NewHandler(db)
		usersHandler.RegisterRoutes(api)

		authHandler := auth.NewHandler(db)
		authHandler.RegisterRoutes(api.Group("/auth"))

		notesHandler := notes.NewHandler(db)
		notesHandler.RegisterPublicRoutes(api)
		notesHandler.RegisterRoutes(api.Group("", auth.AuthMiddleware()))
	}

	return r
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func registerAndLogin(t *testing.T, router *gin.Engine, username, password, email string) string {
	resp := doJSON(router, "POST", "/api/users", "", map[string]string{
		"username": username,
		"password": password,
		"email":    email,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Registration of %s: expected 201, got %d: %s", username, resp.Code, resp.Body.String())
	}

	resp = doJSON(router, "POST", "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("Login of %s: expected 200, got %d: %s", username, resp.Code, resp.Body.String())
	}

	var login struct {
		Token string `json:"token"`
	}
	json.Unmarshal(resp.Body.Bytes(), &login)
	if login.Token == "" {
		t.Fatalf("Login of %s: expected token, got %s", username, resp.Body.String())
	}
	return login.Token
}

// TestNoteLifecycle walks the full flow: register, create a private tagged
// note, fail to read it as someone else, publish it, read it as anyone.
func TestNoteLifecycle(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	// Register alice; response carries username/email and never the password
	resp := doJSON(router, "POST", "/api/users", "", map[string]string{
		"username": "alice",
		"password": "pw123",
		"email":    "a@x.com",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"username":"alice"`) ||
		!strings.Contains(resp.Body.String(), `"email":"a@x.com"`) {
		t.Errorf("Expected username and email in response: %s", resp.Body.String())
	}
	if strings.Contains(resp.Body.String(), "pw123") || strings.Contains(resp.Body.String(), "password") {
		t.Errorf("Response leaked the password: %s", resp.Body.String())
	}

	aliceToken := func() string {
		resp := doJSON(router, "POST", "/api/auth/login", "", map[string]string{
			"username": "alice", "password": "pw123",
		})
		var login struct {
			Token string `json:"token"`
		}
		json.Unmarshal(resp.Body.Bytes(), &login)
		return login.Token
	}()
	bobToken := registerAndLogin(t, router, "bob", "hunter22", "b@x.com")

	// Alice creates a private tagged note
	resp = doJSON(router, "POST", "/api/notes", aliceToken, map[string]interface{}{
		"title":   "T",
		"body":    "B",
		"private": true,
		"tags":    []map[string]string{{"title": "x"}},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		ID   uint `json:"id"`
		Tags []struct {
			Title string `json:"title"`
		} `json:"tags"`
	}
	json.Unmarshal(resp.Body.Bytes(), &created)
	if created.ID == 0 {
		t.Fatalf("Expected assigned id, got %s", resp.Body.String())
	}
	if len(created.Tags) != 1 || created.Tags[0].Title != "x" {
		t.Errorf("Expected tags [x], got %s", resp.Body.String())
	}

	notePath := fmt.Sprintf("/api/notes/%d", created.ID)

	// Bob cannot see the private note
	resp = doJSON(router, "GET", notePath, bobToken, nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for bob, got %d: %s", resp.Code, resp.Body.String())
	}

	// The public list does not carry it either
	resp = doJSON(router, "GET", "/api/notes/public", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), `"title":"T"`) {
		t.Errorf("Private note leaked into public list: %s", resp.Body.String())
	}

	// Publishing is done by the owner flipping the flag directly; the update
	// endpoint never touches private
	if err := db.Model(&models.Note{}).Where("id = ?", created.ID).Update("private", false).Error; err != nil {
		t.Fatalf("Failed to publish note: %v", err)
	}

	// Now bob can retrieve it
	resp = doJSON(router, "GET", notePath, bobToken, nil)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected 200 for bob after publishing, got %d: %s", resp.Code, resp.Body.String())
	}

	// And it shows up in the public list with no credentials at all
	resp = doJSON(router, "GET", "/api/notes/public", "", nil)
	if !strings.Contains(resp.Body.String(), `"title":"T"`) {
		t.Errorf("Expected published note in public list: %s", resp.Body.String())
	}

	// Tag filter finds it for bob, case-insensitively
	resp = doJSON(router, "GET", "/api/notes/tags/X", bobToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"title":"T"`) {
		t.Errorf("Expected tagged note in filter result: %s", resp.Body.String())
	}

	// Bob still cannot update or delete alice's note
	resp = doJSON(router, "PUT", notePath, bobToken, map[string]interface{}{
		"title": "hijack", "body": "nope",
	})
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for bob's update, got %d", resp.Code)
	}
	resp = doJSON(router, "DELETE", notePath, bobToken, nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for bob's delete, got %d", resp.Code)
	}

	// Alice deletes it; the response is empty and the note is gone
	resp = doJSON(router, "DELETE", notePath, aliceToken, nil)
	if resp.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d: %s", resp.Code, resp.Body.String())
	}
	resp = doJSON(router, "GET", notePath, aliceToken, nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.Code)
	}

	// The tag survives, orphaned
	var count int64
	db.Model(&models.Tag{}).Where("title = ?", "x").Count(&count)
	if count != 1 {
		t.Errorf("Expected tag row to survive, got %d", count)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	resp := doJSON(router, "GET", "/api/notes", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.Code)
	}

	resp = doJSON(router, "GET", "/api/notes/public", "", nil)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected 200 for public list, got %d", resp.Code)
	}

	resp = doJSON(router, "GET", "/health", "", nil)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected 200 for health, got %d", resp.Code)
	}
}
