package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskwell/taskwell/pkg/taskwell/auth"
	"github.com/taskwell/taskwell/pkg/taskwell/models"
	"github.com/taskwell/taskwell/pkg/taskwell/store"
	"github.com/taskwell/taskwell/pkg/taskwell/tags"
	"github.com/taskwell/taskwell/pkg/taskwell/tasks"
)

// setupServer assembles the full API router the way the server binary does,
// over an in-memory database.
func setupServer(t *testing.T) *gin.Engine {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	issuer := auth.NewTokenIssuer("integration-secret", time.Hour)
	taskStore := store.NewTaskStore(db)
	tagStore := store.NewTagStore(db)

	gin.SetMode(gin.TestMode)
	r := gin.New()

	api := r.Group("/api")
	auth.NewHandler(db, issuer).RegisterRoutes(api.Group("/auth"))

	protected := api.Group("", auth.Middleware(issuer))
	tasks.NewHandler(taskStore, tagStore).RegisterRoutes(protected)
	tags.NewHandler(tagStore).RegisterRoutes(protected)

	return r
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func signup(t *testing.T, router *gin.Engine, username string) string {
	resp := doJSON(router, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Register failed with status %d: %s", resp.Code, resp.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	json.Unmarshal(resp.Body.Bytes(), &out)
	return out.Token
}

func TestFullTaskLifecycle(t *testing.T) {
	router := setupServer(t)
	token := signup(t, router, "alice")

	// Create a task with a due date.
	resp := doJSON(router, "POST", "/api/tasks", token, map[string]interface{}{
		"title":    "Plan the launch",
		"priority": "high",
		"due_date": time.Now().UTC().Add(72 * time.Hour).Format(time.RFC3339),
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Create task failed: %s", resp.Body.String())
	}
	var task models.Task
	json.Unmarshal(resp.Body.Bytes(), &task)

	// Create a tag and attach it.
	resp = doJSON(router, "POST", "/api/tags", token, map[string]string{"name": "work"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Create tag failed: %s", resp.Body.String())
	}
	var tag models.Tag
	json.Unmarshal(resp.Body.Bytes(), &tag)

	resp = doJSON(router, "POST", "/api/tasks/"+task.ID+"/tags", token, map[string]string{"tag_id": tag.ID})
	if resp.Code != http.StatusOK {
		t.Fatalf("Assign tag failed: %s", resp.Body.String())
	}

	// Filter by the tag.
	resp = doJSON(router, "GET", "/api/tasks?tag_ids="+tag.ID, token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("List failed: %s", resp.Body.String())
	}
	var page struct {
		Items []models.Task `json:"items"`
		Total int64         `json:"total"`
	}
	json.Unmarshal(resp.Body.Bytes(), &page)
	if page.Total != 1 || page.Items[0].ID != task.ID {
		t.Errorf("Expected the tagged task, got %+v", page)
	}

	// Complete it and check the stats.
	resp = doJSON(router, "PATCH", "/api/tasks/"+task.ID+"/complete", token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Toggle failed: %s", resp.Body.String())
	}

	resp = doJSON(router, "GET", "/api/tasks/stats", token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Stats failed: %s", resp.Body.String())
	}
	var stats store.Stats
	json.Unmarshal(resp.Body.Bytes(), &stats)
	if stats.Total != 1 || stats.CompletionRate != 1.0 {
		t.Errorf("Expected a fully completed list, got %+v", stats)
	}

	// Delete and confirm it is gone.
	resp = doJSON(router, "DELETE", "/api/tasks/"+task.ID, token, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("Delete failed with status %d", resp.Code)
	}
	resp = doJSON(router, "GET", "/api/tasks/"+task.ID, token, nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.Code)
	}
}

func TestUsersAreIsolatedEndToEnd(t *testing.T) {
	router := setupServer(t)
	aliceToken := signup(t, router, "alice")
	bobToken := signup(t, router, "bob")

	resp := doJSON(router, "POST", "/api/tasks", aliceToken, map[string]string{"title": "alice's secret"})
	var task models.Task
	json.Unmarshal(resp.Body.Bytes(), &task)

	// Bob can't read, modify, or delete it.
	if resp := doJSON(router, "GET", "/api/tasks/"+task.ID, bobToken, nil); resp.Code != http.StatusForbidden {
		t.Errorf("Expected 403 on read, got %d", resp.Code)
	}
	if resp := doJSON(router, "PUT", "/api/tasks/"+task.ID, bobToken, map[string]string{"title": "stolen"}); resp.Code != http.StatusForbidden {
		t.Errorf("Expected 403 on update, got %d", resp.Code)
	}
	if resp := doJSON(router, "DELETE", "/api/tasks/"+task.ID, bobToken, nil); resp.Code != http.StatusForbidden {
		t.Errorf("Expected 403 on delete, got %d", resp.Code)
	}

	// Bob's listing stays empty.
	resp = doJSON(router, "GET", "/api/tasks", bobToken, nil)
	var page struct {
		Total int64 `json:"total"`
	}
	json.Unmarshal(resp.Body.Bytes(), &page)
	if page.Total != 0 {
		t.Errorf("Expected bob to see no tasks, got %d", page.Total)
	}
}

func TestPaginationEnvelopeEndToEnd(t *testing.T) {
	router := setupServer(t)
	token := signup(t, router, "alice")

	for i := 0; i < 25; i++ {
		resp := doJSON(router, "POST", "/api/tasks", token, map[string]string{
			"title": fmt.Sprintf("task %02d", i),
		})
		if resp.Code != http.StatusCreated {
			t.Fatalf("Create %d failed: %s", i, resp.Body.String())
		}
	}

	resp := doJSON(router, "GET", "/api/tasks?page=2&limit=20", token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("List failed: %s", resp.Body.String())
	}
	var page struct {
		Items      []models.Task `json:"items"`
		Total      int64         `json:"total"`
		Page       int           `json:"page"`
		Limit      int           `json:"limit"`
		TotalPages int           `json:"total_pages"`
	}
	json.Unmarshal(resp.Body.Bytes(), &page)

	if page.Total != 25 || len(page.Items) != 5 {
		t.Errorf("Expected 5 of 25 on page 2, got %d of %d", len(page.Items), page.Total)
	}
	if page.Page != 2 || page.Limit != 20 || page.TotalPages != 2 {
		t.Errorf("Unexpected envelope: page=%d limit=%d total_pages=%d", page.Page, page.Limit, page.TotalPages)
	}
}
