package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskwell/taskwell/pkg/taskwell/auth"
	"github.com/taskwell/taskwell/pkg/taskwell/client"
	"github.com/taskwell/taskwell/pkg/taskwell/models"
	"github.com/taskwell/taskwell/pkg/taskwell/store"
	"github.com/taskwell/taskwell/pkg/taskwell/tasks"
)

var testIssuer = auth.NewTokenIssuer("test-secret", time.Hour)

// startBackend boots a real task API over an in-memory database and returns
// its base URL plus a bearer token for a fresh user.
func startBackend(t *testing.T) (*httptest.Server, string, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	user := models.User{Username: "alice", Email: "alice@example.com", Active: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	token, err := testIssuer.Generate(user.ID, user.Username, user.Email)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", auth.Middleware(testIssuer))
	tasks.NewHandler(store.NewTaskStore(db), store.NewTagStore(db)).RegisterRoutes(api)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, token, db
}

type capturedCall struct {
	name   string
	params map[string]interface{}
}

func capturingExecutor(calls *[]capturedCall, result string) ToolExecutor {
	return func(ctx context.Context, name string, params map[string]interface{}) (string, bool) {
		*calls = append(*calls, capturedCall{name: name, params: params})
		return result, false
	}
}

func TestMockProviderRoutesCreate(t *testing.T) {
	p := NewMockProvider()
	var calls []capturedCall
	exec := capturingExecutor(&calls, `{"message": "Created task: Buy milk"}`)

	reply, err := p.Chat(context.Background(), nil, `add a task "Buy milk" high priority`, exec)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if len(calls) != 1 || calls[0].name != "create_task" {
		t.Fatalf("Expected one create_task call, got %+v", calls)
	}
	if calls[0].params["title"] != "Buy milk" {
		t.Errorf("Expected title 'Buy milk', got %v", calls[0].params["title"])
	}
	if calls[0].params["priority"] != "high" {
		t.Errorf("Expected priority high, got %v", calls[0].params["priority"])
	}
	if reply != "Created task: Buy milk" {
		t.Errorf("Expected relayed tool message, got %q", reply)
	}
}

func TestMockProviderRoutesListAndSearch(t *testing.T) {
	p := NewMockProvider()
	ctx := context.Background()

	var calls []capturedCall
	exec := capturingExecutor(&calls, `{"message": "ok"}`)

	if _, err := p.Chat(ctx, nil, "show my pending tasks", exec); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if calls[0].name != "list_tasks" || calls[0].params["status"] != "pending" {
		t.Errorf("Expected list_tasks with status pending, got %+v", calls[0])
	}

	calls = nil
	if _, err := p.Chat(ctx, nil, `search for "groceries"`, exec); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if calls[0].name != "search_tasks" || calls[0].params["query"] != "groceries" {
		t.Errorf("Expected search_tasks for groceries, got %+v", calls[0])
	}
}

func TestMockProviderFallbackWithoutTool(t *testing.T) {
	p := NewMockProvider()
	called := false
	exec := func(ctx context.Context, name string, params map[string]interface{}) (string, bool) {
		called = true
		return "{}", false
	}

	reply, err := p.Chat(context.Background(), nil, "how is the weather?", exec)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if called {
		t.Error("No tool should run for an unrelated message")
	}
	if !strings.Contains(reply, "create, list, update, delete, and search") {
		t.Errorf("Expected capability hint, got %q", reply)
	}
}

func TestMockProviderRelaysToolError(t *testing.T) {
	p := NewMockProvider()
	exec := func(ctx context.Context, name string, params map[string]interface{}) (string, bool) {
		return `{"success": false, "error": "the task service is unreachable right now"}`, true
	}

	reply, err := p.Chat(context.Background(), nil, `add a task "Buy milk"`, exec)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if !strings.Contains(reply, "unreachable") {
		t.Errorf("Expected relayed error, got %q", reply)
	}
}

func TestRegistryCreateAndSearchAgainstBackend(t *testing.T) {
	server, token, _ := startBackend(t)
	registry := NewRegistry(client.New(server.URL, 5*time.Second))
	exec := registry.Executor(token)
	ctx := context.Background()

	result, isError := exec(ctx, "create_task", map[string]interface{}{
		"title":    "Buy milk",
		"priority": "high",
		"due_date": "2026-10-01",
	})
	if isError {
		t.Fatalf("create_task failed: %s", result)
	}
	var created struct {
		Message string      `json:"message"`
		Task    models.Task `json:"task"`
	}
	json.Unmarshal([]byte(result), &created)
	if created.Task.Priority != models.PriorityHigh || created.Task.DueDate == nil {
		t.Errorf("Unexpected created task: %+v", created.Task)
	}

	result, isError = exec(ctx, "search_tasks", map[string]interface{}{"query": "milk"})
	if isError {
		t.Fatalf("search_tasks failed: %s", result)
	}
	var found struct {
		Message string        `json:"message"`
		Tasks   []models.Task `json:"tasks"`
	}
	json.Unmarshal([]byte(result), &found)
	if len(found.Tasks) != 1 || found.Tasks[0].Title != "Buy milk" {
		t.Errorf("Expected the created task in search results, got %+v", found.Tasks)
	}
}

func TestRegistryUpdateAndDeleteAgainstBackend(t *testing.T) {
	server, token, _ := startBackend(t)
	registry := NewRegistry(client.New(server.URL, 5*time.Second))
	exec := registry.Executor(token)
	ctx := context.Background()

	result, _ := exec(ctx, "create_task", map[string]interface{}{"title": "flip me"})
	var created struct {
		Task models.Task `json:"task"`
	}
	json.Unmarshal([]byte(result), &created)

	result, isError := exec(ctx, "update_task", map[string]interface{}{
		"task_id": created.Task.ID,
		"status":  "completed",
	})
	if isError {
		t.Fatalf("update_task failed: %s", result)
	}

	result, isError = exec(ctx, "delete_task", map[string]interface{}{"task_id": created.Task.ID})
	if isError {
		t.Fatalf("delete_task failed: %s", result)
	}

	// Deleting again surfaces the backend's not-found as a tool error.
	result, isError = exec(ctx, "delete_task", map[string]interface{}{"task_id": created.Task.ID})
	if !isError {
		t.Errorf("Expected an error deleting a missing task, got %s", result)
	}
}

func TestRegistryMissingRequiredParam(t *testing.T) {
	server, token, _ := startBackend(t)
	registry := NewRegistry(client.New(server.URL, 5*time.Second))

	result, isError := registry.Executor(token)(context.Background(), "create_task", map[string]interface{}{})
	if !isError {
		t.Fatalf("Expected an error without a title, got %s", result)
	}
	if !strings.Contains(result, "title is required") {
		t.Errorf("Expected title error, got %s", result)
	}
}

func TestRegistryTimeoutIsGeneric(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()

	registry := NewRegistry(client.New(slow.URL, 50*time.Millisecond))
	result, isError := registry.Executor("token")(context.Background(), "list_tasks", map[string]interface{}{})

	if !isError {
		t.Fatal("Expected a tool error on timeout")
	}
	if !strings.Contains(result, "took too long") {
		t.Errorf("Expected generic timeout wording, got %s", result)
	}
}

func TestChatEndpoint(t *testing.T) {
	server, token, _ := startBackend(t)
	registry := NewRegistry(client.New(server.URL, 5*time.Second))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewMockProvider(), registry, zap.NewNop()).RegisterRoutes(r.Group(""))

	body, _ := json.Marshal(ChatRequest{Message: `add a task "Buy milk"`})
	req, _ := http.NewRequest("POST", "/chat", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var out ChatResponse
	json.Unmarshal(resp.Body.Bytes(), &out)
	if !strings.Contains(out.Reply, "Buy milk") {
		t.Errorf("Expected reply mentioning the task, got %q", out.Reply)
	}
}

func TestChatEndpointRequiresToken(t *testing.T) {
	registry := NewRegistry(client.New("http://localhost:0", time.Second))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewMockProvider(), registry, zap.NewNop()).RegisterRoutes(r.Group(""))

	body, _ := json.Marshal(ChatRequest{Message: "list my tasks"})
	req, _ := http.NewRequest("POST", "/chat", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
}
