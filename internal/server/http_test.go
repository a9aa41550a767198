package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"task-manager/backend/internal/server/servertest"
)

type apiClient struct {
	t   *testing.T
	app *fiber.App
}

func (c apiClient) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.app.Test(req, -1)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (c apiClient) register(name, email string) (token, userID string) {
	c.t.Helper()
	status, body := c.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	if status != http.StatusOK {
		c.t.Fatalf("register %s: %d %v", email, status, body)
	}
	user := body["user"].(map[string]interface{})
	return body["token"].(string), user["id"].(string)
}

func newAPI(t *testing.T) apiClient {
	return apiClient{t: t, app: servertest.NewApp(t).App}
}

func TestAuthRoutes(t *testing.T) {
	api := newAPI(t)

	token, userID := api.register("Alice", "alice@example.com")
	if token == "" || userID == "" {
		t.Fatal("register should return token and user id")
	}

	status, body := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ALICE@example.com", "password": "secret1"})
	if status != http.StatusOK {
		t.Fatalf("login: %d %v", status, body)
	}
	if body["user"].(map[string]interface{})["id"] != userID {
		t.Errorf("login user = %v, want id %s", body["user"], userID)
	}
	if _, leaked := body["user"].(map[string]interface{})["passwordHash"]; leaked {
		t.Error("password hash must not be returned")
	}

	status, body = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "wrong"})
	if status != http.StatusUnauthorized || body["message"] != "Invalid credentials" {
		t.Errorf("bad login = %d %v", status, body)
	}

	status, body = api.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "A", "email": "alice@example.com", "password": "secret1"})
	if status != http.StatusBadRequest {
		t.Errorf("duplicate register = %d %v", status, body)
	}
	status, _ = api.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "B", "email": "b@example.com", "password": "123"})
	if status != http.StatusBadRequest {
		t.Errorf("short password register = %d", status)
	}
}

func TestTaskRoutes_RequireToken(t *testing.T) {
	s := servertest.NewApp(t)
	api := apiClient{t: t, app: s.App}
	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/tasks"},
		{http.MethodGet, "/api/tasks/abc"},
		{http.MethodPut, "/api/tasks/abc"},
		{http.MethodDelete, "/api/tasks/abc"},
	}
	for _, r := range routes {
		for _, token := range []string{"", "not-a-token"} {
			status, body := api.do(r.method, r.path, token, map[string]string{"title": "x", "description": "y", "dueDate": "2025-01-01"})
			if status != http.StatusUnauthorized {
				t.Errorf("%s %s token=%q: status %d, want 401", r.method, r.path, token, status)
			}
			if body["message"] == nil {
				t.Errorf("%s %s: missing message", r.method, r.path)
			}
		}
	}
	if n, _ := s.Tasks.CountByOwner(context.Background(), ""); n != 0 {
		t.Errorf("unauthenticated requests created %d tasks", n)
	}
}

func TestTaskRoutes_EndToEnd(t *testing.T) {
	api := newAPI(t)
	token, userID := api.register("Alice", "alice@example.com")

	status, task := api.do(http.MethodPost, "/api/tasks", token, map[string]string{
		"title": "Buy milk", "description": "2 litres", "dueDate": "2025-01-01", "priority": "low",
	})
	if status != http.StatusOK {
		t.Fatalf("create: %d %v", status, task)
	}
	if task["owner"] != userID || task["status"] != "pending" || task["dueDate"] != "2025-01-01" {
		t.Errorf("created task = %v", task)
	}
	id := task["id"].(string)

	status, page := api.do(http.MethodGet, "/api/tasks?page=1&limit=5", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list: %d %v", status, page)
	}
	tasks := page["tasks"].([]interface{})
	if page["total"].(float64) != 1 || len(tasks) != 1 || tasks[0].(map[string]interface{})["id"] != id {
		t.Errorf("page = %v", page)
	}

	status, updated := api.do(http.MethodPut, "/api/tasks/"+id, token, map[string]string{"status": "completed"})
	if status != http.StatusOK || updated["status"] != "completed" || updated["title"] != "Buy milk" {
		t.Errorf("update: %d %v", status, updated)
	}

	status, got := api.do(http.MethodGet, "/api/tasks/"+id, token, nil)
	if status != http.StatusOK || got["status"] != "completed" {
		t.Errorf("get: %d %v", status, got)
	}

	status, body := api.do(http.MethodPut, "/api/tasks/"+id, token, map[string]string{"owner": "someone-else"})
	if status != http.StatusBadRequest {
		t.Errorf("owner change: %d %v", status, body)
	}

	for i := 0; i < 2; i++ {
		status, body = api.do(http.MethodDelete, "/api/tasks/"+id, token, nil)
		if status != http.StatusOK || body["message"] != "Task deleted" {
			t.Errorf("delete #%d: %d %v", i+1, status, body)
		}
	}
	status, body = api.do(http.MethodGet, "/api/tasks/"+id, token, nil)
	if status != http.StatusNotFound || body["message"] != "Task not found" {
		t.Errorf("get after delete: %d %v", status, body)
	}
}

func TestTaskRoutes_CrossOwner(t *testing.T) {
	api := newAPI(t)
	aliceToken, _ := api.register("Alice", "alice@example.com")
	bobToken, _ := api.register("Bob", "bob@example.com")

	_, task := api.do(http.MethodPost, "/api/tasks", aliceToken, map[string]string{
		"title": "secret", "description": "alice only", "dueDate": "2025-02-02",
	})
	id := task["id"].(string)

	if status, _ := api.do(http.MethodGet, "/api/tasks/"+id, bobToken, nil); status != http.StatusNotFound {
		t.Errorf("bob get = %d, want 404", status)
	}
	if status, _ := api.do(http.MethodPut, "/api/tasks/"+id, bobToken, map[string]string{"title": "mine"}); status != http.StatusNotFound {
		t.Errorf("bob update = %d, want 404", status)
	}
	if status, _ := api.do(http.MethodDelete, "/api/tasks/"+id, bobToken, nil); status != http.StatusNotFound {
		t.Errorf("bob delete = %d, want 404", status)
	}
	_, page := api.do(http.MethodGet, "/api/tasks", bobToken, nil)
	if page["total"].(float64) != 0 || len(page["tasks"].([]interface{})) != 0 {
		t.Errorf("bob's list = %v, want empty", page)
	}
	_, got := api.do(http.MethodGet, "/api/tasks/"+id, aliceToken, nil)
	if got["title"] != "secret" {
		t.Errorf("alice's task changed: %v", got)
	}
}

func TestTaskRoutes_MalformedID(t *testing.T) {
	api := newAPI(t)
	token, _ := api.register("Alice", "alice@example.com")

	status, body := api.do(http.MethodGet, "/api/tasks/not-a-uuid", token, nil)
	if status != http.StatusNotFound || body["message"] != "Task not found" {
		t.Errorf("get: %d %v", status, body)
	}
	status, body = api.do(http.MethodPut, "/api/tasks/not-a-uuid", token, map[string]string{"title": "x"})
	if status != http.StatusNotFound || body["message"] != "Task not found" {
		t.Errorf("update: %d %v", status, body)
	}
	status, body = api.do(http.MethodDelete, "/api/tasks/not-a-uuid", token, nil)
	if status != http.StatusOK || body["message"] != "Task deleted" {
		t.Errorf("delete: %d %v", status, body)
	}
}

func TestTaskRoutes_Pagination(t *testing.T) {
	api := newAPI(t)
	token, _ := api.register("Alice", "alice@example.com")
	for i := 1; i <= 12; i++ {
		api.do(http.MethodPost, "/api/tasks", token, map[string]string{
			"title": fmt.Sprintf("task %d", i), "description": "d", "dueDate": "2025-01-01",
		})
	}
	testCases := []struct {
		query string
		want  int
	}{
		{"", 5},
		{"?page=1&limit=5", 5},
		{"?page=3&limit=5", 2},
		{"?page=4&limit=5", 0},
		{"?page=abc&limit=-1", 5},
		{"?page=1&limit=1000", 12},
	}
	for _, tc := range testCases {
		status, page := api.do(http.MethodGet, "/api/tasks"+tc.query, token, nil)
		if status != http.StatusOK {
			t.Fatalf("%s: %d", tc.query, status)
		}
		if got := len(page["tasks"].([]interface{})); got != tc.want {
			t.Errorf("%s: %d tasks, want %d", tc.query, got, tc.want)
		}
		if page["total"].(float64) != 12 {
			t.Errorf("%s: total = %v", tc.query, page["total"])
		}
	}
}

func TestHealthz(t *testing.T) {
	api := newAPI(t)
	status, body := api.do(http.MethodGet, "/healthz", "", nil)
	if status != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", status, body)
	}
}
