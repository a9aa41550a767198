// Package servertest runs the full REST API over in-memory stores for tests.
package servertest

import (
	"context"
	"net"
	"testing"

	"github.com/gofiber/fiber/v2"

	identityservice "task-manager/backend/internal/identity/service"
	policyengine "task-manager/backend/internal/policy/engine"
	"task-manager/backend/internal/security"
	"task-manager/backend/internal/server"
	taskrepo "task-manager/backend/internal/task/repository"
	taskservice "task-manager/backend/internal/task/service"
	userrepo "task-manager/backend/internal/user/repository"
)

// Server is a running API backed by memory repositories.
type Server struct {
	URL   string
	App   *fiber.App
	Tasks *taskrepo.MemoryRepository
	Users *userrepo.MemoryRepository
}

// NewApp builds the API over fresh memory repositories without listening.
func NewApp(t testing.TB) *Server {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("servertest: token provider: %v", err)
	}
	policy, err := policyengine.NewOPAEvaluator(context.Background(), "")
	if err != nil {
		t.Fatalf("servertest: policy: %v", err)
	}
	users := userrepo.NewMemoryRepository()
	tasks := taskrepo.NewMemoryRepository()
	app := server.NewApp(server.Deps{
		Auth:  identityservice.NewAuthService(users, security.NewHasher(4), tokens, 6, nil),
		Tasks: taskservice.NewTaskService(tasks, policy, nil),
	})
	return &Server{App: app, Tasks: tasks, Users: users}
}

// Start builds the API and serves it on a loopback port until the test ends.
func Start(t testing.TB) *Server {
	t.Helper()
	s := NewApp(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("servertest: listen: %v", err)
	}
	go func() { _ = s.App.Listener(ln) }()
	t.Cleanup(func() { _ = s.App.Shutdown() })
	s.URL = "http://" + ln.Addr().String()
	return s
}
