// seed inserts development sample data: a dev user and twelve tasks, enough to page through.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"task-manager/backend/internal/config"
	"task-manager/backend/internal/db"
	"task-manager/backend/internal/security"
	taskdomain "task-manager/backend/internal/task/domain"
	taskrepo "task-manager/backend/internal/task/repository"
	userdomain "task-manager/backend/internal/user/domain"
	userrepo "task-manager/backend/internal/user/repository"
)

const (
	devUserEmail = "dev@example.com"
	devUserName  = "Dev User"
	devPassword  = "password123"
	devTaskCount = 12
)

var priorities = []taskdomain.Priority{taskdomain.PriorityHigh, taskdomain.PriorityMedium, taskdomain.PriorityLow}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	users := userrepo.NewPostgresRepository(conn)
	tasks := taskrepo.NewPostgresRepository(conn)
	ctx := context.Background()

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev@example.com exists). Skipping.")
		os.Exit(0)
	}

	passwordHash, err := security.NewHasher(cfg.BcryptCost).Hash(devPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.NewString(),
		Name:         devUserName,
		Email:        devUserEmail,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatalf("create dev user: %v", err)
	}

	for i := 1; i <= devTaskCount; i++ {
		status := taskdomain.StatusPending
		if i%4 == 0 {
			status = taskdomain.StatusCompleted
		}
		task := &taskdomain.Task{
			ID:          uuid.NewString(),
			Owner:       user.ID,
			Title:       fmt.Sprintf("Sample task %d", i),
			Description: fmt.Sprintf("Seeded task number %d", i),
			DueDate:     taskdomain.NewDate(now.AddDate(0, 0, i)),
			Priority:    priorities[i%len(priorities)],
			Status:      status,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tasks.Create(ctx, task); err != nil {
			log.Fatalf("create task %d: %v", i, err)
		}
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Dev login: %s / %s (%d tasks)\n", devUserEmail, devPassword, devTaskCount)
}
