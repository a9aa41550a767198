package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"task-manager/backend/internal/task/domain"
)

func seed(t *testing.T, r *MemoryRepository, owner string, n int) []*domain.Task {
	t.Helper()
	out := make([]*domain.Task, 0, n)
	for i := 0; i < n; i++ {
		task := &domain.Task{
			ID:        fmt.Sprintf("%s-task-%02d", owner, i),
			Owner:     owner,
			Title:     fmt.Sprintf("task %d", i),
			Priority:  domain.PriorityMedium,
			Status:    domain.StatusPending,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.Create(context.Background(), task); err != nil {
			t.Fatalf("Create: %v", err)
		}
		out = append(out, task)
	}
	return out
}

func TestMemoryRepository_ListByOwnerWindows(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	tasks := seed(t, r, "alice", 12)
	seed(t, r, "bob", 3)

	tests := []struct {
		offset, limit int
		wantIDs       []string
	}{
		{0, 5, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID, tasks[3].ID, tasks[4].ID}},
		{10, 5, []string{tasks[10].ID, tasks[11].ID}},
		{15, 5, nil},
	}
	for _, tc := range tests {
		got, err := r.ListByOwner(ctx, "alice", tc.limit, tc.offset)
		if err != nil {
			t.Fatalf("ListByOwner: %v", err)
		}
		if len(got) != len(tc.wantIDs) {
			t.Fatalf("offset %d: len = %d, want %d", tc.offset, len(got), len(tc.wantIDs))
		}
		for i := range got {
			if got[i].ID != tc.wantIDs[i] {
				t.Errorf("offset %d [%d] = %s, want %s", tc.offset, i, got[i].ID, tc.wantIDs[i])
			}
		}
	}

	n, _ := r.CountByOwner(ctx, "alice")
	if n != 12 {
		t.Errorf("CountByOwner = %d, want 12", n)
	}
}

func TestMemoryRepository_UpdateAndDeleteRequireOwner(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	task := seed(t, r, "alice", 1)[0]

	hijack := *task
	hijack.Owner = "bob"
	hijack.Title = "mine now"
	ok, err := r.Update(ctx, &hijack)
	if err != nil || ok {
		t.Fatalf("Update by non-owner = %v, %v; want false, nil", ok, err)
	}
	ok, err = r.Delete(ctx, task.ID, "bob")
	if err != nil || ok {
		t.Fatalf("Delete by non-owner = %v, %v; want false, nil", ok, err)
	}

	upd := *task
	upd.Title = "renamed"
	if ok, _ := r.Update(ctx, &upd); !ok {
		t.Fatal("Update by owner should succeed")
	}
	got, _ := r.GetByID(ctx, task.ID)
	if got.Title != "renamed" {
		t.Errorf("Title = %q, want renamed", got.Title)
	}

	if ok, _ := r.Delete(ctx, task.ID, "alice"); !ok {
		t.Fatal("Delete by owner should succeed")
	}
	if ok, _ := r.Delete(ctx, task.ID, "alice"); ok {
		t.Fatal("second Delete should report not found")
	}
	if got, _ := r.GetByID(ctx, task.ID); got != nil {
		t.Errorf("GetByID after delete = %+v, want nil", got)
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	task := seed(t, r, "alice", 1)[0]

	got, _ := r.GetByID(ctx, task.ID)
	got.Title = "mutated by caller"
	again, _ := r.GetByID(ctx, task.ID)
	if again.Title == "mutated by caller" {
		t.Error("GetByID should return a copy")
	}
}
