package identity

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	u1, err := s.CreateUser(ctx, "alice", "hash-1", now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u1.ID != 1 {
		t.Fatalf("first id=%d want=1", u1.ID)
	}

	u2, err := s.CreateUser(ctx, "bob", "hash-2", now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u2.ID != 2 {
		t.Fatalf("second id=%d want=2", u2.ID)
	}

	byName, err := s.GetUserByUsername(ctx, "alice")
	if err != nil || byName.ID != u1.ID {
		t.Fatalf("get by username: %+v, %v", byName, err)
	}
	byID, err := s.GetUserByID(ctx, u2.ID)
	if err != nil || byID.Username != "bob" {
		t.Fatalf("get by id: %+v, %v", byID, err)
	}
}

func TestMemoryStore_DuplicateUsername(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := s.CreateUser(ctx, "alice", "hash-1", now); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateUser(ctx, "alice", "hash-2", now); !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.GetUserByUsername(ctx, "missing"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.GetUserByID(ctx, 42); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_IDsNotReusedAfterDelete(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	u1, err := s.CreateUser(ctx, "alice", "hash-1", now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	s.DeleteUser(ctx, u1.ID)

	u2, err := s.CreateUser(ctx, "bob", "hash-2", now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u2.ID != 2 {
		t.Fatalf("id reused after delete: got %d", u2.ID)
	}
}
