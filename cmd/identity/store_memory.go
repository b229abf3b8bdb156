package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used when no database is configured and
// by tests. Ids are assigned sequentially starting at 1, matching the
// auto-increment behavior of the Postgres schema.
type MemoryStore struct {
	mu         sync.Mutex
	nextID     int64
	byID       map[int64]User
	byUsername map[string]int64
}

// NewMemoryStore returns an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[int64]User),
		byUsername: make(map[string]int64),
	}
}

// CreateUser inserts a user, enforcing username uniqueness under the lock the
// same way the Postgres unique constraint does.
func (s *MemoryStore) CreateUser(ctx context.Context, username, passwordHash string, now time.Time) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(username) == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "username is required"}
	}
	if strings.TrimSpace(passwordHash) == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password hash is required"}
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return User{}, ConflictError{Op: op, Field: "username"}
	}

	s.nextID++
	u := User{
		ID:           s.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	s.byID[u.ID] = u
	s.byUsername[u.Username] = u.ID
	return u, nil
}

// GetUserByUsername looks up a user by its normalized username.
func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	const op = "identity.GetUserByUsername"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUsername[username]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return s.byID[id], nil
}

// GetUserByID looks up a user by its id.
func (s *MemoryStore) GetUserByID(ctx context.Context, id int64) (User, error) {
	const op = "identity.GetUserByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return u, nil
}

// DeleteUser removes a user. It exists for tests exercising the
// token-outlives-user path; the HTTP surface never deletes users.
func (s *MemoryStore) DeleteUser(_ context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.byID[id]; ok {
		delete(s.byUsername, u.Username)
		delete(s.byID, id)
	}
}
