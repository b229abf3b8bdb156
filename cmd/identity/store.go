package identity

import (
	"context"
	"time"
)

// User is the canonical security principal.
// Username always holds the normalized form; ID is store-assigned.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Store is the user persistence boundary.
//
// Contract:
//   - username arguments must already be normalized (see NormalizeUsername);
//     stores never normalize on their own.
//   - CreateUser returns ConflictError when the username is taken, including
//     when a concurrent insert wins the race against a prior existence check.
//   - Lookups return an error wrapping ErrNotFound when no row matches.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string, now time.Time) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
}
