package identity

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"aegis/cmd/security/password"
	"aegis/cmd/security/token"
)

// bearerPrefix is matched case-sensitively: "bearer x" or "BEARER x" is a
// missing credential, not a malformed one.
const bearerPrefix = "Bearer "

// Service orchestrates registration, login, and token resolution on top of a
// user Store, the password hasher, and the token Manager.
//
// It holds no per-request state; a single Service is shared across requests.
type Service struct {
	log    *slog.Logger
	store  Store
	hasher password.Config
	tokens token.Manager

	// Pre-computed hash used to equalize login timing when the user does
	// not exist.
	dummyHash string
}

// NewService constructs a Service. The store and token manager are required;
// a nil logger falls back to slog.Default.
func NewService(log *slog.Logger, store Store, hasher password.Config, tokens token.Manager) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	if store == nil {
		return nil, OpError{Op: "identity.NewService", Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if tokens == nil {
		return nil, OpError{Op: "identity.NewService", Kind: ErrInvalidInput, Msg: "nil token manager"}
	}

	s := &Service{
		log:    log,
		store:  store,
		hasher: hasher,
		tokens: tokens,
	}

	if hash, err := hasher.Hash("dummy-password-for-timing-only"); err == nil {
		s.dummyHash = hash
	}

	return s, nil
}

// Register creates a new user with a normalized username and a hashed
// password.
//
// Length bounds (3-30 username, 6-128 password) are enforced by the request
// schema before this method runs; Register re-checks only what the schema
// cannot: blankness after normalization and username uniqueness.
func (s *Service) Register(ctx context.Context, now time.Time, username, passwordPlain string) (User, error) {
	const op = "identity.Register"

	norm := NormalizeUsername(username)
	if norm == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "username cannot be blank"}
	}

	// Common-path duplicate check. The store's unique constraint is the
	// backstop for concurrent registrations racing past this lookup.
	_, err := s.store.GetUserByUsername(ctx, norm)
	switch {
	case err == nil:
		return User{}, ConflictError{Op: op, Field: "username"}
	case !IsNotFound(err):
		return User{}, err
	}

	hash, err := s.hasher.Hash(passwordPlain)
	if err != nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error()}
	}

	u, err := s.store.CreateUser(ctx, norm, hash, now)
	if err != nil {
		// A racing insert surfaces here as ConflictError via the store.
		return User{}, err
	}
	return u, nil
}

// Login verifies credentials and issues a bearer token for the user.
//
// Unknown username and wrong password are deliberately indistinguishable:
// both return ErrInvalidCredentials, and the unknown-user path burns a dummy
// hash verification so response timing does not leak existence.
func (s *Service) Login(ctx context.Context, now time.Time, username, passwordPlain string) (string, time.Time, User, error) {
	const op = "identity.Login"

	norm := NormalizeUsername(username)
	if norm == "" {
		return "", time.Time{}, User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "username cannot be blank"}
	}

	u, err := s.store.GetUserByUsername(ctx, norm)
	if err != nil {
		if IsNotFound(err) {
			if s.dummyHash != "" {
				_, _ = s.hasher.Verify(s.dummyHash, passwordPlain)
			}
			return "", time.Time{}, User{}, OpError{Op: op, Kind: ErrInvalidCredentials}
		}
		return "", time.Time{}, User{}, err
	}

	ok, err := s.hasher.Verify(u.PasswordHash, passwordPlain)
	if err != nil {
		// A malformed stored hash is a mismatch to the caller, but worth an
		// operator-visible log line: it means the row was written badly.
		s.log.Error("identity.login.bad_stored_hash", "err", err, "user_id", u.ID)
		return "", time.Time{}, User{}, OpError{Op: op, Kind: ErrInvalidCredentials}
	}
	if !ok {
		return "", time.Time{}, User{}, OpError{Op: op, Kind: ErrInvalidCredentials}
	}

	tok, exp, err := s.tokens.Issue(u.ID, u.Username, now)
	if err != nil {
		return "", time.Time{}, User{}, err
	}
	return tok, exp, u, nil
}

// Resolve maps an Authorization header to the current user.
//
// The "Bearer " prefix check is case-sensitive with a single space; anything
// else is a missing token. Token validity is a pure function of the token
// bytes, now, and the signing secret -- there is no server-side token state.
func (s *Service) Resolve(ctx context.Context, now time.Time, authorization string) (User, error) {
	const op = "identity.Resolve"

	if !strings.HasPrefix(authorization, bearerPrefix) {
		return User{}, OpError{Op: op, Kind: ErrMissingToken, Msg: "missing bearer token"}
	}
	raw := strings.TrimSpace(authorization[len(bearerPrefix):])

	claims, err := s.tokens.Verify(raw, now)
	if err != nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidToken}
	}

	u, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if IsNotFound(err) {
			// Token outlived its user (e.g. deleted after issuance).
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	return u, nil
}
