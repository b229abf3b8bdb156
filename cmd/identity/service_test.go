package identity

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"aegis/cmd/security/password"
	"aegis/cmd/security/token"
)

func testService(t *testing.T) (*Service, *MemoryStore, token.Manager) {
	t.Helper()

	hasher := password.DefaultConfig()
	hasher.Params.MemoryKiB = 8 * 1024
	hasher.Params.Iterations = 1

	tokens, err := token.NewHS256Manager(token.Config{
		Secret: "0123456789abcdef0123456789abcdef",
		TTL:    24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	store := NewMemoryStore()
	svc, err := NewService(slog.Default(), store, hasher, tokens)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return svc, store, tokens
}

func TestRegister_NormalizesUsername(t *testing.T) {
	t.Parallel()

	svc, _, _ := testService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	u, err := svc.Register(ctx, now, "  Alice ", "secret1")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if u.Username != "alice" {
		t.Fatalf("username not normalized: %q", u.Username)
	}
	if u.ID != 1 {
		t.Fatalf("expected first id 1, got %d", u.ID)
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret1" {
		t.Fatalf("password not hashed: %q", u.PasswordHash)
	}
}

func TestRegister_BlankUsername(t *testing.T) {
	t.Parallel()

	svc, _, _ := testService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := svc.Register(ctx, now, "   ", "secret1"); !IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestRegister_DuplicateConflicts(t *testing.T) {
	t.Parallel()

	svc, _, _ := testService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := svc.Register(ctx, now, "bob123", "secret1"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	// Same normalized form, different raw spelling.
	_, err := svc.Register(ctx, now, " BOB123 ", "another-secret")
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLogin_NormalizationIdempotence(t *testing.T) {
	t.Parallel()

	svc, _, tokens := testService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := svc.Register(ctx, now, "Alice ", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	tok, exp, u, err := svc.Login(ctx, now, "alice", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.Username != "alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if !exp.After(now) {
		t.Fatalf("expiry not in the future: %v", exp)
	}

	claims, err := tokens.Verify(tok, now)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.UserID != u.ID || claims.Username != u.Username {
		t.Fatalf("claims mismatch: %+v vs user %+v", claims, u)
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	svc, _, _ := testService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := svc.Register(ctx, now, "bob123", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, _, errUnknown := svc.Login(ctx, now, "nobody", "secret1")
	_, _, _, errWrongPw := svc.Login(ctx, now, "bob123", "wrong-pass")

	if !IsInvalidCredentials(errUnknown) {
		t.Fatalf("unknown user: expected invalid credentials, got %v", errUnknown)
	}
	if !IsInvalidCredentials(errWrongPw) {
		t.Fatalf("wrong password: expected invalid credentials, got %v", errWrongPw)
	}
}

func TestLogin_BlankUsername(t *testing.T) {
	t.Parallel()

	svc, _, _ := testService(t)

	_, _, _, err := svc.Login(context.Background(), time.Now().UTC(), " ", "secret1")
	if !IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestResolve_Roundtrip(t *testing.T) {
	t.Parallel()

	svc, _, _ := testService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	reg, err := svc.Register(ctx, now, "bob123", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	tok, _, _, err := svc.Login(ctx, now, "bob123", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	u, err := svc.Resolve(ctx, now, "Bearer "+tok)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if u.ID != reg.ID || u.Username != "bob123" {
		t.Fatalf("resolved wrong user: %+v", u)
	}
}

func TestResolve_PrefixIsCaseSensitive(t *testing.T) {
	t.Parallel()

	svc, _, _ := testService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, header := range []string{"", "bearer xyz", "BEARER xyz", "Bearer", "Token xyz"} {
		if _, err := svc.Resolve(ctx, now, header); !IsMissingToken(err) {
			t.Fatalf("Resolve(%q): expected missing token, got %v", header, err)
		}
	}
}

func TestResolve_TamperedToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := testService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := svc.Register(ctx, now, "bob123", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	tok, _, _, err := svc.Login(ctx, now, "bob123", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	tampered := tok[:len(tok)-2] + "xx"
	if _, err := svc.Resolve(ctx, now, "Bearer "+tampered); !IsInvalidToken(err) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestResolve_ExpiredToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := testService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := svc.Register(ctx, now, "bob123", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	tok, _, _, err := svc.Login(ctx, now, "bob123", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	later := now.Add(25 * time.Hour)
	if _, err := svc.Resolve(ctx, later, "Bearer "+tok); !IsInvalidToken(err) {
		t.Fatalf("expected invalid token after expiry, got %v", err)
	}
}

func TestResolve_UserDeletedAfterIssuance(t *testing.T) {
	t.Parallel()

	svc, store, _ := testService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	reg, err := svc.Register(ctx, now, "bob123", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	tok, _, _, err := svc.Login(ctx, now, "bob123", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	store.DeleteUser(ctx, reg.ID)

	if _, err := svc.Resolve(ctx, now, "Bearer "+tok); !IsNotFound(err) {
		t.Fatalf("expected not found for deleted user, got %v", err)
	}
}
