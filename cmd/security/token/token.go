package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity envelope carried by a verified token.
type Claims struct {
	UserID    int64
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Manager issues and verifies bearer tokens.
//
// Both operations take now explicitly so expiry handling is deterministic
// under test and never depends on an ambient clock.
type Manager interface {
	Issue(userID int64, username string, now time.Time) (token string, exp time.Time, err error)
	Verify(token string, now time.Time) (Claims, error)
}

// jwtClaims is the wire shape: registered claims plus the username.
type jwtClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type hs256Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewHS256Manager builds a Manager signing compact JWTs with HMAC-SHA256.
func NewHS256Manager(cfg Config) (Manager, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, ErrConfig
	}
	if cfg.TTL <= 0 {
		return nil, ErrConfig
	}
	return &hs256Manager{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
	}, nil
}

func (m *hs256Manager) Issue(userID int64, username string, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.ttl)

	claims := jwtClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (m *hs256Manager) Verify(tokenStr string, now time.Time) (Claims, error) {
	claims := &jwtClaims{}

	parsed, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		// Pin the algorithm: an attacker must not pick the verification
		// method via the token header.
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	// The subject must be a string-encoded integer user id.
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{
		UserID:   userID,
		Username: claims.Username,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
