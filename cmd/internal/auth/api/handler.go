package authapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"aegis/cmd/identity"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler wires the HTTP auth endpoints to the identity service.
type Handler struct {
	log *slog.Logger
	cfg Config

	svc *identity.Service

	// pool feeds the audit trail; a nil pool disables auditing (the
	// in-memory store mode has no database to write to).
	pool *pgxpool.Pool
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, svc *identity.Service, pool *pgxpool.Pool, cfg Config) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if svc == nil {
		return nil, errors.New("authapi: nil identity service")
	}
	return &Handler{
		log:  log,
		cfg:  cfg,
		svc:  svc,
		pool: pool,
	}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/register", h.handleRegister)
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/me", h.handleMe)
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	// Schema bounds apply to the raw input, before normalization trims it.
	if msg, ok := h.validateRegistration(req.Username, req.Password); !ok {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", msg)
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := strings.TrimSpace(r.UserAgent())

	u, err := h.svc.Register(ctx, now, req.Username, req.Password)
	if err != nil {
		switch {
		case identity.IsConflict(err):
			writeError(w, http.StatusConflict, "conflict", "username already taken")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid input")
		default:
			h.log.Error("auth.register.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.auditRegisterSuccess(ctx, u.ID, ip, ua, u.Username)

	writeJSON(w, http.StatusOK, userResponse{ID: u.ID, Username: u.Username})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	// No length gate here: login credentials of any length fall through to
	// lookup/verify so failures stay uniform. Only a blank username is a
	// schema problem (the service reports it as invalid input).
	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := strings.TrimSpace(r.UserAgent())

	tok, _, u, err := h.svc.Login(ctx, now, req.Username, req.Password)
	if err != nil {
		switch {
		case identity.IsInvalidCredentials(err):
			h.auditLoginFailed(ctx, ip, ua, identity.NormalizeUsername(req.Username))
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid input")
		default:
			h.log.Error("auth.login.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.auditLoginSuccess(ctx, u.ID, ip, ua, u.Username)

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tok, TokenType: "bearer"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	u, err := h.svc.Resolve(ctx, now, r.Header.Get("Authorization"))
	if err != nil {
		switch {
		case identity.IsMissingToken(err):
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		case identity.IsInvalidToken(err), identity.IsNotFound(err):
			// A valid-looking token whose user is gone is indistinguishable
			// from an invalid one.
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
		default:
			h.log.Error("auth.me.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, userResponse{ID: u.ID, Username: u.Username})
}

// ---- helpers ----

// validateRegistration enforces the registration schema bounds. Lengths are
// counted in characters on the raw fields; blankness after trimming is the
// service's concern, not the schema's. Login deliberately has no such gate.
func (h *Handler) validateRegistration(username, password string) (string, bool) {
	if n := utf8.RuneCountInString(username); n < h.cfg.UsernameMinLen || n > h.cfg.UsernameMaxLen {
		return fmt.Sprintf("username must be between %d and %d characters", h.cfg.UsernameMinLen, h.cfg.UsernameMaxLen), false
	}
	if n := utf8.RuneCountInString(password); n < h.cfg.PasswordMinLen || n > h.cfg.PasswordMaxLen {
		return fmt.Sprintf("password must be between %d and %d characters", h.cfg.PasswordMinLen, h.cfg.PasswordMaxLen), false
	}
	return "", true
}

func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if ip := parseForwardedIP(r.Header.Get("X-Forwarded-For")); ip != nil {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}
	return nil
}

func parseForwardedIP(raw string) net.IP {
	if raw == "" {
		return nil
	}
	for _, p := range strings.Split(raw, ",") {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			return ip
		}
	}
	return nil
}
