package authapi

import (
	"context"
	"encoding/json"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
)

func (h *Handler) auditRegisterSuccess(ctx context.Context, userID int64, ip net.IP, ua string, username string) {
	h.insertAudit(ctx, "auth.register.success", &userID, ip, ua, map[string]any{
		"username": username,
	})
}

func (h *Handler) auditLoginSuccess(ctx context.Context, userID int64, ip net.IP, ua string, username string) {
	h.insertAudit(ctx, "auth.login.success", &userID, ip, ua, map[string]any{
		"username": username,
	})
}

func (h *Handler) auditLoginFailed(ctx context.Context, ip net.IP, ua string, identifier string) {
	h.insertAudit(ctx, "auth.login.failed", nil, ip, ua, map[string]any{
		"identifier": identifier,
	})
}

// insertAudit writes a best-effort audit row. Failures are logged, never
// surfaced: the audit trail must not break the auth path.
func (h *Handler) insertAudit(ctx context.Context, action string, userID *int64, ip net.IP, ua string, meta map[string]any) {
	if h == nil || h.pool == nil {
		return
	}

	action = strings.TrimSpace(action)
	if action == "" {
		return
	}

	var ipVal any
	if ip != nil {
		ipVal = ip.String()
	}

	var metaVal *string
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			s := string(b)
			metaVal = &s
		}
	}

	table := auditTableIdent(h.cfg.DBSchema)

	_, err := h.pool.Exec(ctx, `
		INSERT INTO `+table+` (
			user_id, action, created_at, ip, user_agent, meta
		) VALUES ($1, $2, now(), $3, $4, $5::jsonb)
	`, userID, action, ipVal, trimOrNil(ua), metaVal)
	if err != nil {
		h.log.Error("auth.audit.insert.fail", "err", err, "action", action)
	}
}

// auditTableIdent quotes the schema-qualified audit table, following the
// schema configured for the user store.
func auditTableIdent(schema string) string {
	schema = strings.TrimSpace(schema)
	if schema == "" {
		schema = "aegis"
	}
	return pgx.Identifier{schema, "audit_log"}.Sanitize()
}

func trimOrNil(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return v
}
