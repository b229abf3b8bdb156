package authapi

import "testing"

func TestAuditTableIdent(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"aegis":      `"aegis"."audit_log"`,
		"custom":     `"custom"."audit_log"`,
		" spaced ":   `"spaced"."audit_log"`,
		"":           `"aegis"."audit_log"`,
		`odd"schema`: `"odd""schema"."audit_log"`,
	}
	for schema, want := range cases {
		if got := auditTableIdent(schema); got != want {
			t.Errorf("auditTableIdent(%q) = %q, want %q", schema, got, want)
		}
	}
}
