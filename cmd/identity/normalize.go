package identity

import "strings"

// NormalizeUsername performs case-insensitive canonicalization: trim
// surrounding whitespace, then lower-case. The normalized form is the only
// form ever stored or compared.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
