// Package identity implements the authentication core of aegis.
//
// It owns the User model, username normalization, the user-store boundary
// (Postgres and in-memory implementations), and the Service orchestrating
// registration, login, and bearer-token resolution.
//
// This package is intentionally dependency-light and security-first.
package identity
