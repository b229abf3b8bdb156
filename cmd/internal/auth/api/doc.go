// Package authapi exposes the authentication service over HTTP.
//
// It owns request decoding, schema validation (length bounds on raw
// input), the JSON error envelope, and the mapping from identity error
// kinds to HTTP status codes. Business rules live in cmd/identity.
package authapi
