// Package token issues and verifies the signed bearer tokens used by aegis.
//
// Tokens are compact HS256 JWTs carrying the user id as a string-encoded
// integer subject, the username, and an expiry. They are stateless: validity
// is a pure function of the token bytes, the verification time, and the
// server-held signing secret. There is no revocation path.
package token
