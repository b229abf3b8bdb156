// Package password provides one-way password hashing for aegis.
//
// Hashes are Argon2id in PHC string format. Verification is constant-time
// and refuses pathological parameters embedded in untrusted hash strings.
package password
