// Package password hashes and verifies user passwords with argon2id in PHC
// string format. It is used by the credential check at login; refresh token
// digests live elsewhere and deliberately use a fast hash.
package password
