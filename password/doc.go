// Package password wraps argon2id hashing behind the engine's password
// verifier contract. Hashes are stored as PHC strings so cost parameters
// travel with the hash and can be raised without invalidating accounts.
package password
