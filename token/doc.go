// Package token signs and validates the engine's access and refresh tokens
// on top of github.com/golang-jwt/jwt/v5. A typ claim separates the two
// token kinds so one can never stand in for the other.
//
// Refreshing re-signs the claims snapshot taken at login; it never consults
// storage. Permission changes made after a refresh token was issued are
// therefore invisible until the next full login, when a fresh snapshot is
// taken. That staleness window is an accepted property of the stateless
// design, not an oversight.
package token
