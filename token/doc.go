// Package token signs and verifies grant tokens: short-lived JWTs that
// snapshot a principal's capability mask so services can gate privileged
// work without a registry round-trip.
//
// # Architecture boundaries
//
// This package wraps github.com/golang-jwt/jwt/v5 and nothing else. It
// holds no registry state; a grant reflects the mask at issue time and
// expires rather than tracks revocation.
//
// # What this package must NOT do
//
//   - Access Redis or any store.
//   - Import goPerm or middleware (no import cycles).
//   - Make authorization decisions; it only attests what the registry
//     said at issue time.
package token
