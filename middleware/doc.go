// Package middleware exposes HTTP middleware adapters enforcing goPerm
// capability bits on wrapped handlers.
//
// # Guards
//
//   - [Guard] — stateless grant-token verification, no store call.
//   - [StrictGuard] — grant identifies the caller, the live registry
//     decides; revocations apply immediately.
//
// Each guard reads the Authorization header, verifies the grant token,
// and injects the verified claims into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into registry and token calls.
// It does NOT implement authorization logic itself.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to token.Manager).
//   - Access Redis (the Registry handles I/O).
//   - Make authorization decisions beyond pass/reject from the
//     registry's capability gate.
package middleware
