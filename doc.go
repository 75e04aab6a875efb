// Package goPerm provides a single-admin, bitmask-based permission registry:
// one administrative principal grants, revokes, replaces, and clears byte-wide
// capability masks for arbitrary principals, and any operation can be gated on
// the caller holding a specific capability bit.
//
// The package is designed for concurrent server workloads: Registry methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build]. A single mutex serializes mutations over the (masks, admin)
// pair; reads observe a consistent snapshot through the backing [Store].
//
// # Architecture boundaries
//
// goPerm is the public surface. It exposes [Registry], [Builder], [Config],
// [Mask], [Event], and the sentinel errors. Grant token signing lives under
// token/ and HTTP enforcement under middleware/; neither is required to use
// the registry.
//
// # What this package must NOT do
//
//   - Assign meaning to individual capability bits (callers define bit
//     semantics externally).
//   - Emit a notification or mutate state on any failure path.
//   - Restore a non-empty admin after [Registry.RenounceAdmin]; renouncing
//     is terminal by design.
//
// # Performance contract
//
// HasPermission is the hot path. With a [MemoryStore] it must not allocate
// and completes with a single map read; with a [RedisStore] it is allowed one
// Redis round-trip per call.
package goPerm
