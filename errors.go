package goPerm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned by every gated operation when the caller
	// lacks the admin role or the required capability bit. Gated operations
	// return it wrapped in a [PermissionError] carrying the missing bit.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAdminEmpty is returned when a registry is constructed with an
	// empty initial admin principal.
	ErrAdminEmpty = errors.New("initial admin cannot be empty")
	// ErrRegistryNotReady is returned when a Registry is used before
	// initialization through [Builder.Build].
	ErrRegistryNotReady = errors.New("registry not initialized")
	// ErrStoreUnavailable is returned when the backing store cannot be
	// reached. State is unchanged and no event is emitted.
	ErrStoreUnavailable = errors.New("permission store unavailable")
	// ErrGrantsDisabled is returned by IssueGrant when grant token
	// signing is not configured.
	ErrGrantsDisabled = errors.New("grant tokens disabled")
)

// PermissionError is the failure signal of the access gate. RequiredBit
// names the capability bit the caller was missing; MaskNone conventionally
// denotes "admin role required" rather than a capability bit.
//
// PermissionError unwraps to [ErrUnauthorized], so callers can match it
// with errors.Is without inspecting the bit.
type PermissionError struct {
	RequiredBit Mask
}

func (e *PermissionError) Error() string {
	if e.RequiredBit == MaskNone {
		return "unauthorized: admin role required"
	}
	return fmt.Sprintf("unauthorized: missing permission bit %s", e.RequiredBit)
}

func (e *PermissionError) Unwrap() error {
	return ErrUnauthorized
}
