package goPerm

import (
	"context"
	"sync"
	"time"

	"github.com/MrEthical07/goPerm/token"
	"github.com/google/uuid"
)

// Principal is an opaque identifier against which permissions and the
// admin role are tracked. Principals have no owned lifecycle; they only
// exist as map keys.
type Principal string

// NoPrincipal is the empty principal. Transferring the admin role to
// NoPrincipal renounces it permanently.
const NoPrincipal Principal = ""

// Guard is the access-control wrapper around mask mutation. The default
// guard admits exactly the current admin; a derived authorization policy
// (multi-signature, quorum vote) can substitute its own Guard through
// [Builder.WithGuard] and reuse the bit-manipulation logic unchanged.
type Guard interface {
	Authorize(ctx context.Context, caller Principal) error
}

type adminGuard struct {
	reg *Registry
}

func (g *adminGuard) Authorize(ctx context.Context, caller Principal) error {
	return g.reg.RequireAdmin(ctx, caller)
}

// Registry maps principals to 8-bit capability masks under the control
// of a single admin principal. All mutation operations are guard-gated;
// all read and check operations are public.
//
// Registry instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Registry struct {
	config  Config
	store   Store
	guard   Guard
	events  *eventDispatcher
	metrics *Metrics
	grants  *token.Manager

	// mu serializes mutating call sequences over the (masks, admin)
	// pair so read-modify-write mutations never interleave.
	mu sync.Mutex
}

// Close flushes and stops the event dispatcher.
func (r *Registry) Close() {
	if r == nil {
		return
	}
	if r.events != nil {
		r.events.Close()
	}
}

// EventsDropped returns how many events were discarded because the
// dispatch buffer was full.
func (r *Registry) EventsDropped() uint64 {
	if r == nil || r.events == nil {
		return 0
	}
	return r.events.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the registry metrics.
func (r *Registry) MetricsSnapshot() MetricsSnapshot {
	if r == nil || r.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return r.metrics.Snapshot()
}

func (r *Registry) metricInc(id MetricID) {
	if r == nil || r.metrics == nil {
		return
	}
	r.metrics.Inc(id)
}

// Admin returns the current admin principal, or NoPrincipal once the
// role has been renounced.
func (r *Registry) Admin(ctx context.Context) (Principal, error) {
	if r == nil || r.store == nil {
		return NoPrincipal, ErrRegistryNotReady
	}
	admin, _, err := r.store.Admin(ctx)
	return admin, err
}

// RequireAdmin fails with a [PermissionError] carrying MaskNone unless
// caller is the current admin. Once renounced, no caller passes.
func (r *Registry) RequireAdmin(ctx context.Context, caller Principal) error {
	if r == nil || r.store == nil {
		return ErrRegistryNotReady
	}
	admin, _, err := r.store.Admin(ctx)
	if err != nil {
		return err
	}
	if admin == NoPrincipal || caller != admin {
		r.metricInc(MetricUnauthorized)
		return &PermissionError{RequiredBit: MaskNone}
	}
	return nil
}

// RequireCapability fails with a [PermissionError] carrying required
// unless caller holds at least one of the bits in required. This is the
// gate that privileged operations elsewhere compose with.
func (r *Registry) RequireCapability(ctx context.Context, caller Principal, required Mask) error {
	ok, err := r.HasPermission(ctx, caller, required)
	if err != nil {
		return err
	}
	if !ok {
		r.metricInc(MetricUnauthorized)
		return &PermissionError{RequiredBit: required}
	}
	return nil
}

// GetPermission returns the current mask for principal, MaskNone if it
// was never set. No access restriction.
func (r *Registry) GetPermission(ctx context.Context, principal Principal) (Mask, error) {
	if r == nil || r.store == nil {
		return MaskNone, ErrRegistryNotReady
	}
	return r.store.Mask(ctx, principal)
}

// HasPermission reports whether principal holds at least one of the
// bits in required. Pure predicate, no side effects beyond metrics.
func (r *Registry) HasPermission(ctx context.Context, principal Principal, required Mask) (bool, error) {
	if r == nil || r.store == nil {
		return false, ErrRegistryNotReady
	}
	if r.metrics != nil && r.metrics.LatencyEnabled() {
		start := time.Now()
		defer r.metrics.Observe(MetricCheckLatency, time.Since(start))
	}

	mask, err := r.store.Mask(ctx, principal)
	if err != nil {
		return false, err
	}

	if mask.Has(required) {
		r.metricInc(MetricCheckAllowed)
		return true, nil
	}
	r.metricInc(MetricCheckDenied)
	return false, nil
}

// SetPermission unconditionally overwrites the mask for principal.
// Guard-gated.
func (r *Registry) SetPermission(ctx context.Context, caller, principal Principal, mask Mask) error {
	return r.mutateMask(ctx, caller, principal, MetricPermissionSet, func(Mask) Mask {
		return mask
	})
}

// AddPermission ORs mask into the principal's current mask (capability
// set union). Guard-gated.
func (r *Registry) AddPermission(ctx context.Context, caller, principal Principal, mask Mask) error {
	return r.mutateMask(ctx, caller, principal, MetricPermissionAdded, func(cur Mask) Mask {
		return cur.Union(mask)
	})
}

// RemovePermission clears the bits of mask from the principal's current
// mask (capability set subtraction). Guard-gated.
func (r *Registry) RemovePermission(ctx context.Context, caller, principal Principal, mask Mask) error {
	return r.mutateMask(ctx, caller, principal, MetricPermissionRemoved, func(cur Mask) Mask {
		return cur.Difference(mask)
	})
}

// ClearPermission resets the principal's mask to MaskNone. Guard-gated.
func (r *Registry) ClearPermission(ctx context.Context, caller, principal Principal) error {
	return r.mutateMask(ctx, caller, principal, MetricPermissionCleared, func(Mask) Mask {
		return MaskNone
	})
}

func (r *Registry) mutateMask(
	ctx context.Context,
	caller, principal Principal,
	metric MetricID,
	apply func(Mask) Mask,
) error {
	if r == nil || r.store == nil {
		return ErrRegistryNotReady
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.guard.Authorize(ctx, caller); err != nil {
		return err
	}

	current, err := r.store.Mask(ctx, principal)
	if err != nil {
		return err
	}

	next := apply(current)
	if err := r.store.SetMask(ctx, principal, next); err != nil {
		return err
	}

	r.metricInc(metric)
	r.emitEvent(ctx, Event{
		EventType: EventPermissionChanged,
		Principal: string(principal),
		Mask:      next.Raw(),
	})
	return nil
}

// TransferAdmin reassigns the admin role to newAdmin. Guard-gated.
// newAdmin MAY be NoPrincipal; that renounces the role permanently —
// after it no sequence of calls restores a non-empty admin.
func (r *Registry) TransferAdmin(ctx context.Context, caller, newAdmin Principal) error {
	if r == nil || r.store == nil {
		return ErrRegistryNotReady
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.guard.Authorize(ctx, caller); err != nil {
		return err
	}

	if err := r.store.SetAdmin(ctx, newAdmin); err != nil {
		return err
	}

	if newAdmin == NoPrincipal {
		r.metricInc(MetricAdminRenounced)
	} else {
		r.metricInc(MetricAdminTransferred)
	}
	r.emitEvent(ctx, Event{
		EventType: EventAdminChanged,
		Admin:     string(newAdmin),
	})
	return nil
}

// RenounceAdmin permanently empties the admin role. Guard-gated.
// This is irreversible: the registry can never again be admin-mutated.
func (r *Registry) RenounceAdmin(ctx context.Context, caller Principal) error {
	return r.TransferAdmin(ctx, caller, NoPrincipal)
}

// IssueGrant mints a signed grant token snapshotting the principal's
// current mask, so downstream services can gate on capability bits
// without a registry round-trip. Public read-path operation; requires
// grants to be configured.
func (r *Registry) IssueGrant(ctx context.Context, principal Principal) (string, error) {
	if r == nil || r.store == nil {
		return "", ErrRegistryNotReady
	}
	if r.grants == nil {
		return "", ErrGrantsDisabled
	}

	mask, err := r.store.Mask(ctx, principal)
	if err != nil {
		return "", err
	}

	grant, err := r.grants.CreateGrant(string(principal), mask.Raw())
	if err != nil {
		return "", err
	}

	r.metricInc(MetricGrantIssued)
	return grant, nil
}

// Grants returns the configured grant token manager, or nil when grant
// signing is disabled. Middleware uses it to verify issued grants.
func (r *Registry) Grants() *token.Manager {
	if r == nil {
		return nil
	}
	return r.grants
}

func (r *Registry) emitEvent(ctx context.Context, event Event) {
	if r == nil || r.events == nil {
		return
	}

	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	event.IP = clientIPFromContext(ctx)

	r.events.Emit(ctx, event)
}
