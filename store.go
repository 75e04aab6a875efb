package goPerm

import (
	"context"
	"sync"
)

// Store persists the (masks, admin) pair. Implementations must be safe
// for concurrent use; the Registry serializes mutating call sequences
// with its own mutex, so a Store only needs per-call consistency.
type Store interface {
	// Mask returns the mask for p, MaskNone if p was never written.
	Mask(ctx context.Context, p Principal) (Mask, error)
	// SetMask overwrites the mask for p, creating the entry if needed.
	SetMask(ctx context.Context, p Principal, m Mask) error
	// Admin returns the current admin and whether the registry has ever
	// been initialized. A renounced registry reports (NoPrincipal, true).
	Admin(ctx context.Context) (Principal, bool, error)
	// SetAdmin records p as the current admin. Recording NoPrincipal
	// marks the registry renounced, not uninitialized.
	SetAdmin(ctx context.Context, p Principal) error
}

// MemoryStore is the default in-process [Store]. The zero value is ready
// to use.
type MemoryStore struct {
	mu          sync.RWMutex
	masks       map[Principal]Mask
	admin       Principal
	initialized bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		masks: make(map[Principal]Mask),
	}
}

func (s *MemoryStore) Mask(_ context.Context, p Principal) (Mask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.masks[p], nil
}

func (s *MemoryStore) SetMask(_ context.Context, p Principal, m Mask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.masks == nil {
		s.masks = make(map[Principal]Mask)
	}
	s.masks[p] = m
	return nil
}

func (s *MemoryStore) Admin(_ context.Context) (Principal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin, s.initialized, nil
}

func (s *MemoryStore) SetAdmin(_ context.Context, p Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = p
	s.initialized = true
	return nil
}
