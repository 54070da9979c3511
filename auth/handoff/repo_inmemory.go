package handoff

import (
	"context"
	"errors"
	"sync"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface.
// It lives exactly as long as the process, which is the client's session.
type InMemoryRepo struct {
	mu   sync.Mutex
	slot *Handoff
}

// NewInMemoryRepo creates an empty handoff slot
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{}
}

// Put stores h, replacing any earlier attempt
func (r *InMemoryRepo) Put(_ context.Context, h Handoff) error {
	if h.CodeVerifier == "" {
		return errors.New("code verifier cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy so later changes by the caller are not visible
	stored := h
	r.slot = &stored
	return nil
}

// Take returns and removes the stored handoff
func (r *InMemoryRepo) Take(_ context.Context) (Handoff, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slot == nil {
		return Handoff{}, false, nil
	}
	h := *r.slot
	r.slot = nil
	return h, true, nil
}

// Clear removes any stored handoff
func (r *InMemoryRepo) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.slot = nil
	return nil
}

// Pending reports whether a handoff is stored without consuming it.
func (r *InMemoryRepo) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.slot != nil
}
