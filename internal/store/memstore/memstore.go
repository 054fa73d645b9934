// Package memstore provides in-process, mutex-guarded implementations of
// the capability engine's store interfaces. It backs unit tests and the
// demo CLI, which persists it between runs through Snapshot and Load.
package memstore

import (
	"sync"
	"time"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/did"
)

// DidKeys is a concurrency-safe DID-to-public-key registry.
type DidKeys struct {
	mu sync.RWMutex
	db map[string][]byte
}

// NewDidKeys returns an empty registry.
func NewDidKeys() *DidKeys {
	return &DidKeys{db: make(map[string][]byte)}
}

// Get implements capability.DidKeyStore. Explicitly registered keys take
// precedence; a did:key identifier with no registered entry is resolved
// directly from its own encoding, since it is self-describing.
func (s *DidKeys) Get(id string) ([]byte, bool) {
	s.mu.RLock()
	pub, ok := s.db[id]
	s.mu.RUnlock()
	if ok {
		return pub, true
	}
	if pub, err := did.ResolveKeyDID(id); err == nil {
		return pub, true
	}
	return nil, false
}

// Register associates did with pub, replacing any prior entry.
func (s *DidKeys) Register(did string, pub []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(pub))
	copy(cp, pub)
	s.db[did] = cp
}

// Capabilities is a concurrency-safe capability registry, keyed by ID.
type Capabilities struct {
	mu sync.RWMutex
	db map[string]*capability.Capability
}

// NewCapabilities returns an empty registry.
func NewCapabilities() *Capabilities {
	return &Capabilities{db: make(map[string]*capability.Capability)}
}

// Get implements capability.CapabilityStore.
func (s *Capabilities) Get(id string) (*capability.Capability, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cap, ok := s.db[id]
	return cap, ok
}

// Put records cap under its own ID.
func (s *Capabilities) Put(cap *capability.Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db[cap.ID] = cap
}

// Len reports how many capabilities are registered.
func (s *Capabilities) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.db)
}

// Revocations is a concurrency-safe set of revoked capability IDs.
type Revocations struct {
	mu sync.RWMutex
	db map[string]struct{}
}

// NewRevocations returns an empty set.
func NewRevocations() *Revocations {
	return &Revocations{db: make(map[string]struct{})}
}

// Contains implements capability.RevocationSet.
func (s *Revocations) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.db[id]
	return ok
}

// Revoke adds id to the set.
func (s *Revocations) Revoke(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db[id] = struct{}{}
}

// Nonces is a concurrency-safe, time-bounded invocation replay guard.
type Nonces struct {
	mu sync.Mutex
	db map[string]time.Time
}

// NewNonces returns an empty replay guard.
func NewNonces() *Nonces {
	return &Nonces{db: make(map[string]time.Time)}
}

// InsertIfAbsent implements capability.NonceStore.
func (s *Nonces) InsertIfAbsent(nonce string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.db[nonce]; seen {
		return false
	}
	s.db[nonce] = at
	return true
}

// EvictOlderThan implements capability.NonceStore.
func (s *Nonces) EvictOlderThan(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for nonce, at := range s.db {
		if at.Before(cutoff) {
			delete(s.db, nonce)
		}
	}
}

// Len reports how many nonces are currently tracked.
func (s *Nonces) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.db)
}

// New bundles four fresh, empty stores into a capability.Stores value.
func New() capability.Stores {
	return capability.Stores{
		DidKeys:      NewDidKeys(),
		Capabilities: NewCapabilities(),
		Revocations:  NewRevocations(),
		Nonces:       NewNonces(),
	}
}
