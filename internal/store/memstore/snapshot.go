package memstore

import (
	"encoding/json"
	"os"
	"time"

	"go.zcap.dev/capability/capability"
)

// snapshot is the on-disk shape the demonstration CLI persists between
// invocations, since each CLI command otherwise runs as its own process
// with a fresh, empty set of in-memory stores.
type snapshot struct {
	DidKeys      map[string][]byte                `json:"didKeys"`
	Capabilities map[string]*capability.Capability `json:"capabilities"`
	Revocations  map[string]struct{}               `json:"revocations"`
	Nonces       map[string]time.Time              `json:"nonces"`
}

// Snapshot captures the full contents of the four stores bundled in s.
// It panics if s was not produced by New or does not hold this package's
// concrete store types, since that indicates a programming error in the
// caller, not a recoverable runtime condition.
func Snapshot(s capability.Stores) *snapshot {
	didKeys := s.DidKeys.(*DidKeys)
	caps := s.Capabilities.(*Capabilities)
	revs := s.Revocations.(*Revocations)
	nonces := s.Nonces.(*Nonces)

	didKeys.mu.RLock()
	didKeysCopy := make(map[string][]byte, len(didKeys.db))
	for k, v := range didKeys.db {
		didKeysCopy[k] = v
	}
	didKeys.mu.RUnlock()

	caps.mu.RLock()
	capsCopy := make(map[string]*capability.Capability, len(caps.db))
	for k, v := range caps.db {
		capsCopy[k] = v
	}
	caps.mu.RUnlock()

	revs.mu.RLock()
	revsCopy := make(map[string]struct{}, len(revs.db))
	for k, v := range revs.db {
		revsCopy[k] = v
	}
	revs.mu.RUnlock()

	nonces.mu.Lock()
	noncesCopy := make(map[string]time.Time, len(nonces.db))
	for k, v := range nonces.db {
		noncesCopy[k] = v
	}
	nonces.mu.Unlock()

	return &snapshot{
		DidKeys:      didKeysCopy,
		Capabilities: capsCopy,
		Revocations:  revsCopy,
		Nonces:       noncesCopy,
	}
}

// Save writes the snapshot to path as JSON.
func (sn *snapshot) Save(path string) error {
	data, err := json.MarshalIndent(sn, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Load reads a snapshot previously written by Save and rebuilds a fresh
// set of stores from it. A missing file is treated as an empty state,
// matching the CLI's "first run" experience.
func Load(path string) (capability.Stores, error) {
	stores := New()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return stores, nil
	}
	if err != nil {
		return stores, err
	}

	var sn snapshot
	if err := json.Unmarshal(data, &sn); err != nil {
		return stores, err
	}

	didKeys := stores.DidKeys.(*DidKeys)
	for k, v := range sn.DidKeys {
		didKeys.Register(k, v)
	}
	caps := stores.Capabilities.(*Capabilities)
	for _, v := range sn.Capabilities {
		caps.Put(v)
	}
	revs := stores.Revocations.(*Revocations)
	for k := range sn.Revocations {
		revs.Revoke(k)
	}
	nonces := stores.Nonces.(*Nonces)
	for k, v := range sn.Nonces {
		nonces.InsertIfAbsent(k, v)
	}
	return stores, nil
}
