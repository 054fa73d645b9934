package capability

import "time"

// DidKeyStore resolves a DID to its registered Ed25519 public key. It is a
// caller-supplied collaborator: the core never resolves a DID over the
// network, it only looks up keys previously registered out of band.
type DidKeyStore interface {
	// Get returns the 32-byte Ed25519 public key registered for did, and
	// false if no key is registered.
	Get(did string) (publicKey []byte, ok bool)
}

// CapabilityStore resolves a capability id to the capability it names,
// used to walk the parent chain during verification.
type CapabilityStore interface {
	// Get returns the capability registered under id, and false if none
	// exists.
	Get(id string) (cap *Capability, ok bool)
}

// RevocationSet reports whether a capability id has been revoked. Mutation
// (adding an id to the set) is performed by the caller out-of-band; the
// core only ever reads it.
type RevocationSet interface {
	// Contains reports whether id has been revoked.
	Contains(id string) bool
}

// NonceStore is the invocation replay guard: a map of recently seen
// invocation nonces to the timestamp at which they were first seen.
type NonceStore interface {
	// InsertIfAbsent atomically records nonce with the given timestamp and
	// reports true if it was newly inserted, false if it was already
	// present (a replay).
	InsertIfAbsent(nonce string, at time.Time) (inserted bool)

	// EvictOlderThan removes every entry whose recorded timestamp is
	// before cutoff, bounding the replay set's size over time.
	EvictOlderThan(cutoff time.Time)
}

// Stores bundles the four state-store collaborators the core consumes.
// It carries no behavior of its own; it exists so call sites don't have
// to thread four separate parameters through every operation.
type Stores struct {
	DidKeys      DidKeyStore
	Capabilities CapabilityStore
	Revocations  RevocationSet
	Nonces       NonceStore
}
