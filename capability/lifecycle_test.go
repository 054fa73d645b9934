package capability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/capability/invoke"
	"go.zcap.dev/capability/capability/issue"
	"go.zcap.dev/capability/capability/verify"
	ed25519 "go.zcap.dev/capability/crypto/ed25519"
	"go.zcap.dev/capability/did"
	"go.zcap.dev/capability/internal/store/memstore"
)

// principal bundles a generated key pair with its did:key identifier and
// registers the public half in the store under test.
type principal struct {
	DID string
	Key *ed25519.KeyPair
}

func newPrincipal(t *testing.T, stores capability.Stores) principal {
	t.Helper()
	kp, err := ed25519.New()
	require.NoError(t, err)
	pub := kp.PublicKey()
	id, err := did.NewKeyDID(pub[:])
	require.NoError(t, err)
	stores.DidKeys.(*memstore.DidKeys).Register(id, pub[:])
	return principal{DID: id, Key: kp}
}

// TestFullLifecycle walks a root-plus-child delegation chain end to end:
// a resource owner issues a root capability, the root invoker delegates an
// attenuated child, the child's invoker exercises it, a replay of that
// invocation is rejected, and finally the root is revoked and the child
// capability fails verification.
func TestFullLifecycle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	stores := memstore.New()
	clock := capability.SystemClock{}

	owner := newPrincipal(t, stores)
	alice := newPrincipal(t, stores)
	bob := newPrincipal(t, stores)

	root, err := issue.CreateCapability(
		owner.DID, alice.DID,
		[]capability.Action{{Name: "read"}, {Name: "write"}},
		capability.Target{ID: "urn:resource:doc-1", Type: "document"},
		owner.Key, nil, nil, clock,
	)
	require.NoError(err)
	stores.Capabilities.(*memstore.Capabilities).Put(root)

	require.NoError(verify.Capability(root, stores, clock))

	child, err := issue.DelegateCapability(
		root.ID, alice.Key, bob.DID, []string{"read"}, nil, nil, stores, clock,
	)
	require.NoError(err)
	stores.Capabilities.(*memstore.Capabilities).Put(child)

	require.NoError(verify.Capability(child, stores, clock))
	assert.False(child.HasAction("write"), "delegation must not widen authority")

	inv, err := invoke.Capability(child, "read", bob.Key, stores, nil, clock)
	require.NoError(err)
	require.NoError(invoke.Invocation(inv, stores, 0, clock))

	// Replaying the same invocation document must fail.
	err = invoke.Invocation(inv, stores, 0, clock)
	assert.Error(err)

	// Revoking the root must cascade to the child on verification.
	stores.Revocations.(*memstore.Revocations).Revoke(root.ID)
	err = verify.Capability(child, stores, clock)
	assert.Error(err)
}

// TestDelegationCannotWidenActions confirms a delegated capability that
// requests an action outside its parent's set is rejected at issuance.
func TestDelegationCannotWidenActions(t *testing.T) {
	require := require.New(t)
	stores := memstore.New()
	clock := capability.SystemClock{}

	owner := newPrincipal(t, stores)
	alice := newPrincipal(t, stores)
	bob := newPrincipal(t, stores)

	root, err := issue.CreateCapability(
		owner.DID, alice.DID,
		[]capability.Action{{Name: "read"}},
		capability.Target{ID: "urn:resource:doc-1", Type: "document"},
		owner.Key, nil, nil, clock,
	)
	require.NoError(err)
	stores.Capabilities.(*memstore.Capabilities).Put(root)

	_, err = issue.DelegateCapability(
		root.ID, alice.Key, bob.DID, []string{"write"}, nil, nil, stores, clock,
	)
	require.Error(err)
}

// TestExpiredCapabilityFailsVerification confirms a capability past its
// Expires instant fails verification even though its signature is valid.
func TestExpiredCapabilityFailsVerification(t *testing.T) {
	require := require.New(t)
	stores := memstore.New()

	owner := newPrincipal(t, stores)
	alice := newPrincipal(t, stores)

	past := time.Now().UTC().Add(-time.Hour)
	issuedAt := capability.FixedClock{At: past.Add(-time.Hour)}

	root, err := issue.CreateCapability(
		owner.DID, alice.DID,
		[]capability.Action{{Name: "read"}},
		capability.Target{ID: "urn:resource:doc-1", Type: "document"},
		owner.Key, &past, nil, issuedAt,
	)
	require.NoError(err)
	stores.Capabilities.(*memstore.Capabilities).Put(root)

	err = verify.Capability(root, stores, capability.SystemClock{})
	require.Error(err)
}
