package invoke_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/capability/invoke"
	"go.zcap.dev/capability/capability/issue"
	ed25519 "go.zcap.dev/capability/crypto/ed25519"
	"go.zcap.dev/capability/did"
	"go.zcap.dev/capability/internal/store/memstore"
)

type fixture struct {
	stores capability.Stores
	clock  capability.Clock
	owner  string
	alice  string
	aliceK *ed25519.KeyPair
	cap    *capability.Capability
}

func newFixture(t *testing.T, actions []capability.Action) fixture {
	t.Helper()
	require := require.New(t)
	stores := memstore.New()
	clock := capability.SystemClock{}

	ownerKey, err := ed25519.New()
	require.NoError(err)
	ownerPub := ownerKey.PublicKey()
	owner, err := did.NewKeyDID(ownerPub[:])
	require.NoError(err)

	aliceKey, err := ed25519.New()
	require.NoError(err)
	alicePub := aliceKey.PublicKey()
	alice, err := did.NewKeyDID(alicePub[:])
	require.NoError(err)
	stores.DidKeys.(*memstore.DidKeys).Register(alice, alicePub[:])

	cap, err := issue.CreateCapability(
		owner, alice, actions,
		capability.Target{ID: "urn:resource:doc-1", Type: "document"},
		ownerKey, nil, nil, clock,
	)
	require.NoError(err)
	stores.Capabilities.(*memstore.Capabilities).Put(cap)

	return fixture{stores: stores, clock: clock, owner: owner, alice: alice, aliceK: aliceKey, cap: cap}
}

func TestInvokeAndVerifyRoundTrip(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, []capability.Action{{Name: "read"}})

	inv, err := invoke.Capability(f.cap, "read", f.aliceK, f.stores, nil, f.clock)
	require.NoError(err)
	require.NoError(invoke.Invocation(inv, f.stores, 0, f.clock))
}

func TestInvokeRejectsUnauthorizedAction(t *testing.T) {
	f := newFixture(t, []capability.Action{{Name: "read"}})
	_, err := invoke.Capability(f.cap, "delete", f.aliceK, f.stores, nil, f.clock)
	assert.Error(t, err)
}

func TestInvokeRejectsWrongKey(t *testing.T) {
	f := newFixture(t, []capability.Action{{Name: "read"}})
	impostor, err := ed25519.New()
	require.NoError(t, err)
	_, err = invoke.Capability(f.cap, "read", impostor, f.stores, nil, f.clock)
	assert.Error(t, err)
}

func TestInvocationRejectsReplay(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, []capability.Action{{Name: "read"}})

	inv, err := invoke.Capability(f.cap, "read", f.aliceK, f.stores, nil, f.clock)
	require.NoError(err)
	require.NoError(invoke.Invocation(inv, f.stores, 0, f.clock))

	err = invoke.Invocation(inv, f.stores, 0, f.clock)
	assert.Error(t, err)
}

func TestInvocationRejectsStaleDocument(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, []capability.Action{{Name: "read"}})

	inv, err := invoke.Capability(f.cap, "read", f.aliceK, f.stores, nil, f.clock)
	require.NoError(err)

	later := capability.FixedClock{At: inv.Created.Add(time.Hour)}
	err = invoke.Invocation(inv, f.stores, time.Minute, later)
	assert.Error(t, err)
}
