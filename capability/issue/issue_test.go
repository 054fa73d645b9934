package issue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/capability/issue"
	ed25519 "go.zcap.dev/capability/crypto/ed25519"
	"go.zcap.dev/capability/did"
	"go.zcap.dev/capability/internal/store/memstore"
)

func newDID(t *testing.T) (string, *ed25519.KeyPair) {
	t.Helper()
	kp, err := ed25519.New()
	require.NoError(t, err)
	pub := kp.PublicKey()
	id, err := did.NewKeyDID(pub[:])
	require.NoError(t, err)
	return id, kp
}

func TestCreateCapabilityRejectsEmptyActions(t *testing.T) {
	owner, ownerKey := newDID(t)
	alice, _ := newDID(t)
	_, err := issue.CreateCapability(
		owner, alice, nil,
		capability.Target{ID: "urn:resource:x"},
		ownerKey, nil, nil, capability.SystemClock{},
	)
	assert.Error(t, err)
}

func TestCreateCapabilityRejectsMalformedDID(t *testing.T) {
	_, ownerKey := newDID(t)
	_, err := issue.CreateCapability(
		"not-a-did", "also-not-a-did",
		[]capability.Action{{Name: "read"}},
		capability.Target{ID: "urn:resource:x"},
		ownerKey, nil, nil, capability.SystemClock{},
	)
	assert.Error(t, err)
}

func TestDelegateCapabilityRejectsWrongSigner(t *testing.T) {
	require := require.New(t)
	stores := memstore.New()
	clock := capability.SystemClock{}

	owner, ownerKey := newDID(t)
	alice, _ := newDID(t)
	bob, _ := newDID(t)

	root, err := issue.CreateCapability(
		owner, alice,
		[]capability.Action{{Name: "read"}},
		capability.Target{ID: "urn:resource:x"},
		ownerKey, nil, nil, clock,
	)
	require.NoError(err)
	ownerPub := ownerKey.PublicKey()
	stores.DidKeys.(*memstore.DidKeys).Register(owner, ownerPub[:])
	stores.Capabilities.(*memstore.Capabilities).Put(root)

	// alice has no registered key, but her did:key identifier resolves to
	// her real public key, so the impostor's key fails the match.
	impostorKey, err := ed25519.New()
	require.NoError(err)

	_, err = issue.DelegateCapability(root.ID, impostorKey, bob, nil, nil, nil, stores, clock)
	assert.Error(t, err)
}

func TestDelegateCapabilityCapsExpiry(t *testing.T) {
	require := require.New(t)
	stores := memstore.New()
	clock := capability.SystemClock{}

	owner, ownerKey := newDID(t)
	alice, aliceKey := newDID(t)
	bob, _ := newDID(t)

	rootExpires := time.Now().Add(time.Hour)
	root, err := issue.CreateCapability(
		owner, alice,
		[]capability.Action{{Name: "read"}},
		capability.Target{ID: "urn:resource:x"},
		ownerKey, &rootExpires, nil, clock,
	)
	require.NoError(err)
	stores.Capabilities.(*memstore.Capabilities).Put(root)
	pub := aliceKey.PublicKey()
	stores.DidKeys.(*memstore.DidKeys).Register(alice, pub[:])

	tooLate := rootExpires.Add(time.Hour)
	_, err = issue.DelegateCapability(root.ID, aliceKey, bob, nil, &tooLate, nil, stores, clock)
	assert.Error(t, err)
}
