package canon_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/capability/canon"
)

func TestCapabilityIsDeterministic(t *testing.T) {
	require := require.New(t)
	cap := &capability.Capability{
		ID:         "urn:uuid:1",
		Controller: capability.Party{ID: "did:key:zOwner", Type: capability.ControllerParty},
		Invoker:    capability.Party{ID: "did:key:zAlice", Type: capability.InvokerParty},
		Actions:    []capability.Action{{Name: "read"}, {Name: "write"}},
		Target:     capability.Target{ID: "urn:resource:doc-1", Type: "document"},
		Created:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	a, err := canon.Capability(cap)
	require.NoError(err)
	b, err := canon.Capability(cap)
	require.NoError(err)
	assert.Equal(t, a, b)
}

func TestCapabilityExcludesProof(t *testing.T) {
	require := require.New(t)
	base := &capability.Capability{
		ID:         "urn:uuid:1",
		Controller: capability.Party{ID: "did:key:zOwner", Type: capability.ControllerParty},
		Invoker:    capability.Party{ID: "did:key:zAlice", Type: capability.InvokerParty},
		Actions:    []capability.Action{{Name: "read"}},
		Target:     capability.Target{ID: "urn:resource:doc-1", Type: "document"},
		Created:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	withProof := *base
	withProof.Proof = &capability.Proof{
		Type:               capability.ProofTypeEd25519Signature2020,
		ProofPurpose:       capability.ProofPurposeCapabilityDelegation,
		VerificationMethod: "did:key:zOwner",
		ProofValue:         "deadbeef",
	}

	a, err := canon.Capability(base)
	require.NoError(err)
	b, err := canon.Capability(&withProof)
	require.NoError(err)
	assert.Equal(t, a, b, "proof must not affect the signing bytes")
}

func TestStampOmitsFractionalSecondsWhenZero(t *testing.T) {
	require := require.New(t)
	cap := &capability.Capability{
		ID:         "urn:uuid:1",
		Controller: capability.Party{ID: "did:key:zOwner"},
		Invoker:    capability.Party{ID: "did:key:zAlice"},
		Actions:    []capability.Action{{Name: "read"}},
		Target:     capability.Target{ID: "urn:resource:doc-1"},
		Created:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	out, err := canon.Capability(cap)
	require.NoError(err)
	assert.Contains(t, string(out), `"2026-01-01T12:00:00Z"`)
}

func TestInvocationIncludesNonceAndParameters(t *testing.T) {
	require := require.New(t)
	inv := &capability.Invocation{
		ID:         "urn:uuid:2",
		Action:     "read",
		Capability: "urn:uuid:1",
		Parameters: map[string]interface{}{"path": "/a.txt"},
		Created:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Nonce:      "abc123",
	}
	out, err := canon.Invocation(inv)
	require.NoError(err)
	s := string(out)
	assert.Contains(t, s, `"nonce":"abc123"`)
	assert.Contains(t, s, `"path":"/a.txt"`)
}
