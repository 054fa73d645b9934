package did_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.zcap.dev/capability/did"
)

func TestKeyDIDRoundTrip(t *testing.T) {
	require := require.New(t)
	pub := make([]byte, 32)
	for i := range pub {
		pub[i] = byte(i)
	}

	id, err := did.NewKeyDID(pub)
	require.NoError(err)
	assert.Regexp(t, `^did:key:z`, id)

	got, err := did.ResolveKeyDID(id)
	require.NoError(err)
	assert.Equal(t, pub, got)
}

func TestKeyDIDRejectsWrongKeyLength(t *testing.T) {
	_, err := did.NewKeyDID([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestResolveKeyDIDRejectsOtherMethods(t *testing.T) {
	_, err := did.ResolveKeyDID("did:example:alice")
	assert.Error(t, err)
}
