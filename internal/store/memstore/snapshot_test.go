package memstore_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/internal/store/memstore"
)

func TestSnapshotRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	stores := memstore.New()
	stores.DidKeys.(*memstore.DidKeys).Register("did:key:zAlice", []byte{9, 9, 9})
	stores.Capabilities.(*memstore.Capabilities).Put(&capability.Capability{ID: "urn:uuid:root"})
	stores.Revocations.(*memstore.Revocations).Revoke("urn:uuid:revoked")
	stores.Nonces.(*memstore.Nonces).InsertIfAbsent("nonce-1", time.Now().UTC())

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(memstore.Snapshot(stores).Save(path))

	restored, err := memstore.Load(path)
	require.NoError(err)

	pub, ok := restored.DidKeys.Get("did:key:zAlice")
	assert.True(ok)
	assert.Equal([]byte{9, 9, 9}, pub)

	cap, ok := restored.Capabilities.Get("urn:uuid:root")
	assert.True(ok)
	assert.Equal("urn:uuid:root", cap.ID)

	assert.True(restored.Revocations.Contains("urn:uuid:revoked"))
	assert.False(restored.Nonces.InsertIfAbsent("nonce-1", time.Now().UTC()))
}

func TestLoadMissingFileIsEmptyState(t *testing.T) {
	require := require.New(t)
	stores, err := memstore.Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(err)
	_, ok := stores.DidKeys.Get("did:key:zNobody")
	require.False(ok)
}
