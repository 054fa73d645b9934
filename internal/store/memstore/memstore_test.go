package memstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/internal/store/memstore"
)

func TestDidKeys(t *testing.T) {
	assert := assert.New(t)
	store := memstore.NewDidKeys()
	_, ok := store.Get("did:key:none")
	assert.False(ok)

	store.Register("did:key:zAbc", []byte{1, 2, 3})
	pub, ok := store.Get("did:key:zAbc")
	assert.True(ok)
	assert.Equal([]byte{1, 2, 3}, pub)
}

func TestCapabilities(t *testing.T) {
	assert := assert.New(t)
	store := memstore.NewCapabilities()
	_, ok := store.Get("urn:uuid:missing")
	assert.False(ok)

	cap := &capability.Capability{ID: "urn:uuid:root"}
	store.Put(cap)
	got, ok := store.Get("urn:uuid:root")
	assert.True(ok)
	assert.Equal(cap, got)
	assert.Equal(1, store.Len())
}

func TestRevocations(t *testing.T) {
	assert := assert.New(t)
	store := memstore.NewRevocations()
	assert.False(store.Contains("urn:uuid:x"))
	store.Revoke("urn:uuid:x")
	assert.True(store.Contains("urn:uuid:x"))
}

func TestNonces(t *testing.T) {
	assert := assert.New(t)
	store := memstore.NewNonces()
	now := time.Now().UTC()

	assert.True(store.InsertIfAbsent("n1", now))
	assert.False(store.InsertIfAbsent("n1", now), "replay must be rejected")
	assert.Equal(1, store.Len())

	store.EvictOlderThan(now.Add(time.Second))
	assert.Equal(0, store.Len())
}

func TestNew(t *testing.T) {
	stores := memstore.New()
	assert.NotNil(t, stores.DidKeys)
	assert.NotNil(t, stores.Capabilities)
	assert.NotNil(t, stores.Revocations)
	assert.NotNil(t, stores.Nonces)
}
