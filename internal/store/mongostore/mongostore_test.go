package mongostore_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/internal/store/mongostore"
	"go.zcap.dev/capability/log"
	"go.zcap.dev/capability/storage/orm"
)

func connect(t *testing.T) *orm.Operator {
	t.Helper()
	conf := options.Client()
	conf.ApplyURI("mongodb://localhost:27017/?tls=false")
	conf.SetDirect(true)
	conf.SetReadPreference(readpref.Primary())

	op, err := orm.NewOperator("zcap_test_"+uuid.NewString(), conf)
	require.NoError(t, err)
	if err := op.Ping(); err != nil {
		t.Skip("unavailable MongoDB server:", err.Error())
	}
	return op
}

func TestDidKeysRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	op := connect(t)
	stores := mongostore.New(op, mongostore.DefaultCollections, nil, log.Discard())

	did := "did:key:z" + uuid.NewString()
	_, ok := stores.DidKeys.Get(did)
	assert.False(ok)

	store := stores.DidKeys.(*mongostore.DidKeys)
	require.NoError(store.Register(did, []byte{1, 2, 3}))

	pub, ok := stores.DidKeys.Get(did)
	assert.True(ok)
	assert.Equal([]byte{1, 2, 3}, pub)
}

func TestCapabilitiesRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	op := connect(t)
	stores := mongostore.New(op, mongostore.DefaultCollections, nil, log.Discard())

	cap := &capability.Capability{
		ID:      "urn:uuid:" + uuid.NewString(),
		Created: time.Now().UTC(),
	}
	store := stores.Capabilities.(*mongostore.Capabilities)
	require.NoError(store.Put(cap))

	got, ok := stores.Capabilities.Get(cap.ID)
	assert.True(ok)
	assert.Equal(cap.ID, got.ID)
}

func TestRevocationsRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	op := connect(t)
	stores := mongostore.New(op, mongostore.DefaultCollections, nil, log.Discard())

	id := "urn:uuid:" + uuid.NewString()
	assert.False(stores.Revocations.Contains(id))

	store := stores.Revocations.(*mongostore.Revocations)
	require.NoError(store.Revoke(id))
	assert.True(stores.Revocations.Contains(id))
}

func TestNoncesRejectReplay(t *testing.T) {
	assert := assert.New(t)
	op := connect(t)
	stores := mongostore.New(op, mongostore.DefaultCollections, nil, log.Discard())

	nonce := uuid.NewString()
	now := time.Now().UTC()
	assert.True(stores.Nonces.InsertIfAbsent(nonce, now))
	assert.False(stores.Nonces.InsertIfAbsent(nonce, now))

	stores.Nonces.EvictOlderThan(now.Add(time.Second))
	assert.True(stores.Nonces.InsertIfAbsent(nonce, now), "entry should have been evicted")
}
