package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go.zcap.dev/capability/log"
	"go.zcap.dev/capability/storage/orm"
)

// nonceDoc records a single seen invocation nonce.
type nonceDoc struct {
	Nonce  string    `bson:"_id"`
	SeenAt time.Time `bson:"seenAt"`
}

// Nonces is a MongoDB-backed capability.NonceStore. InsertIfAbsent relies
// on the collection's unique "_id" index to make the check-and-insert
// atomic under concurrent invocations; a duplicate-key error is read back
// as "already seen" rather than surfaced as a store failure.
type Nonces struct {
	model *orm.Model
	met   *metrics
	log   log.Logger
}

// NewNonces wraps model as a NonceStore. The caller is expected to have
// created the underlying collection with a unique index on "_id" (the
// default MongoDB behavior) and, optionally, a TTL index on "seenAt" as
// a second line of defense against unbounded growth alongside
// EvictOlderThan.
func NewNonces(model *orm.Model, met *metrics, lg log.Logger) *Nonces {
	return &Nonces{model: model, met: met, log: lg}
}

// InsertIfAbsent implements capability.NonceStore. It bypasses the model's
// filter-based API in favor of a direct InsertOne so a duplicate "_id" is
// reported as a distinguishable error rather than silently upserted.
func (s *Nonces) InsertIfAbsent(nonce string, at time.Time) bool {
	start := time.Now()
	_, err := s.model.Collection.InsertOne(context.Background(), nonceDoc{Nonce: nonce, SeenAt: at})
	inserted := err == nil
	reported := err
	if mongo.IsDuplicateKeyError(err) {
		reported = nil // a replay is an expected outcome, not a store failure
	}
	s.met.observe("nonces", "insert_if_absent", reported, time.Since(start).Seconds())
	if reported != nil {
		s.log.WithFields(log.Fields{"nonce": nonce, "error": err}).Error("nonce insertion failed")
	}
	return inserted
}

// EvictOlderThan implements capability.NonceStore.
func (s *Nonces) EvictOlderThan(cutoff time.Time) {
	start := time.Now()
	_, err := s.model.DeleteAll(map[string]interface{}{"seenAt": map[string]interface{}{"$lt": cutoff}})
	s.met.observe("nonces", "evict", err, time.Since(start).Seconds())
	if err != nil {
		s.log.WithFields(log.Fields{"error": err}).Error("nonce eviction failed")
	}
}

// EnsureIndexes creates a TTL index on "seenAt" so documents self-expire
// after ttl even if the caller never calls EvictOlderThan.
func EnsureIndexes(ctx context.Context, col *mongo.Collection, ttl time.Duration) error {
	seconds := int32(ttl.Seconds())
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"seenAt": 1},
		Options: options.Index().SetExpireAfterSeconds(seconds),
	})
	return err
}
