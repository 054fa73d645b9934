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

// revocationDoc records a single revoked capability ID.
type revocationDoc struct {
	CapabilityID string    `bson:"_id"`
	RevokedAt    time.Time `bson:"revokedAt"`
}

// Revocations is a MongoDB-backed capability.RevocationSet.
type Revocations struct {
	model *orm.Model
	met   *metrics
	log   log.Logger
}

// NewRevocations wraps model as a RevocationSet.
func NewRevocations(model *orm.Model, met *metrics, lg log.Logger) *Revocations {
	return &Revocations{model: model, met: met, log: lg}
}

// Contains implements capability.RevocationSet.
func (s *Revocations) Contains(id string) bool {
	start := time.Now()
	var out revocationDoc
	err := s.model.First(map[string]interface{}{"_id": id}, &out)
	s.met.observe("revocations", "contains", filterNotFound(err), time.Since(start).Seconds())
	if err != nil {
		if err != mongo.ErrNoDocuments {
			s.log.WithFields(log.Fields{"id": id, "error": err}).Warning("revocation lookup failed")
		}
		return false
	}
	return true
}

// Revoke records id as revoked. Revoking an already-revoked ID is a no-op;
// $setOnInsert is used directly against the underlying collection so a
// repeat revocation never overwrites the original revokedAt timestamp,
// a guarantee the model's unconditional $set based Update does not offer.
func (s *Revocations) Revoke(id string) error {
	start := time.Now()
	upsert := true
	_, err := s.model.Collection.UpdateOne(
		context.Background(),
		bson.M{"_id": id},
		bson.M{"$setOnInsert": revocationDoc{CapabilityID: id, RevokedAt: time.Now().UTC()}},
		&options.UpdateOptions{Upsert: &upsert},
	)
	s.met.observe("revocations", "revoke", err, time.Since(start).Seconds())
	if err != nil {
		s.log.WithFields(log.Fields{"id": id, "error": err}).Error("revocation failed")
	}
	return err
}
