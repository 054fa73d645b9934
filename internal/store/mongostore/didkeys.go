package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"go.zcap.dev/capability/log"
	"go.zcap.dev/capability/storage/orm"
)

// didKeyDoc is the BSON shape a registered public key is persisted as.
type didKeyDoc struct {
	DID       string    `bson:"_id"`
	PublicKey []byte    `bson:"publicKey"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// DidKeys is a MongoDB-backed capability.DidKeyStore. Documents are keyed
// by the DID string itself, so Register is a natural upsert.
type DidKeys struct {
	model *orm.Model
	met   *metrics
	log   log.Logger
}

// NewDidKeys wraps model as a DidKeyStore, reporting operation metrics
// through met and logging failures through lg.
func NewDidKeys(model *orm.Model, met *metrics, lg log.Logger) *DidKeys {
	return &DidKeys{model: model, met: met, log: lg}
}

// Get implements capability.DidKeyStore.
func (s *DidKeys) Get(did string) ([]byte, bool) {
	start := time.Now()
	var out didKeyDoc
	err := s.model.First(map[string]interface{}{"_id": did}, &out)
	s.met.observe("did_keys", "get", filterNotFound(err), time.Since(start).Seconds())
	if err != nil {
		if err != mongo.ErrNoDocuments {
			s.log.WithFields(log.Fields{"did": did, "error": err}).Warning("did key lookup failed")
		}
		return nil, false
	}
	return out.PublicKey, true
}

// Register upserts the public key registered for did.
func (s *DidKeys) Register(did string, pub []byte) error {
	start := time.Now()
	patch := bson.M{"publicKey": pub, "updatedAt": time.Now().UTC()}
	err := s.model.Update(map[string]interface{}{"_id": did}, patch, true)
	s.met.observe("did_keys", "register", err, time.Since(start).Seconds())
	if err != nil {
		s.log.WithFields(log.Fields{"did": did, "error": err}).Error("did key registration failed")
	}
	return err
}

// filterNotFound turns mongo's "no documents" sentinel into a nil error
// for metrics purposes: a miss is an expected outcome, not a failure.
func filterNotFound(err error) error {
	if err == mongo.ErrNoDocuments {
		return nil
	}
	return err
}
