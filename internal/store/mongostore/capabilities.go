package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/log"
	"go.zcap.dev/capability/storage/orm"
)

// Capabilities is a MongoDB-backed capability.CapabilityStore. Documents
// are keyed by the capability's own ID (its "_id" bson tag, see
// capability.Capability), so a round-trip through this store preserves
// the exact identity the core already uses for parent-chain lookups.
type Capabilities struct {
	model *orm.Model
	met   *metrics
	log   log.Logger
}

// NewCapabilities wraps model as a CapabilityStore.
func NewCapabilities(model *orm.Model, met *metrics, lg log.Logger) *Capabilities {
	return &Capabilities{model: model, met: met, log: lg}
}

// Get implements capability.CapabilityStore.
func (s *Capabilities) Get(id string) (*capability.Capability, bool) {
	start := time.Now()
	var out capability.Capability
	err := s.model.First(map[string]interface{}{"_id": id}, &out)
	s.met.observe("capabilities", "get", filterNotFound(err), time.Since(start).Seconds())
	if err != nil {
		if err != mongo.ErrNoDocuments {
			s.log.WithFields(log.Fields{"id": id, "error": err}).Warning("capability lookup failed")
		}
		return nil, false
	}
	return &out, true
}

// Put persists cap, replacing any document previously stored under the
// same ID. A full document replace is used instead of the model's $set
// based Update so stale fields from a previous version of a capability
// never linger.
func (s *Capabilities) Put(cap *capability.Capability) error {
	start := time.Now()
	upsert := true
	_, err := s.model.Collection.ReplaceOne(
		context.Background(),
		bson.M{"_id": cap.ID},
		cap,
		&options.ReplaceOptions{Upsert: &upsert},
	)
	s.met.observe("capabilities", "put", err, time.Since(start).Seconds())
	if err != nil {
		s.log.WithFields(log.Fields{"id": cap.ID, "error": err}).Error("capability persistence failed")
	}
	return err
}
