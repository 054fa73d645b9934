// Package mongostore implements the capability engine's four state-store
// interfaces against MongoDB collections, built on top of the storage/orm
// operator and model wrapper. It is a reference collaborator: the
// capability/* packages never import it directly, consistent with the core
// treating stores as caller-supplied abstractions.
package mongostore

import (
	"github.com/prometheus/client_golang/prometheus"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/log"
	"go.zcap.dev/capability/storage/orm"
)

// Collections names the four collections New expects to find (or create)
// in the target database.
type Collections struct {
	DidKeys      string
	Capabilities string
	Revocations  string
	Nonces       string
}

// DefaultCollections names the collections used when the caller does not
// override them.
var DefaultCollections = Collections{
	DidKeys:      "did_keys",
	Capabilities: "capabilities",
	Revocations:  "revocations",
	Nonces:       "nonces",
}

// New bundles MongoDB-backed implementations of the four store interfaces
// into a capability.Stores value, instrumented with reg (nil to skip
// metrics registration) and logging through lg. Models are obtained through
// op, which owns the underlying client connection.
func New(op *orm.Operator, cols Collections, reg prometheus.Registerer, lg log.Logger) capability.Stores {
	met := newMetrics(reg)
	return capability.Stores{
		DidKeys:      NewDidKeys(op.Model(cols.DidKeys), met, lg),
		Capabilities: NewCapabilities(op.Model(cols.Capabilities), met, lg),
		Revocations:  NewRevocations(op.Model(cols.Revocations), met, lg),
		Nonces:       NewNonces(op.Model(cols.Nonces), met, lg),
	}
}
