// Package capability implements an Authorization Capability (ZCAP-LD style)
// engine: issuance, delegation, invocation and verification of attenuable,
// Ed25519-signed capability tokens. The package is a library of pure
// functions over caller-supplied state stores (see stores.go); it keeps no
// internal state and starts no goroutines.
package capability

import "time"

// PartyType distinguishes the two roles a DID can play on a capability.
type PartyType string

// Recognized party types.
const (
	ControllerParty PartyType = "Controller"
	InvokerParty    PartyType = "Invoker"
)

// Party identifies a principal by DID and its role on a capability.
type Party struct {
	ID   string    `json:"id" bson:"id"`
	Type PartyType `json:"type" bson:"type"`
}

// Action names an operation a capability authorizes, together with the
// parameter values declared authorized at issuance time.
type Action struct {
	Name       string                 `json:"name" bson:"name"`
	Parameters map[string]interface{} `json:"parameters" bson:"parameters"`
}

// Target identifies the resource a capability grants authority over.
type Target struct {
	ID   string `json:"id" bson:"id"`
	Type string `json:"type" bson:"type"`
}

// Recognized proof constants.
const (
	ProofTypeEd25519Signature2020    = "Ed25519Signature2020"
	ProofPurposeCapabilityDelegation = "capabilityDelegation"
	ProofPurposeCapabilityInvocation = "capabilityInvocation"
)

// Proof is the signature block bound to a capability or an invocation.
type Proof struct {
	ID                 string    `json:"id,omitempty" bson:"id,omitempty"`
	Type               string    `json:"type" bson:"type"`
	Created            time.Time `json:"created" bson:"created"`
	Domain             string    `json:"domain,omitempty" bson:"domain,omitempty"`
	Challenge          string    `json:"challenge,omitempty" bson:"challenge,omitempty"`
	Nonce              string    `json:"nonce,omitempty" bson:"nonce,omitempty"`
	ProofPurpose       string    `json:"proofPurpose" bson:"proofPurpose"`
	VerificationMethod string    `json:"verificationMethod" bson:"verificationMethod"`
	ProofValue         string    `json:"proofValue" bson:"proofValue"`
}

// Capability is a signed, attenuable grant of authority over a target,
// held by invoker and (when present) rooted in a parent capability.
type Capability struct {
	ID               string     `json:"id" bson:"_id"`
	Controller       Party      `json:"controller" bson:"controller"`
	Invoker          Party      `json:"invoker" bson:"invoker"`
	Actions          []Action   `json:"actions" bson:"actions"`
	Target           Target     `json:"target" bson:"target"`
	ParentCapability string     `json:"parentCapability,omitempty" bson:"parentCapability,omitempty"`
	Caveats          []Caveat   `json:"caveats,omitempty" bson:"caveats,omitempty"`
	Expires          *time.Time `json:"expires,omitempty" bson:"expires,omitempty"`
	Created          time.Time  `json:"created" bson:"created"`
	Proof            *Proof     `json:"proof,omitempty" bson:"proof,omitempty"`
}

// IsRoot reports whether the capability has no parent and is therefore
// self-rooted; its controller is taken to be the resource's authority.
func (c *Capability) IsRoot() bool {
	return c.ParentCapability == ""
}

// ActionNames returns the name of every action the capability authorizes.
func (c *Capability) ActionNames() []string {
	names := make([]string, len(c.Actions))
	for i, a := range c.Actions {
		names[i] = a.Name
	}
	return names
}

// HasAction reports whether the capability authorizes the named action.
func (c *Capability) HasAction(name string) bool {
	for _, a := range c.Actions {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Invocation is a signed, time-bound, single-use intent to exercise a
// capability for a specific action.
type Invocation struct {
	ID         string                 `json:"id" bson:"_id"`
	Action     string                 `json:"action" bson:"action"`
	Capability string                 `json:"capability" bson:"capability"`
	Parameters map[string]interface{} `json:"parameters,omitempty" bson:"parameters,omitempty"`
	Created    time.Time              `json:"created" bson:"created"`
	Nonce      string                 `json:"nonce" bson:"nonce"`
	Proof      *Proof                 `json:"proof,omitempty" bson:"proof,omitempty"`
}
