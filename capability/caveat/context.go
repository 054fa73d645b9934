// Package caveat implements the pure evaluator for capability caveats and
// the ancestor-chain walk that computes a capability's effective caveat
// set (its own caveats plus every ancestor's).
package caveat

import (
	"time"

	"go.zcap.dev/capability/capability"
)

// Context carries the optional inputs a caveat evaluation may need. A
// zero-value Context has no action/parameter information, matching bare
// capability verification (spec §4.5 step 4); invocation verification
// additionally sets Action/HasAction and Parameters (spec §4.6 step 3).
type Context struct {
	// Now is the instant evaluation runs at.
	Now time.Time

	// HasAction reports whether this evaluation is scoped to a specific
	// invocation (Action carries its name). When false, caveats that only
	// make sense in an invocation context (AllowedAction, RequireParameter)
	// are vacuously satisfied.
	HasAction bool
	Action    string

	// Parameters are the invocation's parameter values, present only when
	// HasAction is true.
	Parameters map[string]interface{}

	// Revocations backs ValidWhileTrue's conditionId lookup and the
	// capability-id revocation check performed by the verifier.
	Revocations capability.RevocationSet

	// Enforced lists caveat types the caller has enrolled as
	// externally-enforced (see the design notes' open-question
	// resolution): a caveat of one of these types is treated as satisfied
	// without evaluation here, on the understanding that the caller checks
	// it by some out-of-band mechanism.
	Enforced map[string]bool
}

func (c Context) isEnforced(t string) bool {
	return c.Enforced != nil && c.Enforced[t]
}
