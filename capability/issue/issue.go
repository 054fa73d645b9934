// Package issue implements capability issuance: minting root capabilities
// and delegating attenuated children from them.
package issue

import (
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/capability/canon"
	"go.zcap.dev/capability/capability/verify"
	ed25519 "go.zcap.dev/capability/crypto/ed25519"
	"go.zcap.dev/capability/did"
	"go.zcap.dev/capability/zcaperr"
)

// CreateCapability mints a new, self-rooted, signed capability: controller
// grants invoker the listed actions over target, optionally bounded by an
// expiry instant and a set of caveats.
func CreateCapability(
	controllerDID, invokerDID string,
	actions []capability.Action,
	target capability.Target,
	controllerKey *ed25519.KeyPair,
	expires *time.Time,
	caveats []capability.Caveat,
	clock capability.Clock,
) (*capability.Capability, error) {
	if len(actions) == 0 {
		return nil, zcaperr.New(zcaperr.EmptyActions, "a capability must authorize at least one action")
	}
	if err := validDID(controllerDID); err != nil {
		return nil, err
	}
	if err := validDID(invokerDID); err != nil {
		return nil, err
	}

	cap := &capability.Capability{
		ID:         "urn:uuid:" + uuid.NewString(),
		Controller: capability.Party{ID: controllerDID, Type: capability.ControllerParty},
		Invoker:    capability.Party{ID: invokerDID, Type: capability.InvokerParty},
		Actions:    actions,
		Target:     target,
		Caveats:    caveats,
		Expires:    expires,
		Created:    clock.Now(),
	}

	proof, err := sign(cap, controllerKey, controllerDID, capability.ProofPurposeCapabilityDelegation, clock)
	if err != nil {
		return nil, err
	}
	cap.Proof = proof
	return cap, nil
}

// DelegateCapability takes a verified parent capability and a delegator's
// private key and produces a signed child capability that is strictly no
// broader than its parent.
func DelegateCapability(
	parentID string,
	delegatorKey *ed25519.KeyPair,
	newInvokerDID string,
	actionNames []string,
	expires *time.Time,
	caveats []capability.Caveat,
	stores capability.Stores,
	clock capability.Clock,
) (*capability.Capability, error) {
	parent, ok := stores.Capabilities.Get(parentID)
	if !ok {
		return nil, zcaperr.Newf(zcaperr.ParentNotFound, "parent capability %q not found", parentID)
	}
	if err := verify.Capability(parent, stores, clock); err != nil {
		return nil, err
	}

	registered, ok := stores.DidKeys.Get(parent.Invoker.ID)
	if !ok {
		return nil, zcaperr.Newf(zcaperr.UnknownDID, "no public key registered for %q", parent.Invoker.ID)
	}
	pub := delegatorKey.PublicKey()
	if !bytesEqual(pub[:], registered) {
		return nil, zcaperr.New(zcaperr.DelegationNotPermitted,
			"delegator key does not match the public key registered for the parent's invoker")
	}

	if err := validDID(newInvokerDID); err != nil {
		return nil, err
	}

	childActions, err := attenuateActions(parent.Actions, actionNames)
	if err != nil {
		return nil, err
	}

	childExpires := parent.Expires
	if expires != nil {
		if parent.Expires != nil && expires.After(*parent.Expires) {
			return nil, zcaperr.New(zcaperr.ExpiryExceedsParent, "requested expiry exceeds parent capability's")
		}
		childExpires = expires
	}

	child := &capability.Capability{
		ID:               "urn:uuid:" + uuid.NewString(),
		Controller:       capability.Party{ID: parent.Invoker.ID, Type: capability.ControllerParty},
		Invoker:          capability.Party{ID: newInvokerDID, Type: capability.InvokerParty},
		Actions:          childActions,
		Target:           parent.Target,
		ParentCapability: parent.ID,
		Caveats:          caveats,
		Expires:          childExpires,
		Created:          clock.Now(),
	}

	proof, err := sign(child, delegatorKey, parent.Invoker.ID, capability.ProofPurposeCapabilityDelegation, clock)
	if err != nil {
		return nil, err
	}
	child.Proof = proof
	return child, nil
}

// attenuateActions resolves the requested child action names against the
// parent's actions, inheriting the parent's full action set when names is
// nil.
func attenuateActions(parentActions []capability.Action, names []string) ([]capability.Action, error) {
	if names == nil {
		return parentActions, nil
	}
	byName := make(map[string]capability.Action, len(parentActions))
	for _, a := range parentActions {
		byName[a.Name] = a
	}
	out := make([]capability.Action, 0, len(names))
	for _, n := range names {
		a, ok := byName[n]
		if !ok {
			return nil, zcaperr.Newf(zcaperr.ActionNotPermitted, "action %q not present in parent capability", n)
		}
		out = append(out, a)
	}
	return out, nil
}

func sign(
	cap *capability.Capability,
	key *ed25519.KeyPair,
	verificationMethod, purpose string,
	clock capability.Clock,
) (*capability.Proof, error) {
	bytesToSign, err := canon.Capability(cap)
	if err != nil {
		return nil, zcaperr.Wrap(zcaperr.CanonicalizationFailed, err, "canonicalizing capability")
	}
	sig := key.Sign(bytesToSign)
	return &capability.Proof{
		ID:                 "urn:uuid:" + uuid.NewString(),
		Type:               capability.ProofTypeEd25519Signature2020,
		Created:            clock.Now(),
		ProofPurpose:       purpose,
		VerificationMethod: verificationMethod,
		ProofValue:         base64.RawURLEncoding.EncodeToString(sig),
	}, nil
}

func validDID(s string) error {
	if _, err := did.Parse(s); err != nil {
		return zcaperr.Wrap(zcaperr.MalformedDid, err, "invalid DID "+s)
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
