// Package verify implements recursive verification of capabilities along
// their parent chain, enforcing the attenuation invariants and
// running the caveat evaluator and Ed25519 signature check at each level.
package verify

import (
	"encoding/base64"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/capability/canon"
	"go.zcap.dev/capability/capability/caveat"
	ed25519 "go.zcap.dev/capability/crypto/ed25519"
	"go.zcap.dev/capability/zcaperr"
)

// Capability verifies cap against stores, walking the parent chain
// depth-first from leaf to root. On the first failure it returns that
// failure's reason unmodified; ancestors' successful verifications are
// not reported.
func Capability(cap *capability.Capability, stores capability.Stores, clock capability.Clock) error {
	now := clock.Now()

	// 1. Revocation.
	if stores.Revocations != nil && stores.Revocations.Contains(cap.ID) {
		return zcaperr.Newf(zcaperr.Revoked, "capability %q has been revoked", cap.ID)
	}

	// 2. Expiry.
	if cap.Expires != nil && now.After(*cap.Expires) {
		return zcaperr.Newf(zcaperr.Expired, "capability %q expired at %s", cap.ID, cap.Expires)
	}

	// 3. Parent chain and attenuation invariants.
	if !cap.IsRoot() {
		parent, ok := stores.Capabilities.Get(cap.ParentCapability)
		if !ok {
			return zcaperr.Newf(zcaperr.ParentNotFound, "parent capability %q not found", cap.ParentCapability)
		}
		if err := Capability(parent, stores, clock); err != nil {
			return err
		}
		if err := checkAttenuation(cap, parent); err != nil {
			return err
		}
	}

	// 4. Own caveats (ancestors' caveats are covered transitively by the
	// recursive call above evaluating their own caveats in turn).
	ctx := caveat.Context{Now: now, Revocations: stores.Revocations}
	if err := caveat.EvaluateAll(cap.Caveats, ctx); err != nil {
		return err
	}

	// 5 & 6. Signature.
	return checkSignature(cap, stores)
}

// checkAttenuation enforces invariants 3-6 of a capability relative to
// its direct parent.
func checkAttenuation(cap, parent *capability.Capability) error {
	// Invariant 3: delegation continuity.
	if cap.Controller.ID != parent.Invoker.ID {
		return zcaperr.Newf(zcaperr.ControllerNotParentInvoker,
			"controller %q does not match parent invoker %q", cap.Controller.ID, parent.Invoker.ID)
	}

	// Invariant 4: action attenuation.
	parentActions := make(map[string]capability.Action, len(parent.Actions))
	for _, a := range parent.Actions {
		parentActions[a.Name] = a
	}
	for _, a := range cap.Actions {
		pa, ok := parentActions[a.Name]
		if !ok {
			return zcaperr.Newf(zcaperr.ActionNotPermitted, "action %q not present in parent capability", a.Name)
		}
		for k, v := range a.Parameters {
			if pv, ok := pa.Parameters[k]; ok && !equalValue(v, pv) {
				return zcaperr.Newf(zcaperr.ActionNotPermitted,
					"action %q parameter %q diverges from parent", a.Name, k)
			}
		}
	}

	// Invariant 5: temporal attenuation.
	if cap.Expires != nil && parent.Expires != nil && cap.Expires.After(*parent.Expires) {
		return zcaperr.Newf(zcaperr.ExpiryExceedsParent,
			"capability expiry %s exceeds parent expiry %s", cap.Expires, parent.Expires)
	}
	if cap.Created.Before(parent.Created) {
		return zcaperr.New(zcaperr.ExpiryExceedsParent, "capability created before its parent")
	}

	// Invariant 6: target identity.
	if cap.Target.ID != parent.Target.ID {
		return zcaperr.Newf(zcaperr.TargetMismatch, "target %q does not match parent target %q",
			cap.Target.ID, parent.Target.ID)
	}
	return nil
}

// checkSignature resolves the controller's public key and re-verifies
// the Ed25519 signature over the capability's canonical bytes.
func checkSignature(cap *capability.Capability, stores capability.Stores) error {
	if cap.Proof == nil {
		return zcaperr.New(zcaperr.SignatureInvalid, "capability carries no proof")
	}
	if cap.Proof.VerificationMethod != cap.Controller.ID {
		return zcaperr.New(zcaperr.SignatureInvalid, "proof verification method does not match controller")
	}
	pub, ok := stores.DidKeys.Get(cap.Controller.ID)
	if !ok {
		return zcaperr.Newf(zcaperr.UnknownDID, "no public key registered for %q", cap.Controller.ID)
	}
	if len(pub) != 32 {
		return zcaperr.Newf(zcaperr.InvalidPublicKey, "public key for %q has invalid length", cap.Controller.ID)
	}
	sig, err := base64.RawURLEncoding.DecodeString(cap.Proof.ProofValue)
	if err != nil {
		return zcaperr.Wrap(zcaperr.SignatureInvalid, err, "malformed proof value")
	}
	bytesToVerify, err := canon.Capability(cap)
	if err != nil {
		return zcaperr.Wrap(zcaperr.CanonicalizationFailed, err, "canonicalizing capability")
	}
	if !ed25519.Verify(bytesToVerify, sig, pub) {
		return zcaperr.New(zcaperr.SignatureInvalid, "signature does not match")
	}
	return nil
}

func equalValue(a, b interface{}) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af == bf
	}
	return a == b
}
