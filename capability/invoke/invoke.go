// Package invoke implements the invocation engine: producing signed,
// single-use invocation documents bound to a capability and action, and
// verifying them with freshness and replay checks.
package invoke

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/capability/canon"
	"go.zcap.dev/capability/capability/caveat"
	"go.zcap.dev/capability/capability/verify"
	ed25519 "go.zcap.dev/capability/crypto/ed25519"
	"go.zcap.dev/capability/zcaperr"
)

// DefaultNonceTTL is the freshness window Invocation enforces when
// the caller does not supply one.
const DefaultNonceTTL = 5 * time.Minute

// Capability exercises cap for actionName on behalf of invokerKey,
// producing a signed invocation. parameters may be nil when the action
// takes none.
func Capability(
	cap *capability.Capability,
	actionName string,
	invokerKey *ed25519.KeyPair,
	stores capability.Stores,
	parameters map[string]interface{},
	clock capability.Clock,
) (*capability.Invocation, error) {
	if err := verify.Capability(cap, stores, clock); err != nil {
		return nil, err
	}
	if !cap.HasAction(actionName) {
		return nil, zcaperr.Newf(zcaperr.ActionNotAllowed, "action %q not authorized by this capability", actionName)
	}

	effective, err := caveat.Effective(cap, stores.Capabilities)
	if err != nil {
		return nil, err
	}
	ctx := caveat.Context{
		Now:         clock.Now(),
		HasAction:   true,
		Action:      actionName,
		Parameters:  parameters,
		Revocations: stores.Revocations,
	}
	if err := caveat.EvaluateAll(effective, ctx); err != nil {
		return nil, err
	}

	registered, ok := stores.DidKeys.Get(cap.Invoker.ID)
	if !ok {
		return nil, zcaperr.Newf(zcaperr.UnknownDID, "no public key registered for %q", cap.Invoker.ID)
	}
	pub := invokerKey.PublicKey()
	if !bytesEqual(pub[:], registered) {
		return nil, zcaperr.New(zcaperr.InvokerMismatch, "invoker key does not match the capability's invoker")
	}

	nonce, err := randomNonce()
	if err != nil {
		return nil, zcaperr.Wrap(zcaperr.CanonicalizationFailed, err, "generating nonce")
	}

	inv := &capability.Invocation{
		ID:         "urn:uuid:" + uuid.NewString(),
		Action:     actionName,
		Capability: cap.ID,
		Parameters: parameters,
		Created:    clock.Now(),
		Nonce:      nonce,
	}

	bytesToSign, err := canon.Invocation(inv)
	if err != nil {
		return nil, zcaperr.Wrap(zcaperr.CanonicalizationFailed, err, "canonicalizing invocation")
	}
	sig := invokerKey.Sign(bytesToSign)
	inv.Proof = &capability.Proof{
		ID:                 "urn:uuid:" + uuid.NewString(),
		Type:               capability.ProofTypeEd25519Signature2020,
		Created:            clock.Now(),
		ProofPurpose:       capability.ProofPurposeCapabilityInvocation,
		VerificationMethod: cap.Invoker.ID,
		ProofValue:         base64.RawURLEncoding.EncodeToString(sig),
	}
	return inv, nil
}

// Invocation verifies inv against stores: it resolves and verifies the
// referenced capability, enforces the action/caveat/freshness/replay
// checks, and checks the invoker's signature.
func Invocation(inv *capability.Invocation, stores capability.Stores, nonceTTL time.Duration, clock capability.Clock) error {
	if nonceTTL <= 0 {
		nonceTTL = DefaultNonceTTL
	}

	cap, ok := stores.Capabilities.Get(inv.Capability)
	if !ok {
		return zcaperr.Newf(zcaperr.CapabilityNotFound, "capability %q not found", inv.Capability)
	}
	if err := verify.Capability(cap, stores, clock); err != nil {
		return err
	}
	if !cap.HasAction(inv.Action) {
		return zcaperr.Newf(zcaperr.ActionNotAllowed, "action %q not authorized by this capability", inv.Action)
	}

	effective, err := caveat.Effective(cap, stores.Capabilities)
	if err != nil {
		return err
	}
	now := clock.Now()
	ctx := caveat.Context{
		Now:         now,
		HasAction:   true,
		Action:      inv.Action,
		Parameters:  inv.Parameters,
		Revocations: stores.Revocations,
	}
	if err := caveat.EvaluateAll(effective, ctx); err != nil {
		return err
	}

	if now.Sub(inv.Created).Abs() > nonceTTL {
		return zcaperr.Newf(zcaperr.StaleInvocation, "invocation %q outside the %s freshness window", inv.ID, nonceTTL)
	}

	if stores.Nonces == nil || !stores.Nonces.InsertIfAbsent(inv.Nonce, inv.Created) {
		return zcaperr.Newf(zcaperr.ReplayedNonce, "nonce %q already seen", inv.Nonce)
	}
	stores.Nonces.EvictOlderThan(now.Add(-nonceTTL))

	if inv.Proof == nil {
		return zcaperr.New(zcaperr.SignatureInvalid, "invocation carries no proof")
	}
	if inv.Proof.VerificationMethod != cap.Invoker.ID {
		return zcaperr.New(zcaperr.SignatureInvalid, "proof verification method does not match invoker")
	}
	pub, ok := stores.DidKeys.Get(cap.Invoker.ID)
	if !ok {
		return zcaperr.Newf(zcaperr.UnknownDID, "no public key registered for %q", cap.Invoker.ID)
	}
	sig, err := base64.RawURLEncoding.DecodeString(inv.Proof.ProofValue)
	if err != nil {
		return zcaperr.Wrap(zcaperr.SignatureInvalid, err, "malformed proof value")
	}
	bytesToVerify, err := canon.Invocation(inv)
	if err != nil {
		return zcaperr.Wrap(zcaperr.CanonicalizationFailed, err, "canonicalizing invocation")
	}
	if !ed25519.Verify(bytesToVerify, sig, pub) {
		return zcaperr.New(zcaperr.SignatureInvalid, "signature does not match")
	}
	return nil
}

func randomNonce() (string, error) {
	buf := make([]byte, 16) // 128-bit
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
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
