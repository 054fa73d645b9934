// Package zcaperr defines the sealed error taxonomy used across the
// capability engine. Every public operation in the "capability" package
// tree returns errors built with this package, so that callers can branch
// on `Kind` instead of parsing message strings.
package zcaperr

// Kind identifies the category of failure reported by a capability engine
// operation. The set is closed: new values are a source change, never a
// runtime registration, matching the caveat taxonomy's own closed design.
type Kind string

// Recognized error kinds, grouped the way the error handling design groups
// them: input validation, lookup failures, authorization, attenuation,
// temporal, caveat, replay, crypto and lifecycle.
const (
	// Input.
	MalformedDid     Kind = "MalformedDid"
	InvalidPublicKey Kind = "InvalidPublicKey"
	EmptyActions     Kind = "EmptyActions"

	// Lookup.
	UnknownDID         Kind = "UnknownDID"
	CapabilityNotFound Kind = "CapabilityNotFound"
	ParentNotFound     Kind = "ParentNotFound"

	// Authorization.
	DelegationNotPermitted Kind = "DelegationNotPermitted"
	InvokerMismatch        Kind = "InvokerMismatch"
	ActionNotAllowed       Kind = "ActionNotAllowed"
	ActionNotPermitted     Kind = "ActionNotPermitted"

	// Attenuation.
	ExpiryExceedsParent        Kind = "ExpiryExceedsParent"
	TargetMismatch             Kind = "TargetMismatch"
	ControllerNotParentInvoker Kind = "ControllerNotParentInvoker"

	// Temporal.
	Expired          Kind = "Expired"
	NotYetValid      Kind = "NotYetValid"
	StaleInvocation  Kind = "StaleInvocation"

	// Caveat.
	UnknownCaveat Kind = "UnknownCaveat"
	CaveatFailed  Kind = "CaveatFailed"

	// Replay.
	ReplayedNonce Kind = "ReplayedNonce"

	// Crypto.
	SignatureInvalid       Kind = "SignatureInvalid"
	CanonicalizationFailed Kind = "CanonicalizationFailed"

	// Lifecycle.
	Revoked Kind = "Revoked"
)
