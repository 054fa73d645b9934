// Package canon implements the deterministic byte encoding used as the
// signing and verification input for capabilities and invocations. It is
// deliberately not a full JSON-LD/RDF canonicalization pipeline (no
// URDNA2015): it emits compact JSON with sorted keys and a fixed @context.
package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.zcap.dev/capability/capability"
)

// context is the fixed @context array, order preserved, per the wire
// format every capability and invocation document carries.
var context = []string{
	"https://www.w3.org/ns/security/v2",
	"https://w3id.org/zcap/v1",
}

// Capability produces the canonical byte sequence for cap with its proof
// removed. These are the bytes that get signed at issuance/delegation time
// and re-verified during verification.
func Capability(cap *capability.Capability) ([]byte, error) {
	doc := map[string]interface{}{
		"@context":   context,
		"type":       "Capability",
		"id":         cap.ID,
		"controller": party(cap.Controller),
		"invoker":    party(cap.Invoker),
		"action":     actions(cap.Actions),
		"target":     target(cap.Target),
		"created":    stamp(cap.Created),
	}
	if cap.ParentCapability != "" {
		doc["parentCapability"] = cap.ParentCapability
	}
	if len(cap.Caveats) > 0 {
		doc["caveat"] = caveats(cap.Caveats)
	}
	if cap.Expires != nil {
		doc["expires"] = stamp(*cap.Expires)
	}
	return encode(doc)
}

// Invocation produces the canonical byte sequence for inv with its proof
// removed.
func Invocation(inv *capability.Invocation) ([]byte, error) {
	doc := map[string]interface{}{
		"@context":   context,
		"type":       "Invocation",
		"id":         inv.ID,
		"action":     inv.Action,
		"capability": inv.Capability,
		"created":    stamp(inv.Created),
		"nonce":      inv.Nonce,
	}
	if len(inv.Parameters) > 0 {
		doc["parameters"] = inv.Parameters
	}
	return encode(doc)
}

func party(p capability.Party) map[string]interface{} {
	return map[string]interface{}{
		"id":   p.ID,
		"type": string(p.Type),
	}
}

func target(t capability.Target) map[string]interface{} {
	return map[string]interface{}{
		"id":   t.ID,
		"type": t.Type,
	}
}

func actions(list []capability.Action) []interface{} {
	out := make([]interface{}, len(list))
	for i, a := range list {
		m := map[string]interface{}{"name": a.Name}
		if len(a.Parameters) > 0 {
			m["parameters"] = a.Parameters
		} else {
			m["parameters"] = map[string]interface{}{}
		}
		out[i] = m
	}
	return out
}

func caveats(list []capability.Caveat) []interface{} {
	out := make([]interface{}, len(list))
	for i, c := range list {
		m := make(map[string]interface{}, len(c.Fields)+1)
		for k, v := range c.Fields {
			m[k] = v
		}
		m["type"] = c.Type
		out[i] = m
	}
	return out
}

// stamp formats t as ISO 8601 UTC with trailing Z, truncated to
// millisecond precision. Whole-second instants are rendered without a
// fractional component, matching the wire format illustration in the
// specification.
func stamp(t time.Time) string {
	t = t.UTC().Truncate(time.Millisecond)
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05Z")
	}
	return t.Format("2006-01-02T15:04:05.000Z")
}

// encode serializes doc as compact JSON with lexicographically sorted
// object keys at every level, no HTML-escaping, and no trailing newline.
// Go's encoding/json sorts map[string]... keys by construction, which is
// exactly the ordering rule the canonical form requires; disabling HTML
// escaping keeps the bytes stable across identical logical content.
func encode(doc map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
