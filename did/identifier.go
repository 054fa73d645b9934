package did

import (
	"fmt"
	"net/url"
	"strings"
)

// Base prefix according to the specification.
const prefix = "did:"

// Identifier represents a parsed, syntactically valid DID. The capability
// engine never resolves a DID to a document; it only uses the parsed
// identifier to validate its shape and to key lookups into a DidKeyStore.
// https://www.w3.org/TR/did-core/#did-syntax
type Identifier struct {
	data *identifierData
}

type identifierData struct {
	Method       string
	IDStrings    []string
	ID           string
	PathSegments []string
	Path         string
	Query        string
	Fragment     string
	Params       []Param
}

// Method returns the DID method name, e.g. "example" for "did:example:alice".
func (d *Identifier) Method() string {
	return d.data.Method
}

// ID returns the method-specific identifier segment.
func (d *Identifier) ID() string {
	return d.data.ID
}

// Path returns the DID path segment, if present.
func (d *Identifier) Path() string {
	return d.data.Path
}

// Fragment returns the DID fragment segment, if present.
func (d *Identifier) Fragment() string {
	return d.data.Fragment
}

// RawQuery returns the unparsed DID query segment, if present.
func (d *Identifier) RawQuery() string {
	return d.data.Query
}

// Query parses and returns the DID query segment.
func (d *Identifier) Query() (url.Values, error) {
	return url.ParseQuery(d.data.Query)
}

// DID returns the "did:method:id" form, without path, query or fragment.
func (d *Identifier) DID() string {
	return fmt.Sprintf("%s%s:%s", prefix, d.data.Method, d.data.ID)
}

// String returns the full textual representation of the identifier,
// including any path, query and fragment components.
func (d *Identifier) String() string {
	val := d.DID()
	for _, p := range d.data.Params {
		val += ";" + p.String()
	}
	if d.data.Path != "" {
		val += "/" + d.data.Path
	}
	if d.data.Query != "" {
		val += "?" + d.data.Query
	}
	if d.data.Fragment != "" {
		val += "#" + d.data.Fragment
	}
	return val
}

// IsURL reports whether the identifier carries a path, query, fragment or
// parameter, making it a DID URL rather than a bare DID.
func (d *Identifier) IsURL() bool {
	return d.data.Path != "" || d.data.Query != "" || d.data.Fragment != "" || len(d.data.Params) > 0
}

// HasPrefix reports whether the given string begins with the "did:" scheme.
func HasPrefix(s string) bool {
	return strings.HasPrefix(s, prefix)
}
