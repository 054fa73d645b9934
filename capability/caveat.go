package capability

import (
	"encoding/json"
)

// Recognized caveat type identifiers. The set is closed: evaluating an
// unrecognized type is a verification failure (UnknownCaveat), not a
// runtime extension point — see package capability/caveat.
const (
	CaveatValidUntil      = "ValidUntil"
	CaveatValidAfter      = "ValidAfter"
	CaveatValidWhileTrue  = "ValidWhileTrue"
	CaveatAllowedAction   = "AllowedAction"
	CaveatRequireParam    = "RequireParameter"
	CaveatAllowedNetwork  = "AllowedNetwork"
	CaveatMaxUses         = "MaxUses"
	CaveatTimeSlot        = "TimeSlot"
)

// Caveat is a tagged side condition attached to a capability. Fields holds
// the type-specific members (e.g. "date" for ValidUntil, "actions" for
// AllowedAction); Type is kept separate from Fields in memory but the two
// are merged into a single flat JSON object on the wire, matching the
// "{type: string, ...type-specific fields}" shape of the data model.
type Caveat struct {
	Type   string
	Fields map[string]interface{}
}

// Field returns the named field value and whether it was present.
func (c Caveat) Field(name string) (interface{}, bool) {
	if c.Fields == nil {
		return nil, false
	}
	v, ok := c.Fields[name]
	return v, ok
}

// String returns the named field as a string, or "" if absent or not a
// string.
func (c Caveat) String(name string) string {
	v, ok := c.Field(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// MarshalJSON flattens Type and Fields into a single JSON object.
func (c Caveat) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(c.Fields)+1)
	for k, v := range c.Fields {
		flat[k] = v
	}
	flat["type"] = c.Type
	return json.Marshal(flat)
}

// UnmarshalJSON splits a flat JSON object into Type and Fields.
func (c *Caveat) UnmarshalJSON(data []byte) error {
	var flat map[string]interface{}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	t, _ := flat["type"].(string)
	delete(flat, "type")
	c.Type = t
	c.Fields = flat
	return nil
}
