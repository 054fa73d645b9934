package caveat

import (
	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/zcaperr"
)

// Effective returns the full set of caveats that apply to cap: its own
// caveats plus every ancestor's, walking the parentCapability chain via
// stores. Caveats are ordered root-first, so the first failure reported
// by EvaluateAll reflects the oldest restriction in the chain, matching
// how authority narrows as delegation proceeds.
func Effective(cap *capability.Capability, stores capability.CapabilityStore) ([]capability.Caveat, error) {
	chain, err := ancestry(cap, stores)
	if err != nil {
		return nil, err
	}
	var all []capability.Caveat
	for i := len(chain) - 1; i >= 0; i-- {
		all = append(all, chain[i].Caveats...)
	}
	return all, nil
}

// ancestry returns cap followed by its parent, grandparent, and so on up
// to the root, in leaf-to-root order.
func ancestry(cap *capability.Capability, stores capability.CapabilityStore) ([]*capability.Capability, error) {
	chain := []*capability.Capability{cap}
	cur := cap
	for !cur.IsRoot() {
		parent, ok := stores.Get(cur.ParentCapability)
		if !ok {
			return nil, zcaperr.Newf(zcaperr.ParentNotFound, "parent capability %q not found", cur.ParentCapability)
		}
		chain = append(chain, parent)
		cur = parent
	}
	return chain, nil
}
