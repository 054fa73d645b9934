package caveat

import (
	"time"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/zcaperr"
)

// Evaluate runs a single caveat against ctx, returning nil if it is
// satisfied or a *zcaperr.Error (kind UnknownCaveat or CaveatFailed)
// describing why it is not.
func Evaluate(c capability.Caveat, ctx Context) error {
	if ctx.isEnforced(c.Type) {
		return nil
	}
	switch c.Type {
	case capability.CaveatValidUntil:
		return evalValidUntil(c, ctx)
	case capability.CaveatValidAfter:
		return evalValidAfter(c, ctx)
	case capability.CaveatValidWhileTrue:
		return evalValidWhileTrue(c, ctx)
	case capability.CaveatAllowedAction:
		return evalAllowedAction(c, ctx)
	case capability.CaveatRequireParam:
		return evalRequireParameter(c, ctx)
	case capability.CaveatTimeSlot:
		return evalTimeSlot(c, ctx)
	case capability.CaveatAllowedNetwork, capability.CaveatMaxUses:
		// Deferred to the caller: the core cannot evaluate environment-
		// dependent conditions. Fails closed unless explicitly enrolled as
		// externally-enforced (handled above), per the design notes.
		return zcaperr.WithDetail(zcaperr.CaveatFailed, "caveat requires external enforcement", c.Type)
	default:
		return zcaperr.WithDetail(zcaperr.UnknownCaveat, "unrecognized caveat type", c.Type)
	}
}

// EvaluateAll evaluates every caveat in list against ctx in declared order
// and returns the first failure, or nil if all are satisfied.
func EvaluateAll(list []capability.Caveat, ctx Context) error {
	for _, c := range list {
		if err := Evaluate(c, ctx); err != nil {
			return err
		}
	}
	return nil
}

func evalValidUntil(c capability.Caveat, ctx Context) error {
	date, err := caveatTime(c, "date")
	if err != nil {
		return err
	}
	if ctx.Now.After(date) {
		return zcaperr.WithDetail(zcaperr.CaveatFailed, "ValidUntil date has passed", c.Type)
	}
	return nil
}

func evalValidAfter(c capability.Caveat, ctx Context) error {
	date, err := caveatTime(c, "date")
	if err != nil {
		return err
	}
	if ctx.Now.Before(date) {
		return zcaperr.WithDetail(zcaperr.CaveatFailed, "ValidAfter date not yet reached", c.Type)
	}
	return nil
}

func evalValidWhileTrue(c capability.Caveat, ctx Context) error {
	cond := c.String("conditionId")
	if cond == "" {
		return zcaperr.WithDetail(zcaperr.CaveatFailed, "ValidWhileTrue missing conditionId", c.Type)
	}
	if ctx.Revocations != nil && ctx.Revocations.Contains(cond) {
		return zcaperr.WithDetail(zcaperr.CaveatFailed, "ValidWhileTrue condition no longer holds", c.Type)
	}
	return nil
}

func evalAllowedAction(c capability.Caveat, ctx Context) error {
	if !ctx.HasAction {
		return nil
	}
	raw, ok := c.Field("actions")
	if !ok {
		return zcaperr.WithDetail(zcaperr.CaveatFailed, "AllowedAction missing actions", c.Type)
	}
	list, ok := raw.([]interface{})
	if !ok {
		return zcaperr.WithDetail(zcaperr.CaveatFailed, "AllowedAction actions malformed", c.Type)
	}
	for _, v := range list {
		if s, ok := v.(string); ok && s == ctx.Action {
			return nil
		}
	}
	return zcaperr.WithDetail(zcaperr.CaveatFailed, "action not in AllowedAction list", c.Type)
}

func evalRequireParameter(c capability.Caveat, ctx Context) error {
	if !ctx.HasAction {
		// No invocation context to check parameters against yet; this
		// caveat is only meaningful once an action is being invoked.
		return nil
	}
	name := c.String("parameter")
	if name == "" {
		return zcaperr.WithDetail(zcaperr.CaveatFailed, "RequireParameter missing parameter", c.Type)
	}
	want, _ := c.Field("value")
	got, ok := ctx.Parameters[name]
	if !ok || !jsonEqual(got, want) {
		return zcaperr.WithDetail(zcaperr.CaveatFailed, "required parameter not satisfied", c.Type)
	}
	return nil
}

func evalTimeSlot(c capability.Caveat, ctx Context) error {
	start, end := c.String("start"), c.String("end")
	if start == "" || end == "" {
		return zcaperr.WithDetail(zcaperr.CaveatFailed, "TimeSlot missing start/end", c.Type)
	}
	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}
	current := now.In(time.Local).Format("15:04")
	if current < start || current > end {
		return zcaperr.WithDetail(zcaperr.CaveatFailed, "outside TimeSlot window", c.Type)
	}
	return nil
}

func caveatTime(c capability.Caveat, field string) (time.Time, error) {
	s := c.String(field)
	if s == "" {
		return time.Time{}, zcaperr.WithDetail(zcaperr.CaveatFailed, "caveat missing "+field, c.Type)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, zcaperr.WithDetail(zcaperr.CaveatFailed, "caveat "+field+" is malformed", c.Type)
	}
	return t, nil
}

// jsonEqual compares two values decoded from JSON (or constructed in Go
// code with equivalent dynamic types) for equality by value.
func jsonEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := toFloat(b)
		return ok && av == bv
	case int:
		bv, ok := toFloat(b)
		return ok && float64(av) == bv
	default:
		return a == b
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
