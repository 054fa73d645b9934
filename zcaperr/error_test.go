package zcaperr_test

import (
	"testing"

	tdd "github.com/stretchr/testify/assert"

	"go.zcap.dev/capability/zcaperr"
)

func TestIs(t *testing.T) {
	assert := tdd.New(t)
	err := zcaperr.New(zcaperr.Expired, "capability expired")
	assert.True(zcaperr.Is(err, zcaperr.Expired))
	assert.False(zcaperr.Is(err, zcaperr.Revoked))

	kind, ok := zcaperr.KindOf(err)
	assert.True(ok)
	assert.Equal(zcaperr.Expired, kind)
}

func TestWithDetail(t *testing.T) {
	assert := tdd.New(t)
	err := zcaperr.WithDetail(zcaperr.CaveatFailed, "caveat not satisfied", "ValidUntil")
	assert.True(zcaperr.Is(err, zcaperr.CaveatFailed))
	assert.Equal("ValidUntil", zcaperr.DetailOf(err))
}

func TestWrapPreservesKind(t *testing.T) {
	assert := tdd.New(t)
	root := zcaperr.New(zcaperr.UnknownDID, "did not registered")
	wrapped := zcaperr.Wrap(zcaperr.UnknownDID, root, "resolving controller")
	assert.True(zcaperr.Is(wrapped, zcaperr.UnknownDID))
}
