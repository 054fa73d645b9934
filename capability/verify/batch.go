package verify

import (
	"context"

	"golang.org/x/sync/errgroup"

	"go.zcap.dev/capability/capability"
)

// Many verifies a batch of independent capabilities concurrently. Stores
// are only ever read during verification, so the spec allows this work to
// proceed in parallel as long as the store implementations are safe for
// concurrent reads. Returns the first error encountered, if any; ctx
// allows the caller to cancel the remaining work cooperatively.
func Many(ctx context.Context, caps []*capability.Capability, stores capability.Stores, clock capability.Clock) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, cap := range caps {
		cap := cap
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			return Capability(cap, stores, clock)
		})
	}
	return g.Wait()
}
