// Package inflight guards per-key remote calls.
//
// JOIN VS SUPERSEDE:
// A screen fires the same request for two different reasons. Opening a
// post twice in quick succession should not cost two round trips, so Join
// lets the duplicate caller wait on the call that is already running and
// hands both callers the same result. A pull-to-refresh, on the other hand,
// means "the data I asked for a moment ago is stale", so Supersede cancels
// the running call for the key and starts a new one. The older caller gets
// context.Canceled and never sees its page.
package inflight

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Guard tracks the calls currently running per key. The zero value is ready
// to use.
type Guard struct {
	group singleflight.Group

	mu      sync.Mutex
	running map[string]*call
}

type call struct {
	cancel context.CancelFunc
}

// Join runs fn for key unless a Join for key is already running, in which
// case it waits for that call and returns its result. shared reports
// whether the result was shared with another caller.
//
// The shared call belongs to no single caller. fn gets a context that keeps
// the first caller's values but not its cancellation, so a caller that gives
// up returns ctx.Err() without failing the others. fn must bound its own
// run time; the API client does this with its HTTP timeout.
func (g *Guard) Join(ctx context.Context, key string, fn func(context.Context) (any, error)) (v any, shared bool, err error) {
	detached := context.WithoutCancel(ctx)
	ch := g.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Supersede cancels any call for key started by an earlier Supersede and
// runs fn with a fresh context derived from ctx. If a later Supersede
// cancels this one, Supersede returns context.Canceled and discards fn's
// result.
func (g *Guard) Supersede(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	cctx, cancel := context.WithCancel(ctx)

	g.mu.Lock()
	if g.running == nil {
		g.running = make(map[string]*call)
	}
	if prev, ok := g.running[key]; ok {
		prev.cancel()
	}
	me := &call{cancel: cancel}
	g.running[key] = me
	g.mu.Unlock()

	v, err := fn(cctx)

	g.mu.Lock()
	current := g.running[key] == me
	if current {
		delete(g.running, key)
	}
	g.mu.Unlock()
	cancel()

	if !current {
		return nil, context.Canceled
	}
	return v, err
}

// Cancel cancels the call started by Supersede for key, if any.
func (g *Guard) Cancel(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.running[key]; ok {
		c.cancel()
		delete(g.running, key)
	}
}

// Running reports whether a Supersede call for key is in progress.
func (g *Guard) Running(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.running[key]
	return ok
}
