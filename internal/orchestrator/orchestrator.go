// Package orchestrator fans a subject out to the selected adapters
// concurrently and assembles the results deterministically. Adapter failures
// are diagnostics, never lookup failures: a partial evidence set is still a
// successful run.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"phonescope/internal/cache"
	"phonescope/internal/ratelimit"
	"phonescope/internal/reputation"
	"phonescope/pkg/types"
)

type Config struct {
	// CallTimeout bounds a single adapter lookup.
	CallTimeout time.Duration
	// Deadline bounds the whole fan-out. Adapters still running when it
	// expires are abandoned and reported as diagnostics.
	Deadline time.Duration
	// TTL applies to cached evidence writes.
	TTL time.Duration
}

// Orchestrator runs adapters against a cache and a per-host limiter. A nil
// store disables caching; every lookup is then a miss.
type Orchestrator struct {
	store   cache.Store
	limiter *ratelimit.Limiter
	cfg     Config
}

func New(store cache.Store, limiter *ratelimit.Limiter, cfg Config) *Orchestrator {
	return &Orchestrator{store: store, limiter: limiter, cfg: cfg}
}

// Result is the assembled output of one fan-out.
type Result struct {
	Evidence    []types.EvidenceItem
	Diagnostics []types.Diagnostic
	// CacheHits names the adapters served from cache, in request order.
	CacheHits []string
}

type slot struct {
	items []types.EvidenceItem
	diag  *types.Diagnostic
	hit   bool
	done  bool
}

// Collect runs every adapter concurrently and returns evidence in adapter
// request order. Item order within one adapter is the adapter's own order.
func (o *Orchestrator) Collect(ctx context.Context, adapters []reputation.Adapter, subject string) Result {
	if len(adapters) == 0 {
		return Result{}
	}

	deadline := o.cfg.Deadline
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	type indexed struct {
		idx int
		s   slot
	}
	slots := make([]slot, len(adapters))
	done := make(chan indexed, len(adapters))

	for i, a := range adapters {
		go func(i int, a reputation.Adapter) {
			s := o.run(runCtx, a, subject)
			s.done = true
			done <- indexed{idx: i, s: s}
		}(i, a)
	}

	remaining := len(adapters)
	for remaining > 0 {
		select {
		case <-runCtx.Done():
			// Stragglers are abandoned; their goroutines drain into the
			// buffered channel and exit.
			remaining = 0
		case d := <-done:
			slots[d.idx] = d.s
			remaining--
		}
	}

	var res Result
	for i, s := range slots {
		if !s.done {
			res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
				Adapter: adapters[i].Name(),
				Reason:  "abandoned at deadline",
			})
			continue
		}
		if s.diag != nil {
			res.Diagnostics = append(res.Diagnostics, *s.diag)
			continue
		}
		if s.hit {
			res.CacheHits = append(res.CacheHits, adapters[i].Name())
		}
		res.Evidence = append(res.Evidence, s.items...)
	}
	return res
}

func (o *Orchestrator) run(ctx context.Context, a reputation.Adapter, subject string) slot {
	if o.store != nil {
		// Store errors degrade to misses.
		if items, ok, err := o.store.Get(a.Name(), subject); err == nil && ok {
			return slot{items: items, hit: true}
		}
	}

	if err := o.limiter.Acquire(ctx, a.Host()); err != nil {
		return slot{diag: &types.Diagnostic{Adapter: a.Name(), Reason: fmt.Sprintf("rate limit wait: %v", err)}}
	}

	callCtx := ctx
	if o.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.cfg.CallTimeout)
		defer cancel()
	}

	items, err := a.Lookup(callCtx, subject)
	if err != nil {
		return slot{diag: &types.Diagnostic{Adapter: a.Name(), Reason: err.Error()}}
	}

	if o.store != nil && o.cfg.TTL > 0 {
		_ = o.store.Put(a.Name(), subject, items, o.cfg.TTL)
	}
	return slot{items: items}
}
