package engine

import (
	"context"
	"time"

	"github.com/clipreview/clipreview/internal/review"
)

// Start launches the reconciliation poll in the background. Close
// stops it.
func (e *Engine) Start() {
	ctx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	if e.cancel != nil {
		e.mu.Unlock()
		cancel()
		return
	}
	e.cancel = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.Run(ctx)
	}()
}

// Close cancels the background poll and waits for it to exit. Safe to
// call when Start was never called.
func (e *Engine) Close() {
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	e.wg.Wait()
}

// Run executes the reconciliation poll until ctx is cancelled. It is
// the only change-detection mechanism: no push transport is assumed.
//
// Cancellation is tied to explicit teardown: callers cancel ctx when
// the engine detaches or the owning surface goes away, and a tick
// whose result arrives after that is discarded rather than applied.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Poll(ctx)
		}
	}
}

// Poll runs a single reconcile tick: fetch the remote record through
// the first viable transport, fold it into the local record, and
// persist locally when anything changed.
//
// The merge-driven write never reaches a remote store; only user
// mutations do. Any transport failure or absence skips the tick
// silently; the next tick is the retry.
func (e *Engine) Poll(ctx context.Context) {
	e.mu.Lock()
	if e.state != StateReady || e.record == nil {
		e.mu.Unlock()
		return
	}
	file := e.file
	gen := e.generation
	e.mu.Unlock()

	candidates := e.resolver.Resolve(file)
	if len(candidates) == 0 {
		return
	}

	var fetched *review.Record
	for _, candidate := range candidates {
		rec, ok, err := candidate.Store.Fetch(ctx)
		if err != nil || !ok {
			continue
		}
		fetched = rec
		break
	}
	if fetched == nil {
		return
	}

	if ctx.Err() != nil {
		return
	}

	e.mu.Lock()
	if e.generation != gen || e.state != StateReady {
		// The engine re-attached while the fetch was in flight.
		e.mu.Unlock()
		return
	}
	merged, changed := review.MergeRemote(e.record, fetched)
	if !changed {
		e.mu.Unlock()
		return
	}
	merged.Touch()
	e.record = merged
	commitCopy := merged.Clone()
	e.mu.Unlock()

	e.config.Logger.Printf("poll merged remote state: %d comments, approval=%s",
		len(commitCopy.Comments), commitCopy.Approval)
	e.commit(ctx, commitCopy, originMerge)
}
