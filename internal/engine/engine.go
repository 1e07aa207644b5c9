// Package engine orchestrates review record synchronization: initial
// load with remote-then-local fallback, save-on-mutation across both
// storage tiers, and the periodic poll that reconciles local and
// remote state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/clipreview/clipreview/internal/cache"
	"github.com/clipreview/clipreview/internal/remote"
	"github.com/clipreview/clipreview/internal/review"
)

// State is the engine lifecycle state for the attached file.
type State int

const (
	// StateUnloaded means no file is attached.
	StateUnloaded State = iota
	// StateLoading means the initial load is in progress.
	StateLoading
	// StateReady means the record is loaded and mutations are accepted.
	StateReady
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ErrNotReady is returned when a mutation is attempted before a file
// is attached and loaded.
var ErrNotReady = errors.New("engine not ready")

// origin classifies what triggered a commit. Only user mutations
// reach the remote tier; merge-driven writes stay local so a poll
// that changes state cannot trigger a write-back storm.
type origin int

const (
	originUser origin = iota
	originMerge
)

// TransportResolver yields the currently viable remote transports for
// a file, in priority order.
type TransportResolver interface {
	Resolve(file remote.FileContext) []remote.Candidate
}

// Config holds engine configuration.
type Config struct {
	// PollInterval is how often the reconciliation poll runs.
	PollInterval time.Duration

	// Logger for engine activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PollInterval: 10 * time.Second,
		Logger:       log.New(os.Stderr, "[engine] ", log.LstdFlags),
	}
}

// Engine owns the in-memory review record for one attached file and
// keeps it synchronized across the local cache and whichever remote
// transport is currently viable.
//
// All operations are safe for concurrent use; the record is
// exclusively owned by the engine and exposed only as deep copies.
type Engine struct {
	cache    *cache.Store
	resolver TransportResolver
	config   *Config

	mu         sync.Mutex
	state      State
	file       remote.FileContext
	record     *review.Record
	generation int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an engine. The cache must already be open. If config is
// nil, defaults are used.
func New(cacheStore *cache.Store, resolver TransportResolver, config *Config) (*Engine, error) {
	if cacheStore == nil {
		return nil, fmt.Errorf("cache store cannot be nil")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[engine] ", log.LstdFlags)
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 10 * time.Second
	}
	return &Engine{
		cache:    cacheStore,
		resolver: resolver,
		config:   config,
		state:    StateUnloaded,
	}, nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Attach binds the engine to a file identifier and loads its record:
// first viable remote transport, then the local cache, then the
// canonical empty record. The transition always completes; absence
// of data at every tier is a valid outcome, not a fault.
//
// Attaching while already attached discards the previous record
// (whose last save was issued by the mutation that produced it) and
// invalidates any in-flight poll tick.
func (e *Engine) Attach(ctx context.Context, file remote.FileContext) {
	e.mu.Lock()
	e.state = StateLoading
	e.file = file
	e.record = nil
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	rec := e.load(ctx, file)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != gen {
		// A newer Attach superseded this load; discard.
		return
	}
	e.record = rec
	e.state = StateReady
}

// load runs the remote-then-local fallback chain.
func (e *Engine) load(ctx context.Context, file remote.FileContext) *review.Record {
	for _, candidate := range e.resolver.Resolve(file) {
		rec, ok, err := candidate.Store.Fetch(ctx)
		if err != nil {
			e.config.Logger.Printf("load via %s failed: %v", candidate.Store.Name(), err)
			continue
		}
		if !ok {
			continue
		}
		e.config.Logger.Printf("loaded %d comments via %s", len(rec.Comments), candidate.Store.Name())
		rec.FileID = file.FileID
		return rec
	}

	if rec, ok := e.cache.Load(file.FileID); ok {
		e.config.Logger.Printf("loaded %d comments from local cache", len(rec.Comments))
		return rec
	}

	return review.NewRecord(file.FileID)
}

// Snapshot returns a deep copy of the current record, or the
// canonical empty record when nothing is attached.
func (e *Engine) Snapshot() *review.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.record == nil {
		return review.NewRecord(e.file.FileID)
	}
	return e.record.Clone()
}

// AddComment appends a comment to the record and saves. Comment ids
// are the merge key, so a duplicate is rejected before it can reach
// either storage tier.
func (e *Engine) AddComment(ctx context.Context, c review.Comment) error {
	rec, err := e.mutate(func(rec *review.Record) error {
		if _, exists := rec.FindComment(c.ID); exists {
			return fmt.Errorf("duplicate comment id %q", c.ID)
		}
		rec.AddComment(c)
		return nil
	})
	if err != nil {
		return err
	}
	e.commit(ctx, rec, originUser)
	return nil
}

// RemoveComment removes all comments matching id (expected exactly
// one) and saves.
func (e *Engine) RemoveComment(ctx context.Context, id string) error {
	rec, err := e.mutate(func(rec *review.Record) error {
		rec.RemoveComment(id)
		return nil
	})
	if err != nil {
		return err
	}
	e.commit(ctx, rec, originUser)
	return nil
}

// SetApproval replaces the approval verdict and saves.
func (e *Engine) SetApproval(ctx context.Context, status review.Approval) error {
	if !status.Valid() {
		return fmt.Errorf("invalid approval %q", status)
	}
	rec, err := e.mutate(func(rec *review.Record) error {
		rec.Approval = status
		return nil
	})
	if err != nil {
		return err
	}
	e.commit(ctx, rec, originUser)
	return nil
}

// Save persists the current record without mutating it. Saving twice
// in a row produces identical local and remote payloads.
func (e *Engine) Save(ctx context.Context) error {
	rec, err := e.mutate(func(*review.Record) error { return nil })
	if err != nil {
		return err
	}
	e.commit(ctx, rec, originUser)
	return nil
}

// mutate applies fn to the record under the lock and returns a copy
// for committing. When fn rejects the mutation the record is left
// untouched.
func (e *Engine) mutate(fn func(*review.Record) error) (*review.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateReady || e.record == nil {
		return nil, ErrNotReady
	}
	if err := fn(e.record); err != nil {
		return nil, err
	}
	e.record.Touch()
	return e.record.Clone(), nil
}

// commit persists a committed copy of the record. The local cache is
// written unconditionally; the remote tier is attempted only for user
// mutations, fire-and-forget: the first candidate whose request
// succeeds wins, failures advance to the next, and running out of
// candidates leaves the record local-only until a later save or poll.
func (e *Engine) commit(ctx context.Context, rec *review.Record, o origin) {
	if err := e.cache.SaveContext(ctx, rec); err != nil {
		e.config.Logger.Printf("Warning: local cache save failed: %v", err)
	}

	if o != originUser {
		return
	}

	e.mu.Lock()
	file := e.file
	e.mu.Unlock()

	for _, candidate := range e.resolver.Resolve(file) {
		if err := candidate.Store.Put(ctx, rec); err != nil {
			e.config.Logger.Printf("Warning: remote save via %s failed: %v", candidate.Store.Name(), err)
			continue
		}
		return
	}
}
