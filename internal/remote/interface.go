// Package remote provides the remote persistence tier for review
// records: the store adapter abstraction, its concrete transports,
// and the resolver that decides which transports are currently
// viable.
package remote

import (
	"context"

	"github.com/clipreview/clipreview/internal/review"
)

// Store reads and writes the review record for one resolved target.
//
// Implementations differ in transport protocol, authentication
// scheme, and how the target was derived from ambient context, but
// all are read/write-symmetric and share two rules:
//
//   - "resource absent" (e.g. a sidecar that was never created) is a
//     normal result, reported as ok=false with a nil error, never a
//     fault. An unpopulated review resolves to the canonical empty
//     record at a higher layer.
//   - A malformed remote payload is treated the same as absence; the
//     engine must never interpret it.
//
// No implementation retries within a single operation. The periodic
// poll is the retry mechanism over time.
type Store interface {
	// Name identifies the transport for logging.
	Name() string

	// Fetch retrieves the remote record.
	Fetch(ctx context.Context) (*review.Record, bool, error)

	// Put writes the full record to the remote target.
	Put(ctx context.Context, rec *review.Record) error
}
