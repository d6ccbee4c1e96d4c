// Package persist provides the two copies of the aggregate state: a durable
// local keyed slot backed by SQLite and a best-effort remote copy behind an
// HTTP sync endpoint. The two have independent failure modes; the engine
// decides what to do when either fails.
package persist

import (
	"context"

	"github.com/tylertestin/InnovationAward/internal/model"
)

// Local is the durable local copy: a single keyed slot, last full write wins.
// There are no partial-field writes and no optimistic-locking token.
type Local interface {
	// Load reads the slot. A missing slot returns (nil, nil), not an error.
	Load() (*model.AppState, error)

	// Save overwrites the slot with the full snapshot.
	Save(s *model.AppState) error
}

// Remote is the networked copy. The endpoint performs no server-side merge;
// concurrent pushes interleave arbitrarily and only the pull-side recency
// check guards against adopting stale state.
type Remote interface {
	// Fetch reads the remote snapshot. An absent remote state returns
	// (nil, nil), meaning "nothing to sync", not an error.
	Fetch(ctx context.Context) (*model.AppState, error)

	// Push replaces the remote snapshot. Expected to be idempotent.
	Push(ctx context.Context, s *model.AppState) error
}
