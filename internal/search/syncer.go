package search

import (
	"context"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/store"
)

// Syncer replays the committed change set of a unit of work into the
// full-text index. The relational commit has already happened when Apply
// runs, so an index failure leaves the index stale rather than the store
// inconsistent; such failures are logged and never abort the request.
type Syncer struct {
	log    *logger.Logger
	client Client
}

func NewSyncer(baseLog *logger.Logger, client Client) *Syncer {
	syncerLog := baseLog.With("service", "SearchSyncer")
	return &Syncer{log: syncerLog, client: client}
}

// Hook registers the syncer on a unit of work. Safe to call even when no
// index service is bound.
func (s *Syncer) Hook(ctx context.Context, u *store.UnitOfWork) {
	u.OnCommitted(func(snapshot store.Snapshot) {
		s.Apply(ctx, snapshot)
	})
}

func (s *Syncer) Apply(ctx context.Context, snapshot store.Snapshot) {
	if s.client == nil {
		return
	}
	for _, entity := range snapshot.Inserts {
		s.upsert(ctx, entity)
	}
	for _, entity := range snapshot.Updates {
		s.upsert(ctx, entity)
	}
	for _, entity := range snapshot.Deletes {
		mapping, ok := Lookup(entity)
		if !ok {
			continue
		}
		id := mapping.ID(entity)
		if err := s.client.Delete(ctx, mapping.Index, id); err != nil {
			s.log.Warn("Failed to delete document from search index", "index", mapping.Index, "id", id, "error", err)
		}
	}
}

func (s *Syncer) upsert(ctx context.Context, entity interface{}) {
	mapping, ok := Lookup(entity)
	if !ok {
		return
	}
	id := mapping.ID(entity)
	if err := s.client.Index(ctx, mapping.Index, id, mapping.Document(entity)); err != nil {
		s.log.Warn("Failed to upsert document into search index", "index", mapping.Index, "id", id, "error", err)
	}
}

// ReindexAll walks every row of a searchable entity set and upserts it.
// Used to repair a stale index after post-commit write failures.
func (s *Syncer) ReindexAll(ctx context.Context, entities []interface{}) {
	if s.client == nil {
		return
	}
	for _, entity := range entities {
		s.upsert(ctx, entity)
	}
}
