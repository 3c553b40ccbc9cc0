package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/synthese-backend/internal/logger"
)

// Store hands out explicit units of work so that callers (and the search
// synchronizer) can observe the row changes of a transaction instead of
// relying on ambient commit listeners.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) *Store {
	storeLog := baseLog.With("service", "Store")
	return &Store{db: db, log: storeLog}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Begin(ctx context.Context) (*UnitOfWork, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("Failed to begin transaction: %w", tx.Error)
	}
	return &UnitOfWork{tx: tx, log: s.log}, nil
}
