package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/synthese-backend/internal/logger"
)

// Snapshot is the set of entities a unit of work touched, captured
// immediately before commit. The three sets are disjoint per entity.
type Snapshot struct {
	Inserts []interface{}
	Updates []interface{}
	Deletes []interface{}
}

// UnitOfWork wraps one gorm transaction and records every staged row
// change. Callbacks registered with OnCommitted fire only after the
// transaction commits successfully; a rollback discards them.
type UnitOfWork struct {
	tx        *gorm.DB
	log       *logger.Logger
	inserts   []interface{}
	updates   []interface{}
	deletes   []interface{}
	callbacks []func(Snapshot)
	finished  bool
}

// Tx exposes the underlying transaction handle so repos can run reads and
// raw queries inside the same unit of work.
func (u *UnitOfWork) Tx() *gorm.DB {
	return u.tx
}

func (u *UnitOfWork) Create(entity interface{}) error {
	if err := u.tx.Create(entity).Error; err != nil {
		return err
	}
	u.inserts = append(u.inserts, entity)
	return nil
}

func (u *UnitOfWork) Save(entity interface{}) error {
	if err := u.tx.Save(entity).Error; err != nil {
		return err
	}
	// An entity created in this unit of work stays in the insert set.
	if containsEntity(u.inserts, entity) || containsEntity(u.updates, entity) {
		return nil
	}
	u.updates = append(u.updates, entity)
	return nil
}

func (u *UnitOfWork) Delete(entity interface{}) error {
	if err := u.tx.Delete(entity).Error; err != nil {
		return err
	}
	u.inserts = removeEntity(u.inserts, entity)
	u.updates = removeEntity(u.updates, entity)
	if !containsEntity(u.deletes, entity) {
		u.deletes = append(u.deletes, entity)
	}
	return nil
}

func (u *UnitOfWork) PendingInserts() []interface{} {
	return append([]interface{}{}, u.inserts...)
}

func (u *UnitOfWork) PendingUpdates() []interface{} {
	return append([]interface{}{}, u.updates...)
}

func (u *UnitOfWork) PendingDeletes() []interface{} {
	return append([]interface{}{}, u.deletes...)
}

func (u *UnitOfWork) OnCommitted(fn func(Snapshot)) {
	u.callbacks = append(u.callbacks, fn)
}

// Commit snapshots the pending sets, commits the transaction and then runs
// the registered callbacks. The snapshot must be taken before commit: the
// pending sets are cleared once the transaction finishes.
func (u *UnitOfWork) Commit() error {
	if u.finished {
		return fmt.Errorf("Unit of work already finished")
	}
	snapshot := Snapshot{
		Inserts: u.PendingInserts(),
		Updates: u.PendingUpdates(),
		Deletes: u.PendingDeletes(),
	}
	if err := u.tx.Commit().Error; err != nil {
		return fmt.Errorf("Failed to commit transaction: %w", err)
	}
	u.finished = true
	u.inserts, u.updates, u.deletes = nil, nil, nil
	for _, fn := range u.callbacks {
		fn(snapshot)
	}
	return nil
}

func (u *UnitOfWork) Rollback() {
	if u.finished {
		return
	}
	u.finished = true
	u.inserts, u.updates, u.deletes = nil, nil, nil
	if err := u.tx.Rollback().Error; err != nil {
		u.log.Warn("Failed to rollback transaction", "error", err)
	}
}

func containsEntity(list []interface{}, entity interface{}) bool {
	for _, item := range list {
		if item == entity {
			return true
		}
	}
	return false
}

func removeEntity(list []interface{}, entity interface{}) []interface{} {
	out := list[:0]
	for _, item := range list {
		if item != entity {
			out = append(out, item)
		}
	}
	return out
}
