package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.Article{}, &types.Reference{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return New(db, logger.NewNop())
}

func testUser(t *testing.T, st *Store) *types.User {
	t.Helper()
	user := &types.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "!",
	}
	if err := st.DB().Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestUnitOfWorkCapturesChanges(t *testing.T) {
	st := newTestStore(t)
	user := testUser(t, st)

	uow, err := st.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	article := &types.Article{ID: uuid.New(), Title: "Caffeine", UserID: user.ID}
	if err := uow.Create(article); err != nil {
		t.Fatalf("Create: %v", err)
	}
	article.Synthesis = "A stimulant."
	if err := uow.Save(article); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Saving a row created in the same unit of work keeps it in the
	// insert set; the sets stay disjoint.
	if got := len(uow.PendingInserts()); got != 1 {
		t.Fatalf("pending inserts: want=1 got=%d", got)
	}
	if got := len(uow.PendingUpdates()); got != 0 {
		t.Fatalf("pending updates: want=0 got=%d", got)
	}

	var snapshot Snapshot
	fired := 0
	uow.OnCommitted(func(s Snapshot) {
		snapshot = s
		fired++
	})
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if fired != 1 {
		t.Fatalf("callback fired: want=1 got=%d", fired)
	}
	if len(snapshot.Inserts) != 1 || len(snapshot.Updates) != 0 || len(snapshot.Deletes) != 0 {
		t.Fatalf("snapshot: want inserts=1 updates=0 deletes=0 got inserts=%d updates=%d deletes=%d",
			len(snapshot.Inserts), len(snapshot.Updates), len(snapshot.Deletes))
	}

	var count int64
	if err := st.DB().Model(&types.Article{}).Count(&count).Error; err != nil {
		t.Fatalf("count articles: %v", err)
	}
	if count != 1 {
		t.Fatalf("persisted articles: want=1 got=%d", count)
	}
}

func TestUnitOfWorkDeleteCancelsStagedInsert(t *testing.T) {
	st := newTestStore(t)
	user := testUser(t, st)

	uow, err := st.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	article := &types.Article{ID: uuid.New(), Title: "Transient", UserID: user.ID}
	if err := uow.Create(article); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := uow.Delete(article); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := len(uow.PendingInserts()); got != 0 {
		t.Fatalf("pending inserts after delete: want=0 got=%d", got)
	}
	if got := len(uow.PendingDeletes()); got != 1 {
		t.Fatalf("pending deletes: want=1 got=%d", got)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestUnitOfWorkUpdateThenDeleteTracksDeleteOnly(t *testing.T) {
	st := newTestStore(t)
	user := testUser(t, st)
	article := &types.Article{ID: uuid.New(), Title: "Stale", UserID: user.ID}
	if err := st.DB().Create(article).Error; err != nil {
		t.Fatalf("seed article: %v", err)
	}

	uow, err := st.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	article.Synthesis = "edited"
	if err := uow.Save(article); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := uow.Delete(article); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var snapshot Snapshot
	uow.OnCommitted(func(s Snapshot) { snapshot = s })
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(snapshot.Updates) != 0 {
		t.Fatalf("snapshot updates: want=0 got=%d", len(snapshot.Updates))
	}
	if len(snapshot.Deletes) != 1 {
		t.Fatalf("snapshot deletes: want=1 got=%d", len(snapshot.Deletes))
	}
}

func TestUnitOfWorkRollbackSkipsCallbacks(t *testing.T) {
	st := newTestStore(t)
	user := testUser(t, st)

	uow, err := st.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	fired := 0
	uow.OnCommitted(func(Snapshot) { fired++ })
	article := &types.Article{ID: uuid.New(), Title: "Discarded", UserID: user.ID}
	if err := uow.Create(article); err != nil {
		t.Fatalf("Create: %v", err)
	}
	uow.Rollback()

	if fired != 0 {
		t.Fatalf("callback fired on rollback: want=0 got=%d", fired)
	}
	var count int64
	if err := st.DB().Model(&types.Article{}).Count(&count).Error; err != nil {
		t.Fatalf("count articles: %v", err)
	}
	if count != 0 {
		t.Fatalf("persisted articles after rollback: want=0 got=%d", count)
	}
}

func TestUnitOfWorkDoubleCommitFails(t *testing.T) {
	st := newTestStore(t)

	uow, err := st.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("first Commit: %v", err)
	}
	if err := uow.Commit(); err == nil {
		t.Fatalf("second Commit: expected error")
	}
}
