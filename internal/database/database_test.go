package database

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}

	prev := DB
	DB = db
	t.Cleanup(func() { DB = prev })

	if err := RunMigrations(); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return db
}

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSessionService(db)

	session, err := svc.CreateSession("scan.png", 640, 480, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.ID == uuid.Nil {
		t.Fatal("session ID not assigned on create")
	}

	got, err := svc.GetSessionByID(session.ID)
	if err != nil {
		t.Fatalf("GetSessionByID: %v", err)
	}
	if got.Filename != "scan.png" || got.Width != 640 || got.Height != 480 {
		t.Errorf("stored session mismatch: %+v", got)
	}
	if got.Processed {
		t.Error("fresh session marked processed")
	}

	got.Processed = true
	got.KernelSize = 5
	got.AdjustedPNG = []byte{9, 9}
	if err := svc.UpdateSession(got); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}
	again, err := svc.GetSessionByID(session.ID)
	if err != nil {
		t.Fatalf("GetSessionByID after update: %v", err)
	}
	if !again.Processed || again.KernelSize != 5 {
		t.Errorf("update not persisted: %+v", again)
	}

	if err := svc.DeleteSession(session.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := svc.GetSessionByID(session.ID); err != gorm.ErrRecordNotFound {
		t.Errorf("deleted session still readable: %v", err)
	}
}

func TestResultRows(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionService(db)
	results := NewResultService(db)

	session, err := sessions.CreateSession("a.png", 10, 10, nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	row := &ResultRow{
		SessionID:  session.ID,
		Filename:   "a.png",
		Threshold1: 128,
		Threshold2: 200,
		Count1:     40,
		Count2:     10,
		DiffCount:  30,
		Ratio:      0.25,
	}
	if err := results.CreateResult(row); err != nil {
		t.Fatalf("CreateResult: %v", err)
	}

	all, err := results.GetAllResults()
	if err != nil {
		t.Fatalf("GetAllResults: %v", err)
	}
	if len(all) != 1 || all[0].Count1 != 40 || all[0].DiffCount != 30 {
		t.Errorf("unexpected rows: %+v", all)
	}

	if err := results.DeleteResult(row.ID); err != nil {
		t.Fatalf("DeleteResult: %v", err)
	}
	if err := results.DeleteResult(row.ID); err != gorm.ErrRecordNotFound {
		t.Errorf("double delete: got %v, want ErrRecordNotFound", err)
	}
}

func TestDeleteAllResults(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionService(db)
	results := NewResultService(db)

	session, err := sessions.CreateSession("b.png", 4, 4, nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	for i := 0; i < 3; i++ {
		row := &ResultRow{SessionID: session.ID, Filename: "b.png", Threshold1: 128, Threshold2: 200}
		if err := results.CreateResult(row); err != nil {
			t.Fatalf("CreateResult %d: %v", i, err)
		}
	}

	if err := results.DeleteAllResults(); err != nil {
		t.Fatalf("DeleteAllResults: %v", err)
	}
	all, err := results.GetAllResults()
	if err != nil {
		t.Fatalf("GetAllResults: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("results remain after clear: %d", len(all))
	}
}

func TestDeleteSessionsOlderThan(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionService(db)
	results := NewResultService(db)

	old, err := sessions.CreateSession("old.png", 4, 4, nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	fresh, err := sessions.CreateSession("fresh.png", 4, 4, nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	row := &ResultRow{SessionID: old.ID, Filename: "old.png", Threshold1: 128, Threshold2: 200}
	if err := results.CreateResult(row); err != nil {
		t.Fatalf("CreateResult: %v", err)
	}

	// Age the first session past the cutoff.
	stale := time.Now().Add(-48 * time.Hour)
	if err := db.Model(&ImageSession{}).Where("id = ?", old.ID).Update("updated_at", stale).Error; err != nil {
		t.Fatalf("backdating session: %v", err)
	}

	deleted, err := sessions.DeleteSessionsOlderThan(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("DeleteSessionsOlderThan: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted count: got %d, want 1", deleted)
	}
	if _, err := sessions.GetSessionByID(old.ID); err != gorm.ErrRecordNotFound {
		t.Errorf("stale session survived: %v", err)
	}
	if _, err := sessions.GetSessionByID(fresh.ID); err != nil {
		t.Errorf("fresh session removed: %v", err)
	}
	rows, err := results.GetResultsBySessionID(old.ID)
	if err != nil {
		t.Fatalf("GetResultsBySessionID: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("orphaned result rows: %d", len(rows))
	}
}
