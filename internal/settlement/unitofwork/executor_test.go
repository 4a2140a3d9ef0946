package unitofwork

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type sqliteRunner struct {
	db *gorm.DB
}

func (r *sqliteRunner) DB() *gorm.DB {
	return r.db
}

func (r *sqliteRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

type counter struct {
	ID    int `gorm:"primaryKey"`
	Value int
}

func newTestRunner(t *testing.T) *sqliteRunner {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&counter{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &sqliteRunner{db: db}
}

func TestTxExecutorRollsBackOnError(t *testing.T) {
	runner := newTestRunner(t)
	exec, err := NewTxExecutor(runner)
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}
	if !exec.Transactional() {
		t.Fatalf("expected transactional executor")
	}

	err = exec.Run(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&counter{ID: 1, Value: 10}).Error; err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	if err == nil {
		t.Fatalf("expected error to propagate")
	}

	var count int64
	if err := runner.db.Model(&counter{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to discard writes, found %d rows", count)
	}
}

func TestBestEffortExecutorKeepsPartialWrites(t *testing.T) {
	runner := newTestRunner(t)
	exec, err := NewBestEffortExecutor(runner, nil)
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}
	if exec.Transactional() {
		t.Fatalf("expected non-transactional executor")
	}

	err = exec.Run(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&counter{ID: 1, Value: 10}).Error; err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	if err == nil {
		t.Fatalf("expected error to propagate")
	}

	var count int64
	if err := runner.db.Model(&counter{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected partial write to remain, found %d rows", count)
	}
}

func TestFromConfigSelectsVariant(t *testing.T) {
	runner := newTestRunner(t)

	exec, err := FromConfig(true, runner, nil)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	if !exec.Transactional() {
		t.Fatalf("expected transactional variant")
	}

	exec, err = FromConfig(false, runner, nil)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	if exec.Transactional() {
		t.Fatalf("expected best-effort variant")
	}
}
