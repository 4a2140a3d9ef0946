package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/farmfresh-in/farmfresh-backend/pkg/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	cfg := config.DBConfig{
		UseSQLite: true,
		DSN:       fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	client, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().Exec(`CREATE TABLE notes (id TEXT PRIMARY KEY, body TEXT)`).Error)
	return client
}

func countNotes(t *testing.T, client *Client) int64 {
	t.Helper()
	var count int64
	require.NoError(t, client.DB().Table("notes").Count(&count).Error)
	return count
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	client := newTestClient(t)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Exec(`INSERT INTO notes (id, body) VALUES (?, ?)`, uuid.NewString(), "kept").Error
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, countNotes(t, client))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client := newTestClient(t)

	boom := errors.New("boom")
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if execErr := tx.Exec(`INSERT INTO notes (id, body) VALUES (?, ?)`, uuid.NewString(), "discarded").Error; execErr != nil {
			return execErr
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, countNotes(t, client))
}

func TestWithTxRollbackFailureKeepsOriginalError(t *testing.T) {
	client := newTestClient(t)

	boom := errors.New("boom")
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		// Committing inside fn leaves nothing for the deferred
		// rollback to abort; the fn error must still win.
		if commitErr := tx.Commit().Error; commitErr != nil {
			return commitErr
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
}
