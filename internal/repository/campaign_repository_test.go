// internal/repository/campaign_repository_test.go
package repository

import (
    "context"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestMarkQueuedWinsCheckAndSet(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    repo := &CampaignRepository{DB: db}

    mock.ExpectExec(`UPDATE campaigns SET status='queued', updated_at=NOW\(\) WHERE id=\$1 AND status='draft'`).
        WithArgs(int64(5)).
        WillReturnResult(sqlmock.NewResult(0, 1))

    queued, err := repo.MarkQueued(context.Background(), 5)
    require.NoError(t, err)
    assert.True(t, queued)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkQueuedLosesCheckAndSet(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    repo := &CampaignRepository{DB: db}

    // Row already left draft: zero rows affected, the caller must not enqueue.
    mock.ExpectExec(`UPDATE campaigns SET status='queued'`).
        WithArgs(int64(5)).
        WillReturnResult(sqlmock.NewResult(0, 0))

    queued, err := repo.MarkQueued(context.Background(), 5)
    require.NoError(t, err)
    assert.False(t, queued)
}

func TestRevertQueuedReturnsRowToDraft(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    repo := &CampaignRepository{DB: db}

    mock.ExpectExec(`UPDATE campaigns SET status='draft', updated_at=NOW\(\) WHERE id=\$1 AND status='queued'`).
        WithArgs(int64(5)).
        WillReturnResult(sqlmock.NewResult(0, 1))

    require.NoError(t, repo.RevertQueued(context.Background(), 5))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSentIsIdempotent(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    repo := &CampaignRepository{DB: db}

    mock.ExpectExec(`UPDATE campaigns SET status='sent', updated_at=NOW\(\) WHERE id=\$1 AND status <> 'sent'`).
        WithArgs(int64(6)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec(`UPDATE campaigns SET status='sent'`).
        WithArgs(int64(6)).
        WillReturnResult(sqlmock.NewResult(0, 0))

    require.NoError(t, repo.MarkSent(context.Background(), 6))
    require.NoError(t, repo.MarkSent(context.Background(), 6))
    assert.NoError(t, mock.ExpectationsWereMet())
}
