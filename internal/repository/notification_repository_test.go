// internal/repository/notification_repository_test.go
package repository

import (
    "context"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestRecordUpserts(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    repo := &NotificationRepository{DB: db}
    tokenID := int64(42)
    errMsg := "Unregistered"

    mock.ExpectExec(`(?s)INSERT INTO notifications.*ON CONFLICT \(campaign_id, token_id, application_id\).*DO UPDATE SET status = EXCLUDED\.status`).
        WithArgs(int64(1), int64(2), &tokenID, int64(3), "failed", &errMsg).
        WillReturnResult(sqlmock.NewResult(0, 1))

    err = repo.Record(context.Background(), 1, 2, &tokenID, 3, "failed", &errMsg)
    require.NoError(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordWithoutTokenID(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    repo := &NotificationRepository{DB: db}
    errMsg := "no usable dispatcher"

    mock.ExpectExec(`(?s)INSERT INTO notifications.*ON CONFLICT`).
        WithArgs(int64(1), int64(2), nil, int64(3), "failed", &errMsg).
        WillReturnResult(sqlmock.NewResult(0, 1))

    err = repo.Record(context.Background(), 1, 2, nil, 3, "failed", &errMsg)
    require.NoError(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByStatus(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    repo := &NotificationRepository{DB: db}

    rows := sqlmock.NewRows([]string{"status", "count"}).
        AddRow("delivered", 5).
        AddRow("failed", 2)
    mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM notifications WHERE campaign_id=\$1 GROUP BY status`).
        WithArgs(int64(9)).
        WillReturnRows(rows)

    report, err := repo.CountByStatus(context.Background(), 9)
    require.NoError(t, err)
    assert.Equal(t, 5, report.Delivered)
    assert.Equal(t, 2, report.Failed)
    assert.NoError(t, mock.ExpectationsWereMet())
}
