// internal/repository/notification_repository.go
package repository

import (
    "context"
    "database/sql"

    "github.com/umutalparslan/push-notification-system/internal/model"
)

type NotificationRepositoryInterface interface {
    // Record upserts one delivery outcome keyed by
    // (campaign_id, token_id, application_id). Re-recording the same key
    // overwrites status and error_message; it never duplicates the row.
    // This is what makes at-least-once queue delivery safe to replay.
    Record(ctx context.Context, campaignID, userID int64, tokenID *int64, applicationID int64, status string, errMsg *string) error

    CountByStatus(ctx context.Context, campaignID int64) (*model.CampaignReport, error)
}

type NotificationRepository struct {
    DB *sql.DB
}

func (r *NotificationRepository) Record(ctx context.Context, campaignID, userID int64, tokenID *int64, applicationID int64, status string, errMsg *string) error {
    query := `
        INSERT INTO notifications (campaign_id, user_id, token_id, application_id, status, error_message, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        ON CONFLICT (campaign_id, token_id, application_id)
        DO UPDATE SET status = EXCLUDED.status, error_message = EXCLUDED.error_message
    `
    _, err := r.DB.ExecContext(ctx, query, campaignID, userID, tokenID, applicationID, status, errMsg)
    return err
}

func (r *NotificationRepository) CountByStatus(ctx context.Context, campaignID int64) (*model.CampaignReport, error) {
    query := `SELECT status, COUNT(*) FROM notifications WHERE campaign_id=$1 GROUP BY status`
    rows, err := r.DB.QueryContext(ctx, query, campaignID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    report := &model.CampaignReport{CampaignID: campaignID}
    for rows.Next() {
        var status string
        var count int
        if err := rows.Scan(&status, &count); err != nil {
            return nil, err
        }
        switch status {
        case model.OutcomeDelivered:
            report.Delivered = count
        case model.OutcomeFailed:
            report.Failed = count
        }
    }
    return report, rows.Err()
}

var _ NotificationRepositoryInterface = (*NotificationRepository)(nil)
