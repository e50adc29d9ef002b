// internal/repository/campaign_repository.go
package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/lib/pq"

    appErrors "github.com/umutalparslan/push-notification-system/internal/errors"
    "github.com/umutalparslan/push-notification-system/internal/model"
)

type CampaignRepositoryInterface interface {
    Create(ctx context.Context, c *model.Campaign) error
    GetByID(ctx context.Context, id, customerID int64) (*model.Campaign, error)
    ListByCustomer(ctx context.Context, customerID int64) ([]model.Campaign, error)
    ListDueScheduled(ctx context.Context, now time.Time) ([]model.Campaign, error)

    // MarkQueued is the check-and-set guarding enqueue: it moves the row from
    // draft to queued and reports whether this caller won the transition.
    MarkQueued(ctx context.Context, id int64) (bool, error)

    // RevertQueued undoes a won MarkQueued whose publish failed, so the row
    // is visible to the send path and the scheduler again.
    RevertQueued(ctx context.Context, id int64) error
    MarkSent(ctx context.Context, id int64) error
}

type CampaignRepository struct {
    DB *sql.DB
}

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
    c.CreatedAt = time.Now()
    if c.Status == "" {
        c.Status = model.StatusDraft
    }
    query := `
        INSERT INTO campaigns (customer_id, title, message, application_ids, segment_query, scheduled_at, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
    return r.DB.QueryRowContext(ctx, query,
        c.CustomerID, c.Title, c.Message, pq.Array(c.ApplicationIDs),
        c.SegmentQuery, c.ScheduledAt, c.Status, c.CreatedAt,
    ).Scan(&c.ID)
}

func (r *CampaignRepository) GetByID(ctx context.Context, id, customerID int64) (*model.Campaign, error) {
    query := `
        SELECT id, customer_id, title, message, application_ids, segment_query, scheduled_at, status, created_at, updated_at
        FROM campaigns WHERE id=$1 AND customer_id=$2
    `
    var c model.Campaign
    err := r.DB.QueryRowContext(ctx, query, id, customerID).Scan(
        &c.ID, &c.CustomerID, &c.Title, &c.Message, &c.ApplicationIDs,
        &c.SegmentQuery, &c.ScheduledAt, &c.Status, &c.CreatedAt, &c.UpdatedAt,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, appErrors.NewCampaignNotFound(id)
        }
        return nil, err
    }
    return &c, nil
}

func (r *CampaignRepository) ListByCustomer(ctx context.Context, customerID int64) ([]model.Campaign, error) {
    query := `
        SELECT id, customer_id, title, message, application_ids, segment_query, scheduled_at, status, created_at, updated_at
        FROM campaigns WHERE customer_id=$1 ORDER BY id DESC
    `
    rows, err := r.DB.QueryContext(ctx, query, customerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    campaigns := []model.Campaign{}
    for rows.Next() {
        var c model.Campaign
        if err := rows.Scan(
            &c.ID, &c.CustomerID, &c.Title, &c.Message, &c.ApplicationIDs,
            &c.SegmentQuery, &c.ScheduledAt, &c.Status, &c.CreatedAt, &c.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        campaigns = append(campaigns, c)
    }
    return campaigns, rows.Err()
}

func (r *CampaignRepository) ListDueScheduled(ctx context.Context, now time.Time) ([]model.Campaign, error) {
    query := `
        SELECT id, customer_id, title, message, application_ids, segment_query, scheduled_at, status, created_at, updated_at
        FROM campaigns
        WHERE status='draft' AND scheduled_at IS NOT NULL AND scheduled_at <= $1
        ORDER BY scheduled_at
    `
    rows, err := r.DB.QueryContext(ctx, query, now)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    campaigns := []model.Campaign{}
    for rows.Next() {
        var c model.Campaign
        if err := rows.Scan(
            &c.ID, &c.CustomerID, &c.Title, &c.Message, &c.ApplicationIDs,
            &c.SegmentQuery, &c.ScheduledAt, &c.Status, &c.CreatedAt, &c.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        campaigns = append(campaigns, c)
    }
    return campaigns, rows.Err()
}

func (r *CampaignRepository) MarkQueued(ctx context.Context, id int64) (bool, error) {
    query := `UPDATE campaigns SET status='queued', updated_at=NOW() WHERE id=$1 AND status='draft'`
    res, err := r.DB.ExecContext(ctx, query, id)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n == 1, nil
}

func (r *CampaignRepository) RevertQueued(ctx context.Context, id int64) error {
    query := `UPDATE campaigns SET status='draft', updated_at=NOW() WHERE id=$1 AND status='queued'`
    _, err := r.DB.ExecContext(ctx, query, id)
    return err
}

func (r *CampaignRepository) MarkSent(ctx context.Context, id int64) error {
    query := `UPDATE campaigns SET status='sent', updated_at=NOW() WHERE id=$1 AND status <> 'sent'`
    _, err := r.DB.ExecContext(ctx, query, id)
    return err
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
