// internal/repository/token_repository.go
package repository

import (
    "context"
    "database/sql"

    sq "github.com/Masterminds/squirrel"

    "github.com/umutalparslan/push-notification-system/internal/model"
    "github.com/umutalparslan/push-notification-system/internal/segment"
)

type TokenRepositoryInterface interface {
    Create(ctx context.Context, t *model.RecipientToken) error

    // ListByApplication returns one page of recipient tokens for an
    // application, optionally restricted by a compiled segment filter.
    // The filter predicates run against the owning user's attribute bag.
    ListByApplication(ctx context.Context, applicationID int64, filter *segment.Filter, limit, offset int) ([]model.RecipientToken, error)
}

type TokenRepository struct {
    DB *sql.DB
}

func (r *TokenRepository) Create(ctx context.Context, t *model.RecipientToken) error {
    query := `
        INSERT INTO tokens (user_id, application_id, device_token, platform, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at
    `
    return r.DB.QueryRowContext(ctx, query, t.UserID, t.ApplicationID, t.DeviceToken, t.Platform).
        Scan(&t.ID, &t.CreatedAt)
}

func (r *TokenRepository) ListByApplication(ctx context.Context, applicationID int64, filter *segment.Filter, limit, offset int) ([]model.RecipientToken, error) {
    b := sq.Select("t.id", "t.user_id", "t.application_id", "t.device_token", "t.platform", "t.created_at").
        From("tokens t").
        Where(sq.Eq{"t.application_id": applicationID}).
        OrderBy("t.id").
        Limit(uint64(limit)).
        Offset(uint64(offset)).
        PlaceholderFormat(sq.Dollar)

    if !filter.Empty() {
        b = b.Join("users u ON u.id = t.user_id").Where(filter.Sqlizer())
    }

    query, args, err := b.ToSql()
    if err != nil {
        return nil, err
    }

    rows, err := r.DB.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    tokens := []model.RecipientToken{}
    for rows.Next() {
        var t model.RecipientToken
        if err := rows.Scan(&t.ID, &t.UserID, &t.ApplicationID, &t.DeviceToken, &t.Platform, &t.CreatedAt); err != nil {
            return nil, err
        }
        tokens = append(tokens, t)
    }
    return tokens, rows.Err()
}

var _ TokenRepositoryInterface = (*TokenRepository)(nil)
