// internal/repository/application_repository.go
package repository

import (
    "context"
    "database/sql"

    "github.com/lib/pq"

    "github.com/umutalparslan/push-notification-system/internal/model"
)

type ApplicationRepositoryInterface interface {
    Create(ctx context.Context, a *model.Application) error
    GetByID(ctx context.Context, id int64) (*model.Application, error)
    ListByIDs(ctx context.Context, ids []int64) ([]model.Application, error)
    ListByCustomer(ctx context.Context, customerID int64) ([]model.Application, error)

    // CountOwned reports how many of the given ids exist and belong to the
    // customer. Used to validate a campaign's application list at creation.
    CountOwned(ctx context.Context, ids []int64, customerID int64) (int, error)
}

type ApplicationRepository struct {
    DB *sql.DB
}

func (r *ApplicationRepository) Create(ctx context.Context, a *model.Application) error {
    query := `
        INSERT INTO applications (customer_id, name, platform, credentials, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at
    `
    return r.DB.QueryRowContext(ctx, query, a.CustomerID, a.Name, a.Platform, a.Credentials).
        Scan(&a.ID, &a.CreatedAt)
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*model.Application, error) {
    query := `SELECT id, customer_id, name, platform, credentials, created_at FROM applications WHERE id=$1`
    var a model.Application
    err := r.DB.QueryRowContext(ctx, query, id).Scan(
        &a.ID, &a.CustomerID, &a.Name, &a.Platform, &a.Credentials, &a.CreatedAt,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil
        }
        return nil, err
    }
    return &a, nil
}

func (r *ApplicationRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.Application, error) {
    query := `SELECT id, customer_id, name, platform, credentials, created_at FROM applications WHERE id = ANY($1)`
    rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanApplications(rows)
}

func (r *ApplicationRepository) ListByCustomer(ctx context.Context, customerID int64) ([]model.Application, error) {
    query := `SELECT id, customer_id, name, platform, credentials, created_at FROM applications WHERE customer_id=$1 ORDER BY id`
    rows, err := r.DB.QueryContext(ctx, query, customerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanApplications(rows)
}

func (r *ApplicationRepository) CountOwned(ctx context.Context, ids []int64, customerID int64) (int, error) {
    query := `SELECT COUNT(*) FROM applications WHERE id = ANY($1) AND customer_id=$2`
    var count int
    err := r.DB.QueryRowContext(ctx, query, pq.Array(ids), customerID).Scan(&count)
    return count, err
}

func scanApplications(rows *sql.Rows) ([]model.Application, error) {
    apps := []model.Application{}
    for rows.Next() {
        var a model.Application
        if err := rows.Scan(&a.ID, &a.CustomerID, &a.Name, &a.Platform, &a.Credentials, &a.CreatedAt); err != nil {
            return nil, err
        }
        apps = append(apps, a)
    }
    return apps, rows.Err()
}

var _ ApplicationRepositoryInterface = (*ApplicationRepository)(nil)
