// internal/resolver/resolver.go
package resolver

import (
    "context"
    "fmt"
    "log"

    appErrors "github.com/umutalparslan/push-notification-system/internal/errors"
    "github.com/umutalparslan/push-notification-system/internal/model"
    "github.com/umutalparslan/push-notification-system/internal/repository"
    "github.com/umutalparslan/push-notification-system/internal/segment"
)

const DefaultPageSize = 10000

// Resolver streams recipient token batches for one application, deduplicated
// by device token. Filtered and unfiltered resolution share the same path;
// the filter only changes the predicate the repository applies.
type Resolver struct {
    Tokens   repository.TokenRepositoryInterface
    PageSize int
}

// Resolve pages through the token table and hands each deduplicated page to
// fn. The same device token appearing again (within a page or on a later
// page) replaces the earlier occurrence's user/token metadata but is handed
// onward only once: last-seen wins, a device gets at most one send.
//
// A page-query failure does not discard prior progress: pages already handed
// to fn stay dispatched, and the error comes back wrapped as
// ErrPartialResolution. An error returned by fn aborts resolution as-is.
func (r *Resolver) Resolve(ctx context.Context, applicationID int64, filter *segment.Filter, fn func(batch []model.RecipientToken) error) error {
    pageSize := r.PageSize
    if pageSize <= 0 {
        pageSize = DefaultPageSize
    }

    seen := map[string]struct{}{} // device tokens already shipped
    offset := 0

    for {
        page, err := r.Tokens.ListByApplication(ctx, applicationID, filter, pageSize, offset)
        if err != nil {
            log.Printf("⚠️ token page query failed for application %d at offset %d: %v", applicationID, offset, err)
            return fmt.Errorf("%w: application %d: %v", appErrors.ErrPartialResolution, applicationID, err)
        }

        batch := dedupe(page, seen)
        if len(batch) > 0 {
            if err := fn(batch); err != nil {
                return err
            }
        }

        if len(page) < pageSize {
            return nil
        }
        offset += pageSize
    }
}

// dedupe keeps one entry per device token. Duplicates inside the current
// page overwrite in place; a token already shipped in an earlier batch is
// dropped here (that batch has been dispatched, re-sending would duplicate
// the push, and the ledger upsert absorbs the metadata difference).
func dedupe(page []model.RecipientToken, seen map[string]struct{}) []model.RecipientToken {
    batch := make([]model.RecipientToken, 0, len(page))
    inBatch := map[string]int{}

    for _, t := range page {
        if i, ok := inBatch[t.DeviceToken]; ok {
            batch[i] = t
            continue
        }
        if _, ok := seen[t.DeviceToken]; ok {
            continue
        }
        inBatch[t.DeviceToken] = len(batch)
        batch = append(batch, t)
    }

    for token := range inBatch {
        seen[token] = struct{}{}
    }
    return batch
}
