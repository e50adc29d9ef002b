// internal/dispatch/engine.go
package dispatch

import (
    "context"
    "errors"
    "log"
    "time"

    "golang.org/x/sync/errgroup"

    appErrors "github.com/umutalparslan/push-notification-system/internal/errors"
    "github.com/umutalparslan/push-notification-system/internal/model"
    "github.com/umutalparslan/push-notification-system/internal/segment"
)

// Ports the engine pulls from. Narrow on purpose: the worker wires the
// repositories and resolver in, tests wire fakes.
type ApplicationSource interface {
    ListByIDs(ctx context.Context, ids []int64) ([]model.Application, error)
}

type RecipientSource interface {
    Resolve(ctx context.Context, applicationID int64, filter *segment.Filter, fn func(batch []model.RecipientToken) error) error
}

type Ledger interface {
    Record(ctx context.Context, campaignID, userID int64, tokenID *int64, applicationID int64, status string, errMsg *string) error
}

type CampaignMarker interface {
    MarkSent(ctx context.Context, id int64) error
}

// SelectFunc picks the dispatcher for an application. Defaults to
// ForApplication; tests substitute fakes.
type SelectFunc func(app model.Application, timeout time.Duration) (Dispatcher, error)

// Engine processes one campaign job end to end: application lookup, batched
// recipient resolution, channel dispatch, ledger bookkeeping and the final
// transition to sent. Batches within one application run sequentially to
// respect provider rate limits; applications run concurrently under a
// bounded pool.
type Engine struct {
    Apps       ApplicationSource
    Recipients RecipientSource
    Ledger     Ledger
    Campaigns  CampaignMarker

    Select      SelectFunc
    Concurrency int
    SendTimeout time.Duration
}

// Dispatch runs the job. The returned error determines the consumer's ack
// policy: nil and ErrNoApplications are acked, anything else is requeued.
// Per-recipient failures never surface here, they become failed ledger rows.
func (e *Engine) Dispatch(ctx context.Context, job model.CampaignJob) error {
    filter, err := segment.Compile(job.SegmentQuery)
    if err != nil {
        // A filter that no longer compiles cannot be fixed by redelivery.
        // Close the campaign out so it does not sit in queued forever; the
        // report shows zero rows for it.
        log.Printf("⚠️ campaign %d: dropping job with bad segment query: %v", job.ID, err)
        return e.Campaigns.MarkSent(ctx, job.ID)
    }

    apps, err := e.Apps.ListByIDs(ctx, job.ApplicationIDs)
    if err != nil {
        return err
    }
    if len(apps) == 0 {
        log.Printf("⚠️ campaign %d: none of applications %v resolve", job.ID, job.ApplicationIDs)
        return appErrors.ErrNoApplications
    }

    concurrency := e.Concurrency
    if concurrency <= 0 {
        concurrency = 4
    }

    g, gctx := errgroup.WithContext(ctx)
    g.SetLimit(concurrency)
    for _, app := range apps {
        app := app
        g.Go(func() error {
            e.dispatchApplication(gctx, job, app, filter)
            return nil
        })
    }
    g.Wait()

    if err := e.Campaigns.MarkSent(ctx, job.ID); err != nil {
        return err
    }
    log.Printf("campaign %d dispatched across %d application(s), status updated to 'sent'", job.ID, len(apps))
    return nil
}

func (e *Engine) dispatchApplication(ctx context.Context, job model.CampaignJob, app model.Application, filter *segment.Filter) {
    selectDispatcher := e.Select
    if selectDispatcher == nil {
        selectDispatcher = ForApplication
    }

    timeout := e.SendTimeout
    if timeout <= 0 {
        timeout = 5 * time.Second
    }

    dispatcher, selErr := selectDispatcher(app, timeout)
    if selErr != nil {
        log.Printf("⚠️ campaign %d application %d: no dispatcher: %v", job.ID, app.ID, selErr)
    }

    err := e.Recipients.Resolve(ctx, app.ID, filter, func(batch []model.RecipientToken) error {
        var outcomes []Outcome
        if selErr != nil {
            // No usable dispatcher: every recipient in the campaign gets a
            // failed row instead of silently vanishing from the report.
            outcomes = failBatch(batch, selErr.Error())
        } else {
            outcomes = dispatcher.Send(ctx, job, batch)
        }
        e.record(ctx, job, app, outcomes)
        return nil
    })
    if err != nil {
        if errors.Is(err, appErrors.ErrPartialResolution) {
            log.Printf("⚠️ campaign %d application %d: %v; dispatched what was fetched", job.ID, app.ID, err)
            return
        }
        log.Printf("⚠️ campaign %d application %d: resolution failed: %v", job.ID, app.ID, err)
    }
}

func (e *Engine) record(ctx context.Context, job model.CampaignJob, app model.Application, outcomes []Outcome) {
    for _, o := range outcomes {
        var errMsg *string
        if o.Error != "" {
            msg := o.Error
            errMsg = &msg
        }
        tokenID := o.Token.ID
        if err := e.Ledger.Record(ctx, job.ID, o.Token.UserID, &tokenID, app.ID, o.Status, errMsg); err != nil {
            log.Printf("⚠️ campaign %d application %d: ledger write for token %d failed: %v", job.ID, app.ID, o.Token.ID, err)
        }
    }
}
