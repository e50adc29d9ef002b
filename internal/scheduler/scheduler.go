// internal/scheduler/scheduler.go
package scheduler

import (
    "context"
    "log"
    "time"

    "github.com/umutalparslan/push-notification-system/internal/model"
    "github.com/umutalparslan/push-notification-system/internal/queue"
)

type CampaignSource interface {
    ListDueScheduled(ctx context.Context, now time.Time) ([]model.Campaign, error)
    MarkQueued(ctx context.Context, id int64) (bool, error)
    RevertQueued(ctx context.Context, id int64) error
}

// Scheduler promotes due scheduled campaigns onto the campaign queue. Each
// tick scans for drafts whose scheduled_at has passed; the MarkQueued
// check-and-set makes a campaign win the queue at most once even when ticks
// overlap or several server processes run the scan.
type Scheduler struct {
    Campaigns CampaignSource
    Queue     queue.Publisher
    Interval  time.Duration
}

func (s *Scheduler) Run(ctx context.Context) {
    interval := s.Interval
    if interval <= 0 {
        interval = time.Minute
    }

    ticker := time.NewTicker(interval)
    defer ticker.Stop()

    log.Println("scheduler started, tick interval:", interval)
    for {
        select {
        case <-ctx.Done():
            return
        case now := <-ticker.C:
            s.Tick(ctx, now)
        }
    }
}

func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
    due, err := s.Campaigns.ListDueScheduled(ctx, now)
    if err != nil {
        log.Println("⚠️ scheduler scan failed:", err)
        return
    }

    for _, c := range due {
        queued, err := s.Campaigns.MarkQueued(ctx, c.ID)
        if err != nil {
            log.Printf("⚠️ scheduler: marking campaign %d queued failed: %v", c.ID, err)
            continue
        }
        if !queued {
            // Lost the check-and-set: someone else already queued it.
            continue
        }
        if err := s.Queue.Enqueue(c.Job()); err != nil {
            log.Printf("⚠️ scheduler: enqueue of campaign %d failed: %v", c.ID, err)
            // Put the row back in draft so the next tick retries it.
            if revertErr := s.Campaigns.RevertQueued(ctx, c.ID); revertErr != nil {
                log.Printf("⚠️ scheduler: revert of campaign %d failed: %v", c.ID, revertErr)
            }
            continue
        }
        log.Printf("scheduled campaign %d enqueued (was due %s)", c.ID, c.ScheduledAt.Format(time.RFC3339))
    }
}
