// internal/service/campaign_service.go
package service

import (
    "context"
    "log"
    "time"

    appErrors "github.com/umutalparslan/push-notification-system/internal/errors"
    "github.com/umutalparslan/push-notification-system/internal/model"
    "github.com/umutalparslan/push-notification-system/internal/queue"
    "github.com/umutalparslan/push-notification-system/internal/repository"
    "github.com/umutalparslan/push-notification-system/internal/segment"
)

// CampaignService owns the campaign lifecycle on the authoring side:
// creation (draft), immediate send (queued) and reporting. The dispatch
// engine owns the final transition to sent.
type CampaignService struct {
    CampaignRepo     repository.CampaignRepositoryInterface
    ApplicationRepo  repository.ApplicationRepositoryInterface
    NotificationRepo repository.NotificationRepositoryInterface
    Queue            queue.Publisher
}

type CreateCampaignInput struct {
    Title          string
    Message        string
    ApplicationIDs []int64
    SegmentQuery   model.SegmentQuery
    ScheduledAt    *string // RFC3339
}

func (s *CampaignService) CreateCampaign(ctx context.Context, customerID int64, in CreateCampaignInput) (*model.Campaign, error) {
    if in.Title == "" || in.Message == "" || len(in.ApplicationIDs) == 0 {
        return nil, appErrors.NewValidation("title, message and application_ids are required")
    }

    // Reject the filter at authoring time; the worker cannot fix it later.
    if _, err := segment.Compile(in.SegmentQuery); err != nil {
        return nil, appErrors.NewValidation("invalid segment query: %v", err)
    }

    owned, err := s.ApplicationRepo.CountOwned(ctx, in.ApplicationIDs, customerID)
    if err != nil {
        return nil, err
    }
    if owned != len(in.ApplicationIDs) {
        return nil, appErrors.NewValidation("one or more applications not found or do not belong to customer")
    }

    c := &model.Campaign{
        CustomerID:     customerID,
        Title:          in.Title,
        Message:        in.Message,
        ApplicationIDs: in.ApplicationIDs,
        SegmentQuery:   in.SegmentQuery,
        Status:         model.StatusDraft,
    }

    if in.ScheduledAt != nil && *in.ScheduledAt != "" {
        t, err := time.Parse(time.RFC3339, *in.ScheduledAt)
        if err != nil {
            return nil, appErrors.NewValidation("invalid scheduled_at date")
        }
        if !t.After(time.Now()) {
            return nil, appErrors.NewValidation("scheduled_at cannot be in the past")
        }
        c.ScheduledAt = &t
    }

    if err := s.CampaignRepo.Create(ctx, c); err != nil {
        return nil, err
    }
    return c, nil
}

// SendCampaign validates and enqueues an immediate send. A campaign with a
// scheduled_at still in the future belongs to the scheduler and is rejected
// here; its status stays draft. The MarkQueued check-and-set makes a race
// with the scheduler produce at most one queue message.
func (s *CampaignService) SendCampaign(ctx context.Context, id, customerID int64) (*model.Campaign, error) {
    c, err := s.CampaignRepo.GetByID(ctx, id, customerID)
    if err != nil {
        return nil, err
    }

    if c.Status != model.StatusDraft {
        return nil, appErrors.NewValidation("campaign cannot be sent in status: %s", c.Status)
    }
    if c.ScheduledAt != nil && c.ScheduledAt.After(time.Now()) {
        return nil, appErrors.NewValidation("cannot send scheduled campaign immediately")
    }

    queued, err := s.CampaignRepo.MarkQueued(ctx, id)
    if err != nil {
        return nil, err
    }
    if !queued {
        return nil, appErrors.NewValidation("campaign %d is no longer in draft status", id)
    }

    if err := s.Queue.Enqueue(c.Job()); err != nil {
        // Give the row back so a later send or scheduler tick can retry it.
        if revertErr := s.CampaignRepo.RevertQueued(ctx, id); revertErr != nil {
            log.Printf("⚠️ campaign %d: revert to draft after failed enqueue: %v", id, revertErr)
        }
        return nil, err
    }

    c.Status = model.StatusQueued
    return c, nil
}

func (s *CampaignService) GetCampaign(ctx context.Context, id, customerID int64) (*model.Campaign, error) {
    return s.CampaignRepo.GetByID(ctx, id, customerID)
}

// CampaignSummary is a campaign row with its ledger counts attached, the
// shape the list endpoint returns.
type CampaignSummary struct {
    model.Campaign
    Report *model.CampaignReport `json:"report"`
}

func (s *CampaignService) ListCampaigns(ctx context.Context, customerID int64) ([]CampaignSummary, error) {
    campaigns, err := s.CampaignRepo.ListByCustomer(ctx, customerID)
    if err != nil {
        return nil, err
    }

    summaries := make([]CampaignSummary, 0, len(campaigns))
    for _, c := range campaigns {
        report, err := s.NotificationRepo.CountByStatus(ctx, c.ID)
        if err != nil {
            return nil, err
        }
        summaries = append(summaries, CampaignSummary{Campaign: c, Report: report})
    }
    return summaries, nil
}

// Report returns the ledger counts for one campaign, scoped to the owner.
func (s *CampaignService) Report(ctx context.Context, id, customerID int64) (*model.CampaignReport, error) {
    if _, err := s.CampaignRepo.GetByID(ctx, id, customerID); err != nil {
        return nil, err
    }
    return s.NotificationRepo.CountByStatus(ctx, id)
}
