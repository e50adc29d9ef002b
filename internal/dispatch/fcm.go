// internal/dispatch/fcm.go
package dispatch

import (
    "context"
    "time"

    firebase "firebase.google.com/go/v4"
    "firebase.google.com/go/v4/messaging"
    "google.golang.org/api/option"

    "github.com/umutalparslan/push-notification-system/internal/model"
)

// FCM rejects multicast requests above 500 tokens.
const fcmMulticastLimit = 500

// FCMDispatcher sends one multicast request per chunk of the batch through a
// firebase client scoped to the application's service account.
type FCMDispatcher struct {
    Credentials *model.Credentials
    Timeout     time.Duration
}

func (d *FCMDispatcher) Send(ctx context.Context, job model.CampaignJob, batch []model.RecipientToken) []Outcome {
    client, err := d.newClient(ctx)
    if err != nil {
        return failBatch(batch, sendError(err))
    }

    outcomes := make([]Outcome, 0, len(batch))
    for start := 0; start < len(batch); start += fcmMulticastLimit {
        end := start + fcmMulticastLimit
        if end > len(batch) {
            end = len(batch)
        }
        outcomes = append(outcomes, d.sendChunk(ctx, client, job, batch[start:end])...)
    }
    return outcomes
}

func (d *FCMDispatcher) newClient(ctx context.Context) (*messaging.Client, error) {
    app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(d.Credentials.ServiceAccount))
    if err != nil {
        return nil, err
    }
    return app.Messaging(ctx)
}

func (d *FCMDispatcher) sendChunk(ctx context.Context, client *messaging.Client, job model.CampaignJob, chunk []model.RecipientToken) []Outcome {
    tokens := make([]string, len(chunk))
    for i, t := range chunk {
        tokens[i] = t.DeviceToken
    }

    msg := &messaging.MulticastMessage{
        Tokens: tokens,
        Notification: &messaging.Notification{
            Title: job.Title,
            Body:  job.Message,
        },
    }

    sendCtx, cancel := context.WithTimeout(ctx, d.Timeout)
    defer cancel()

    br, err := client.SendEachForMulticast(sendCtx, msg)
    if err != nil {
        return failBatch(chunk, sendError(err))
    }

    outcomes := make([]Outcome, len(chunk))
    for i, resp := range br.Responses {
        if resp.Success {
            outcomes[i] = Outcome{Token: chunk[i], Status: model.OutcomeDelivered}
            continue
        }
        outcomes[i] = Outcome{Token: chunk[i], Status: model.OutcomeFailed, Error: sendError(resp.Error)}
    }
    return outcomes
}
