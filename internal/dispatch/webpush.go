// internal/dispatch/webpush.go
package dispatch

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "time"

    webpush "github.com/SherClockHolmes/webpush-go"

    "github.com/umutalparslan/push-notification-system/internal/model"
)

const defaultVAPIDSubject = "mailto:support@yourdomain.com"

// WebPushDispatcher sends VAPID-signed pushes. The transport has no native
// batching, so each subscription is an individual send; one recipient's
// failure never aborts the rest of the batch.
type WebPushDispatcher struct {
    Credentials *model.Credentials
    Timeout     time.Duration
}

func (d *WebPushDispatcher) Send(ctx context.Context, job model.CampaignJob, batch []model.RecipientToken) []Outcome {
    body, err := json.Marshal(map[string]string{
        "title": job.Title,
        "body":  job.Message,
    })
    if err != nil {
        return failBatch(batch, err.Error())
    }

    subject := d.Credentials.Subject
    if subject == "" {
        subject = defaultVAPIDSubject
    }
    opts := &webpush.Options{
        Subscriber:      subject,
        VAPIDPublicKey:  d.Credentials.PublicKey,
        VAPIDPrivateKey: d.Credentials.PrivateKey,
        TTL:             60,
    }

    outcomes := make([]Outcome, len(batch))
    for i, t := range batch {
        outcomes[i] = d.push(ctx, body, opts, t)
    }
    return outcomes
}

func (d *WebPushDispatcher) push(ctx context.Context, body []byte, opts *webpush.Options, t model.RecipientToken) Outcome {
    // The device token of a web recipient is a serialized subscription
    // object (endpoint + keys), written as-is by the registration flow.
    var sub webpush.Subscription
    if err := json.Unmarshal([]byte(t.DeviceToken), &sub); err != nil {
        return Outcome{Token: t, Status: model.OutcomeFailed, Error: fmt.Sprintf("invalid subscription: %v", err)}
    }

    pushCtx, cancel := context.WithTimeout(ctx, d.Timeout)
    defer cancel()

    resp, err := webpush.SendNotificationWithContext(pushCtx, body, &sub, opts)
    if err != nil {
        return Outcome{Token: t, Status: model.OutcomeFailed, Error: sendError(err)}
    }
    defer resp.Body.Close()

    if resp.StatusCode >= http.StatusBadRequest {
        return Outcome{Token: t, Status: model.OutcomeFailed, Error: fmt.Sprintf("push service returned %d", resp.StatusCode)}
    }
    return Outcome{Token: t, Status: model.OutcomeDelivered}
}
