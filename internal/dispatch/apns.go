// internal/dispatch/apns.go
package dispatch

import (
    "context"
    "encoding/base64"
    "fmt"
    "time"

    "github.com/sideshow/apns2"
    "github.com/sideshow/apns2/certificate"
    "github.com/sideshow/apns2/payload"
    "github.com/sideshow/apns2/token"

    "github.com/umutalparslan/push-notification-system/internal/model"
)

// APNSDispatcher builds one provider client per send, pushes each token in
// the batch, and tears the client down afterwards regardless of outcome.
// It serves both credential shapes: p8 (key + key id + team id) and p12
// (certificate blob + passphrase).
type APNSDispatcher struct {
    Credentials *model.Credentials
    Timeout     time.Duration
}

func (d *APNSDispatcher) Send(ctx context.Context, job model.CampaignJob, batch []model.RecipientToken) []Outcome {
    client, err := d.newClient()
    if err != nil {
        return failBatch(batch, sendError(err))
    }
    defer client.HTTPClient.CloseIdleConnections()

    pl := payload.NewPayload().AlertTitle(job.Title).AlertBody(job.Message)

    outcomes := make([]Outcome, len(batch))
    for i, t := range batch {
        outcomes[i] = d.push(ctx, client, pl, t)
    }
    return outcomes
}

func (d *APNSDispatcher) push(ctx context.Context, client *apns2.Client, pl *payload.Payload, t model.RecipientToken) Outcome {
    notification := &apns2.Notification{
        DeviceToken: t.DeviceToken,
        Topic:       d.Credentials.BundleID,
        Payload:     pl,
    }

    pushCtx, cancel := context.WithTimeout(ctx, d.Timeout)
    defer cancel()

    res, err := client.PushWithContext(pushCtx, notification)
    if err != nil {
        return Outcome{Token: t, Status: model.OutcomeFailed, Error: sendError(err)}
    }
    if !res.Sent() {
        return Outcome{Token: t, Status: model.OutcomeFailed, Error: res.Reason}
    }
    return Outcome{Token: t, Status: model.OutcomeDelivered}
}

func (d *APNSDispatcher) newClient() (*apns2.Client, error) {
    switch d.Credentials.Type {
    case model.CredentialP8:
        key, err := base64.StdEncoding.DecodeString(d.Credentials.Key)
        if err != nil {
            return nil, fmt.Errorf("apns: decoding p8 key: %w", err)
        }
        authKey, err := token.AuthKeyFromBytes(key)
        if err != nil {
            return nil, fmt.Errorf("apns: parsing p8 key: %w", err)
        }
        return apns2.NewTokenClient(&token.Token{
            AuthKey: authKey,
            KeyID:   d.Credentials.KeyID,
            TeamID:  d.Credentials.TeamID,
        }).Development(), nil
    case model.CredentialP12:
        blob, err := base64.StdEncoding.DecodeString(d.Credentials.Certificate)
        if err != nil {
            return nil, fmt.Errorf("apns: decoding p12 blob: %w", err)
        }
        cert, err := certificate.FromP12Bytes(blob, d.Credentials.Password)
        if err != nil {
            return nil, fmt.Errorf("apns: parsing p12 certificate: %w", err)
        }
        return apns2.NewClient(cert).Development(), nil
    }
    return nil, fmt.Errorf("apns: unsupported credential type %q", d.Credentials.Type)
}
