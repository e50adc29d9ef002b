// internal/dispatch/dispatcher.go
package dispatch

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/umutalparslan/push-notification-system/internal/model"
)

// Outcome is the per-recipient result of one channel send.
type Outcome struct {
    Token  model.RecipientToken
    Status string // model.OutcomeDelivered or model.OutcomeFailed
    Error  string
}

// Dispatcher is the uniform send contract every channel implements. A call
// covers one recipient batch; implementations never return an error for an
// individual recipient failure, they report it in that recipient's Outcome.
type Dispatcher interface {
    Send(ctx context.Context, job model.CampaignJob, batch []model.RecipientToken) []Outcome
}

// timeoutError is the distinguishable error text recorded when a provider
// call hits its deadline.
const timeoutError = "send timeout"

// ForApplication selects the dispatcher variant for an application's
// (platform, credential type) pair:
//
//	android + fcm   -> FCM multicast
//	ios     + p8    -> APNs token auth
//	ios     + p12   -> APNs certificate auth
//	web     + vapid -> Web Push
//	web     + p12   -> APNs certificate auth (legacy web push)
func ForApplication(app model.Application, timeout time.Duration) (Dispatcher, error) {
    creds, err := app.ParseCredentials()
    if err != nil {
        return nil, err
    }

    switch app.Platform {
    case model.PlatformAndroid:
        if creds.Type != model.CredentialFCM {
            return nil, fmt.Errorf("application %d: unsupported android credential type %q", app.ID, creds.Type)
        }
        return &FCMDispatcher{Credentials: creds, Timeout: timeout}, nil
    case model.PlatformIOS:
        if creds.Type != model.CredentialP8 && creds.Type != model.CredentialP12 {
            return nil, fmt.Errorf("application %d: unsupported ios credential type %q", app.ID, creds.Type)
        }
        return &APNSDispatcher{Credentials: creds, Timeout: timeout}, nil
    case model.PlatformWeb:
        switch creds.Type {
        case model.CredentialVAPID:
            return &WebPushDispatcher{Credentials: creds, Timeout: timeout}, nil
        case model.CredentialP12:
            return &APNSDispatcher{Credentials: creds, Timeout: timeout}, nil
        }
        return nil, fmt.Errorf("application %d: unsupported web credential type %q", app.ID, creds.Type)
    }
    return nil, fmt.Errorf("application %d: unknown platform %q", app.ID, app.Platform)
}

func sendError(err error) string {
    if errors.Is(err, context.DeadlineExceeded) {
        return timeoutError
    }
    return err.Error()
}

// failBatch marks every recipient in the batch failed with the same error.
func failBatch(batch []model.RecipientToken, errMsg string) []Outcome {
    outcomes := make([]Outcome, len(batch))
    for i, t := range batch {
        outcomes[i] = Outcome{Token: t, Status: model.OutcomeFailed, Error: errMsg}
    }
    return outcomes
}
