// internal/dispatch/engine_test.go
package dispatch

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    appErrors "github.com/umutalparslan/push-notification-system/internal/errors"
    "github.com/umutalparslan/push-notification-system/internal/model"
    "github.com/umutalparslan/push-notification-system/internal/segment"
)

// Fakes for the engine's ports.

type fakeApps struct {
    apps []model.Application
    err  error
}

func (f *fakeApps) ListByIDs(ctx context.Context, ids []int64) ([]model.Application, error) {
    return f.apps, f.err
}

// fakeRecipients serves a fixed recipient pool in one batch, applying the
// compiled filter against each recipient's attribute bag the way the real
// resolver's SQL predicate would.
type fakeRecipients struct {
    pool []poolEntry
    err  error // returned after the batch, like a partial resolution
}

type poolEntry struct {
    token model.RecipientToken
    attrs map[string]any
}

func (f *fakeRecipients) Resolve(ctx context.Context, applicationID int64, filter *segment.Filter, fn func(batch []model.RecipientToken) error) error {
    batch := []model.RecipientToken{}
    for _, e := range f.pool {
        if e.token.ApplicationID != applicationID {
            continue
        }
        if !filter.Empty() && !filter.Matches(e.attrs) {
            continue
        }
        batch = append(batch, e.token)
    }
    if len(batch) > 0 {
        if err := fn(batch); err != nil {
            return err
        }
    }
    return f.err
}

type ledgerKey struct {
    campaignID    int64
    tokenID       int64
    applicationID int64
}

type ledgerRow struct {
    userID int64
    status string
    errMsg string
}

// fakeLedger upserts rows the way the notifications unique constraint does.
type fakeLedger struct {
    mu   sync.Mutex
    rows map[ledgerKey]ledgerRow
}

func newFakeLedger() *fakeLedger {
    return &fakeLedger{rows: map[ledgerKey]ledgerRow{}}
}

func (f *fakeLedger) Record(ctx context.Context, campaignID, userID int64, tokenID *int64, applicationID int64, status string, errMsg *string) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    row := ledgerRow{userID: userID, status: status}
    if errMsg != nil {
        row.errMsg = *errMsg
    }
    f.rows[ledgerKey{campaignID, *tokenID, applicationID}] = row
    return nil
}

func (f *fakeLedger) count(status string) int {
    f.mu.Lock()
    defer f.mu.Unlock()
    n := 0
    for _, row := range f.rows {
        if row.status == status {
            n++
        }
    }
    return n
}

type fakeMarker struct {
    mu   sync.Mutex
    sent []int64
}

func (f *fakeMarker) MarkSent(ctx context.Context, id int64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.sent = append(f.sent, id)
    return nil
}

// fakeDispatcher delivers everything except tokens listed in failWith.
type fakeDispatcher struct {
    failWith map[string]string // device token -> error text
}

func (d *fakeDispatcher) Send(ctx context.Context, job model.CampaignJob, batch []model.RecipientToken) []Outcome {
    outcomes := make([]Outcome, len(batch))
    for i, t := range batch {
        if msg, ok := d.failWith[t.DeviceToken]; ok {
            outcomes[i] = Outcome{Token: t, Status: model.OutcomeFailed, Error: msg}
            continue
        }
        outcomes[i] = Outcome{Token: t, Status: model.OutcomeDelivered}
    }
    return outcomes
}

func selectFake(d Dispatcher) SelectFunc {
    return func(app model.Application, timeout time.Duration) (Dispatcher, error) {
        return d, nil
    }
}

func webApp(id int64) model.Application {
    return model.Application{ID: id, CustomerID: 1, Platform: model.PlatformWeb, Credentials: []byte(`{"type":"vapid"}`)}
}

func entry(tokenID int64, device string, attrs map[string]any) poolEntry {
    return poolEntry{
        token: model.RecipientToken{ID: tokenID, UserID: tokenID * 10, ApplicationID: 1, DeviceToken: device},
        attrs: attrs,
    }
}

func newEngine(apps *fakeApps, rec *fakeRecipients, ledger *fakeLedger, marker *fakeMarker, d Dispatcher) *Engine {
    return &Engine{
        Apps:       apps,
        Recipients: rec,
        Ledger:     ledger,
        Campaigns:  marker,
        Select:     selectFake(d),
    }
}

func TestDispatchAllDelivered(t *testing.T) {
    apps := &fakeApps{apps: []model.Application{webApp(1)}}
    rec := &fakeRecipients{pool: []poolEntry{
        entry(1, "dev-a", nil), entry(2, "dev-b", nil), entry(3, "dev-c", nil),
    }}
    ledger := newFakeLedger()
    marker := &fakeMarker{}
    e := newEngine(apps, rec, ledger, marker, &fakeDispatcher{})

    err := e.Dispatch(context.Background(), model.CampaignJob{ID: 7, ApplicationIDs: []int64{1}})
    require.NoError(t, err)

    assert.Equal(t, 3, ledger.count(model.OutcomeDelivered))
    assert.Equal(t, 0, ledger.count(model.OutcomeFailed))
    assert.Equal(t, []int64{7}, marker.sent)
}

func TestDispatchSegmentFilter(t *testing.T) {
    apps := &fakeApps{apps: []model.Application{webApp(1)}}
    rec := &fakeRecipients{pool: []poolEntry{
        entry(1, "dev-a", map[string]any{"city": "Istanbul"}),
        entry(2, "dev-b", map[string]any{"city": "Ankara"}),
        entry(3, "dev-c", map[string]any{"city": "Istanbul"}),
        entry(4, "dev-d", map[string]any{"city": "Izmir"}),
        entry(5, "dev-e", map[string]any{"city": "Bursa"}),
    }}
    ledger := newFakeLedger()
    marker := &fakeMarker{}
    e := newEngine(apps, rec, ledger, marker, &fakeDispatcher{})

    job := model.CampaignJob{
        ID:             8,
        ApplicationIDs: []int64{1},
        SegmentQuery:   model.SegmentQuery{"city": "Istanbul"},
    }
    require.NoError(t, e.Dispatch(context.Background(), job))

    assert.Len(t, ledger.rows, 2, "exactly the matching recipients are dispatched")
    assert.Equal(t, 2, ledger.count(model.OutcomeDelivered))
}

func TestDispatchOneTimeoutStillCompletes(t *testing.T) {
    apps := &fakeApps{apps: []model.Application{webApp(1)}}
    rec := &fakeRecipients{pool: []poolEntry{
        entry(1, "dev-a", nil), entry(2, "dev-b", nil), entry(3, "dev-c", nil),
    }}
    ledger := newFakeLedger()
    marker := &fakeMarker{}
    e := newEngine(apps, rec, ledger, marker, &fakeDispatcher{
        failWith: map[string]string{"dev-b": "send timeout"},
    })

    require.NoError(t, e.Dispatch(context.Background(), model.CampaignJob{ID: 9, ApplicationIDs: []int64{1}}))

    assert.Equal(t, 2, ledger.count(model.OutcomeDelivered))
    assert.Equal(t, 1, ledger.count(model.OutcomeFailed))
    assert.Equal(t, []int64{9}, marker.sent, "a per-recipient timeout never blocks completion")
}

func TestDispatchRedeliveryIsIdempotent(t *testing.T) {
    apps := &fakeApps{apps: []model.Application{webApp(1)}}
    rec := &fakeRecipients{pool: []poolEntry{
        entry(1, "dev-a", nil), entry(2, "dev-b", nil), entry(3, "dev-c", nil),
    }}
    ledger := newFakeLedger()
    marker := &fakeMarker{}
    e := newEngine(apps, rec, ledger, marker, &fakeDispatcher{})

    job := model.CampaignJob{ID: 10, ApplicationIDs: []int64{1}}
    require.NoError(t, e.Dispatch(context.Background(), job))
    require.NoError(t, e.Dispatch(context.Background(), job))

    assert.Len(t, ledger.rows, 3, "replaying the job overwrites, never duplicates")
    assert.Equal(t, 3, ledger.count(model.OutcomeDelivered))
}

func TestDispatchNoApplications(t *testing.T) {
    apps := &fakeApps{apps: nil}
    ledger := newFakeLedger()
    marker := &fakeMarker{}
    e := newEngine(apps, &fakeRecipients{}, ledger, marker, &fakeDispatcher{})

    err := e.Dispatch(context.Background(), model.CampaignJob{ID: 11, ApplicationIDs: []int64{404}})
    require.Error(t, err)
    assert.True(t, errors.Is(err, appErrors.ErrNoApplications))
    assert.Empty(t, marker.sent, "a dead campaign is never marked sent")
}

func TestDispatchApplicationLookupErrorIsRetryable(t *testing.T) {
    apps := &fakeApps{err: fmt.Errorf("db unavailable")}
    e := newEngine(apps, &fakeRecipients{}, newFakeLedger(), &fakeMarker{}, &fakeDispatcher{})

    err := e.Dispatch(context.Background(), model.CampaignJob{ID: 12, ApplicationIDs: []int64{1}})
    require.Error(t, err)
    assert.False(t, errors.Is(err, appErrors.ErrNoApplications))
}

func TestDispatchPartialResolutionStillSends(t *testing.T) {
    apps := &fakeApps{apps: []model.Application{webApp(1)}}
    rec := &fakeRecipients{
        pool: []poolEntry{entry(1, "dev-a", nil), entry(2, "dev-b", nil)},
        err:  fmt.Errorf("%w: page 2 lost", appErrors.ErrPartialResolution),
    }
    ledger := newFakeLedger()
    marker := &fakeMarker{}
    e := newEngine(apps, rec, ledger, marker, &fakeDispatcher{})

    require.NoError(t, e.Dispatch(context.Background(), model.CampaignJob{ID: 13, ApplicationIDs: []int64{1}}))

    assert.Equal(t, 2, ledger.count(model.OutcomeDelivered), "already-fetched recipients still dispatched")
    assert.Equal(t, []int64{13}, marker.sent)
}

func TestDispatchBadFilterClosesCampaign(t *testing.T) {
    ledger := newFakeLedger()
    marker := &fakeMarker{}
    e := newEngine(&fakeApps{}, &fakeRecipients{}, ledger, marker, &fakeDispatcher{})

    job := model.CampaignJob{
        ID:             15,
        ApplicationIDs: []int64{1},
        SegmentQuery:   model.SegmentQuery{"age": ">abc"},
    }
    require.NoError(t, e.Dispatch(context.Background(), job))

    assert.Empty(t, ledger.rows, "nothing is dispatched for an uncompilable filter")
    assert.Equal(t, []int64{15}, marker.sent, "the campaign still leaves queued")
}

func TestDispatchSelectionFailureLedgersWholeBatch(t *testing.T) {
    apps := &fakeApps{apps: []model.Application{
        {ID: 1, Platform: "gopher", Credentials: []byte(`{"type":"fcm"}`)},
    }}
    rec := &fakeRecipients{pool: []poolEntry{entry(1, "dev-a", nil), entry(2, "dev-b", nil)}}
    ledger := newFakeLedger()
    marker := &fakeMarker{}
    e := &Engine{Apps: apps, Recipients: rec, Ledger: ledger, Campaigns: marker}

    require.NoError(t, e.Dispatch(context.Background(), model.CampaignJob{ID: 14, ApplicationIDs: []int64{1}}))

    assert.Equal(t, 2, ledger.count(model.OutcomeFailed))
    assert.Equal(t, []int64{14}, marker.sent)
}
