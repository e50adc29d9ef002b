// internal/model/campaign.go
package model

import (
    "database/sql/driver"
    "encoding/json"
    "fmt"
    "time"

    "github.com/lib/pq"
)

// Campaign statuses. Status only moves forward: draft -> queued -> sent.
const (
    StatusDraft  = "draft"
    StatusQueued = "queued"
    StatusSent   = "sent"
)

type Campaign struct {
    ID             int64         `db:"id" json:"id"`
    CustomerID     int64         `db:"customer_id" json:"customer_id"`
    Title          string        `db:"title" json:"title"`
    Message        string        `db:"message" json:"message"`
    ApplicationIDs pq.Int64Array `db:"application_ids" json:"application_ids"`
    SegmentQuery   SegmentQuery  `db:"segment_query" json:"segment_query,omitempty"`
    ScheduledAt    *time.Time    `db:"scheduled_at" json:"scheduled_at,omitempty"`
    Status         string        `db:"status" json:"status"`
    CreatedAt      time.Time     `db:"created_at" json:"created_at"`
    UpdatedAt      *time.Time    `db:"updated_at" json:"updated_at,omitempty"`
}

// SegmentQuery is the raw attribute filter as authored, e.g.
// {"city": "Istanbul", "age": ">25"}. Stored as jsonb; nil means no filter.
type SegmentQuery map[string]string

func (q SegmentQuery) Value() (driver.Value, error) {
    if q == nil {
        return nil, nil
    }
    return json.Marshal(q)
}

func (q *SegmentQuery) Scan(src any) error {
    if src == nil {
        *q = nil
        return nil
    }
    var b []byte
    switch v := src.(type) {
    case []byte:
        b = v
    case string:
        b = []byte(v)
    default:
        return fmt.Errorf("segment_query: cannot scan %T", src)
    }
    return json.Unmarshal(b, q)
}

// CampaignJob is the queue message carrying one campaign dispatch. It is a
// snapshot of the campaign row at enqueue time.
type CampaignJob struct {
    ID             int64        `json:"id"`
    CustomerID     int64        `json:"customer_id"`
    Title          string       `json:"title"`
    Message        string       `json:"message"`
    ApplicationIDs []int64      `json:"application_ids"`
    SegmentQuery   SegmentQuery `json:"segment_query,omitempty"`
    ScheduledAt    *time.Time   `json:"scheduled_at,omitempty"`
    CreatedAt      time.Time    `json:"created_at"`
}

func (c *Campaign) Job() CampaignJob {
    return CampaignJob{
        ID:             c.ID,
        CustomerID:     c.CustomerID,
        Title:          c.Title,
        Message:        c.Message,
        ApplicationIDs: []int64(c.ApplicationIDs),
        SegmentQuery:   c.SegmentQuery,
        ScheduledAt:    c.ScheduledAt,
        CreatedAt:      c.CreatedAt,
    }
}
