// internal/model/notification.go
package model

import "time"

// Delivery outcomes recorded in the notification ledger.
const (
    OutcomeDelivered = "delivered"
    OutcomeFailed    = "failed"
)

// Notification is one ledger row: the delivery outcome for a single
// (campaign, token, application) key. At most one row exists per key;
// a later attempt overwrites status and error_message.
type Notification struct {
    ID            int64     `db:"id" json:"id"`
    CampaignID    int64     `db:"campaign_id" json:"campaign_id"`
    UserID        int64     `db:"user_id" json:"user_id"`
    TokenID       *int64    `db:"token_id" json:"token_id,omitempty"`
    ApplicationID int64     `db:"application_id" json:"application_id"`
    Status        string    `db:"status" json:"status"`
    ErrorMessage  *string   `db:"error_message" json:"error_message,omitempty"`
    CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// CampaignReport aggregates ledger rows by status for one campaign.
type CampaignReport struct {
    CampaignID int64 `json:"campaign_id"`
    Delivered  int   `json:"delivered"`
    Failed     int   `json:"failed"`
}
