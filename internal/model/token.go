// internal/model/token.go
package model

import "time"

// RecipientToken is one device-specific delivery address bound to a user.
// DeviceToken is opaque: an FCM registration token, a 64-char hex APNs token,
// or a serialized web-push subscription, depending on the platform.
type RecipientToken struct {
    ID            int64     `db:"id" json:"id"`
    UserID        int64     `db:"user_id" json:"user_id"`
    ApplicationID int64     `db:"application_id" json:"application_id"`
    DeviceToken   string    `db:"device_token" json:"device_token"`
    Platform      string    `db:"platform" json:"platform"`
    CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
