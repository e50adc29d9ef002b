// internal/model/application.go
package model

import (
    "encoding/json"
    "fmt"
    "time"
)

// Platforms an application can target.
const (
    PlatformIOS     = "ios"
    PlatformAndroid = "android"
    PlatformWeb     = "web"
)

// Credential kinds carried in the application's credentials blob.
const (
    CredentialFCM   = "fcm"
    CredentialP8    = "p8"
    CredentialP12   = "p12"
    CredentialVAPID = "vapid"
)

type Application struct {
    ID          int64           `db:"id" json:"id"`
    CustomerID  int64           `db:"customer_id" json:"customer_id"`
    Name        string          `db:"name" json:"name"`
    Platform    string          `db:"platform" json:"platform"`
    Credentials json.RawMessage `db:"credentials" json:"credentials"`
    CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Credentials is the decoded shape of the opaque blob. Which fields are set
// depends on Type:
//
//	fcm:   ServiceAccount
//	p8:    Key (base64 .p8), KeyID, TeamID, BundleID
//	p12:   Certificate (base64 .p12), Password, BundleID
//	vapid: PublicKey, PrivateKey, Subject
type Credentials struct {
    Type           string          `json:"type"`
    ServiceAccount json.RawMessage `json:"service_account,omitempty"`
    Key            string          `json:"key,omitempty"`
    KeyID          string          `json:"key_id,omitempty"`
    TeamID         string          `json:"team_id,omitempty"`
    Certificate    string          `json:"certificate,omitempty"`
    Password       string          `json:"password,omitempty"`
    BundleID       string          `json:"bundle_id,omitempty"`
    PublicKey      string          `json:"public_key,omitempty"`
    PrivateKey     string          `json:"private_key,omitempty"`
    Subject        string          `json:"subject,omitempty"`
}

func (a *Application) ParseCredentials() (*Credentials, error) {
    var c Credentials
    if err := json.Unmarshal(a.Credentials, &c); err != nil {
        return nil, fmt.Errorf("application %d: invalid credentials blob: %w", a.ID, err)
    }
    if c.Type == "" {
        return nil, fmt.Errorf("application %d: credentials missing type", a.ID)
    }
    return &c, nil
}
