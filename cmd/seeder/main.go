// cmd/seeder/main.go
package main

import (
    "context"
    "encoding/json"
    "fmt"
    "log"

    "github.com/umutalparslan/push-notification-system/internal/config"
    "github.com/umutalparslan/push-notification-system/internal/db"
    "github.com/umutalparslan/push-notification-system/internal/model"
    "github.com/umutalparslan/push-notification-system/internal/repository"
)

// Seeds a demo customer with one web application and a handful of users and
// tokens, enough to drive a campaign end to end locally.
func main() {
    cfg := config.Load()

    conn, err := db.Connect(cfg.DatabaseURL)
    if err != nil {
        log.Fatal("failed to connect to DB:", err)
    }

    ctx := context.Background()

    var customerID int64
    err = conn.QueryRowContext(ctx,
        `INSERT INTO customers (email, company_name, created_at) VALUES ($1, $2, NOW()) RETURNING id`,
        "demo@example.com", "Demo Co",
    ).Scan(&customerID)
    if err != nil {
        log.Fatal("failed to seed customer:", err)
    }

    creds, _ := json.Marshal(map[string]string{
        "type":        "vapid",
        "public_key":  "BDemoPublicKey",
        "private_key": "DemoPrivateKey",
        "subject":     "mailto:demo@example.com",
    })
    appRepo := &repository.ApplicationRepository{DB: conn}
    app := &model.Application{
        CustomerID:  customerID,
        Name:        "demo-web",
        Platform:    model.PlatformWeb,
        Credentials: creds,
    }
    if err := appRepo.Create(ctx, app); err != nil {
        log.Fatal("failed to seed application:", err)
    }

    tokenRepo := &repository.TokenRepository{DB: conn}
    cities := []string{"Istanbul", "Ankara", "Istanbul", "Izmir", "Istanbul"}
    for i, city := range cities {
        attrs, _ := json.Marshal(map[string]any{"city": city, "age": 20 + i*5})
        var userID int64
        err = conn.QueryRowContext(ctx,
            `INSERT INTO users (customer_id, attributes, created_at) VALUES ($1, $2, NOW()) RETURNING id`,
            customerID, attrs,
        ).Scan(&userID)
        if err != nil {
            log.Fatal("failed to seed user:", err)
        }

        sub, _ := json.Marshal(map[string]any{
            "endpoint": fmt.Sprintf("https://push.example.com/sub/%d", userID),
            "keys":     map[string]string{"p256dh": "demo", "auth": "demo"},
        })
        t := &model.RecipientToken{
            UserID:        userID,
            ApplicationID: app.ID,
            DeviceToken:   string(sub),
            Platform:      model.PlatformWeb,
        }
        if err := tokenRepo.Create(ctx, t); err != nil {
            log.Fatal("failed to seed token:", err)
        }
    }

    log.Printf("✅ Seeded customer %d, application %d, %d users with tokens", customerID, app.ID, len(cities))
}
