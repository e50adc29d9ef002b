// cmd/server/main.go
package main

import (
    "context"
    "log"
    "net/http"

    "github.com/go-chi/chi/v5"

    "github.com/umutalparslan/push-notification-system/internal/config"
    "github.com/umutalparslan/push-notification-system/internal/db"
    "github.com/umutalparslan/push-notification-system/internal/handler"
    "github.com/umutalparslan/push-notification-system/internal/queue"
    "github.com/umutalparslan/push-notification-system/internal/repository"
    "github.com/umutalparslan/push-notification-system/internal/scheduler"
    "github.com/umutalparslan/push-notification-system/internal/service"
)

func main() {
    cfg := config.Load()

    conn, err := db.Connect(cfg.DatabaseURL)
    if err != nil {
        log.Fatal("failed to connect to DB:", err)
    }

    q, err := queue.Connect(cfg.AMQPURL, cfg.QueueName)
    if err != nil {
        log.Fatal("Failed to connect to RabbitMQ:", err)
    }
    defer q.Close()

    campaignRepo := &repository.CampaignRepository{DB: conn}
    applicationRepo := &repository.ApplicationRepository{DB: conn}
    tokenRepo := &repository.TokenRepository{DB: conn}
    notificationRepo := &repository.NotificationRepository{DB: conn}

    campaignService := &service.CampaignService{
        CampaignRepo:     campaignRepo,
        ApplicationRepo:  applicationRepo,
        NotificationRepo: notificationRepo,
        Queue:            q,
    }

    sched := &scheduler.Scheduler{
        Campaigns: campaignRepo,
        Queue:     q,
        Interval:  cfg.SchedulerInterval,
    }
    go sched.Run(context.Background())

    campaignHandler := &handler.CampaignHandler{Service: campaignService}
    applicationHandler := &handler.ApplicationHandler{Repo: applicationRepo}
    subscriptionHandler := &handler.SubscriptionHandler{
        Applications: applicationRepo,
        Tokens:       tokenRepo,
    }

    r := chi.NewRouter()

    // Campaign routes
    r.Post("/api/campaigns", campaignHandler.CreateCampaign)
    r.Get("/api/campaigns", campaignHandler.ListCampaigns)
    r.Get("/api/campaigns/{id}", campaignHandler.GetCampaign)
    r.Post("/api/campaigns/{id}/send", campaignHandler.SendCampaign)
    r.Get("/api/campaigns/{id}/report", campaignHandler.GetReport)

    // Application routes
    r.Post("/api/applications", applicationHandler.CreateApplication)
    r.Get("/api/applications", applicationHandler.ListApplications)

    // External token registration
    r.Post("/api/external/subscription", subscriptionHandler.RegisterToken)

    log.Println("🚀 Server running on :" + cfg.HTTPPort)
    log.Fatal(http.ListenAndServe(":"+cfg.HTTPPort, r))
}
