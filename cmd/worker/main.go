// cmd/worker/main.go
package main

import (
    "context"
    "log"
    "os/signal"
    "syscall"

    "github.com/umutalparslan/push-notification-system/internal/cache"
    "github.com/umutalparslan/push-notification-system/internal/config"
    "github.com/umutalparslan/push-notification-system/internal/db"
    "github.com/umutalparslan/push-notification-system/internal/dispatch"
    "github.com/umutalparslan/push-notification-system/internal/queue"
    "github.com/umutalparslan/push-notification-system/internal/repository"
    "github.com/umutalparslan/push-notification-system/internal/resolver"
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

    redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
    defer redisCache.Close()

    applicationRepo := &repository.ApplicationRepository{DB: conn}
    campaignRepo := &repository.CampaignRepository{DB: conn}
    tokenRepo := &repository.TokenRepository{DB: conn}
    notificationRepo := &repository.NotificationRepository{DB: conn}

    engine := &dispatch.Engine{
        Apps: &cache.ApplicationCache{
            Repo:  applicationRepo,
            Cache: redisCache,
        },
        Recipients: &resolver.Resolver{
            Tokens:   tokenRepo,
            PageSize: cfg.ResolvePageSize,
        },
        Ledger:      notificationRepo,
        Campaigns:   campaignRepo,
        Concurrency: cfg.AppConcurrency,
        SendTimeout: cfg.SendTimeout,
    }

    // Cancellation is cooperative: the in-flight job finishes (or fails and
    // stays unacked) before the loop exits.
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    if err := q.Consume(ctx, engine); err != nil && ctx.Err() == nil {
        log.Fatal("consumer stopped:", err)
    }
    log.Println("worker shut down")
}
