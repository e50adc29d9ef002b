// internal/cache/application_cache.go
package cache

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "time"

    "github.com/umutalparslan/push-notification-system/internal/model"
    "github.com/umutalparslan/push-notification-system/internal/repository"
)

const applicationTTL = 5 * time.Minute

// ApplicationCache is a read-through cache over the application repository.
// Applications are read-only input to the dispatch path, so a short TTL is
// enough. Any cache error degrades to a direct DB read.
type ApplicationCache struct {
    Repo  repository.ApplicationRepositoryInterface
    Cache Cache
}

func (c *ApplicationCache) ListByIDs(ctx context.Context, ids []int64) ([]model.Application, error) {
    apps := make([]model.Application, 0, len(ids))
    var missing []int64

    for _, id := range ids {
        b, ok, err := c.Cache.Get(ctx, applicationKey(id))
        if err != nil {
            log.Println("⚠️ application cache get failed:", err)
            ok = false
        }
        if !ok {
            missing = append(missing, id)
            continue
        }
        var a model.Application
        if err := json.Unmarshal(b, &a); err != nil {
            missing = append(missing, id)
            continue
        }
        apps = append(apps, a)
    }

    if len(missing) == 0 {
        return apps, nil
    }

    fetched, err := c.Repo.ListByIDs(ctx, missing)
    if err != nil {
        return nil, err
    }
    for _, a := range fetched {
        if b, err := json.Marshal(a); err == nil {
            if err := c.Cache.Set(ctx, applicationKey(a.ID), b, applicationTTL); err != nil {
                log.Println("⚠️ application cache set failed:", err)
            }
        }
    }

    return append(apps, fetched...), nil
}

func applicationKey(id int64) string {
    return fmt.Sprintf("app:%d", id)
}
