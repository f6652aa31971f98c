package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus is the latest snapshot of every dependency the service needs
// to take bookings and settle payments.
type HealthStatus struct {
	Healthy   bool      `json:"healthy"`
	Mongo     bool      `json:"mongo"`
	Cache     bool      `json:"cache"`
	RateLimit bool      `json:"rateLimit"`
	Queue     bool      `json:"queue"`
	CheckedAt time.Time `json:"checkedAt"`
}

// HealthDeps names the probed clients. Queue is the redis database the task
// queue runs on; a dead queue stalls reminders and notifications silently,
// so it is surfaced here instead.
type HealthDeps struct {
	Mongo     *mongo.Client
	Cache     *redis.Client
	RateLimit *redis.Client
	Queue     *redis.Client
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor probes the dependencies immediately and then on the
// given interval, keeping the snapshot served by /health current. A
// non-positive interval defaults to one minute.
func StartHealthMonitor(deps HealthDeps, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		probeHealth(deps)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			probeHealth(deps)
		}
	}()
}

func probeHealth(deps HealthDeps) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status := HealthStatus{
		Mongo:     deps.Mongo != nil && deps.Mongo.Ping(ctx, nil) == nil,
		Cache:     pingRedis(ctx, deps.Cache),
		RateLimit: pingRedis(ctx, deps.RateLimit),
		Queue:     pingRedis(ctx, deps.Queue),
		CheckedAt: time.Now(),
	}
	status.Healthy = status.Mongo && status.Cache && status.RateLimit && status.Queue

	healthMu.Lock()
	currentHealth = status
	healthMu.Unlock()
}

func pingRedis(ctx context.Context, client *redis.Client) bool {
	return client != nil && client.Ping(ctx).Err() == nil
}
