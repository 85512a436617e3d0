package utils

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Probe checks one dependency.
type Probe func(ctx context.Context) error

func RedisProbe(client *redis.Client) Probe {
	return func(ctx context.Context) error { return client.Ping(ctx).Err() }
}

func MongoProbe(client *mongo.Client) Probe {
	return func(ctx context.Context) error { return client.Ping(ctx, nil) }
}

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Healthy   bool            `json:"healthy"`
	Services  map[string]bool `json:"services"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// HealthMonitor keeps the latest health snapshot of the registered probes.
type HealthMonitor struct {
	probes  map[string]Probe
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(probes map[string]Probe, logger *zap.Logger) *HealthMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthMonitor{probes: probes, timeout: 2 * time.Second, logger: logger}
}

// Status returns latest stored health snapshot.
func (h *HealthMonitor) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Check runs every probe once and stores the result.
func (h *HealthMonitor) Check(ctx context.Context) HealthStatus {
	names := make([]string, 0, len(h.probes))
	for name := range h.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	status := HealthStatus{Healthy: true, Services: make(map[string]bool, len(names)), CheckedAt: time.Now()}
	for _, name := range names {
		pctx, cancel := context.WithTimeout(ctx, h.timeout)
		err := h.probes[name](pctx)
		cancel()
		status.Services[name] = err == nil
		if err != nil {
			status.Healthy = false
			h.logger.Warn("health probe failed", zap.String("service", name), zap.Error(err))
		}
	}

	h.mu.Lock()
	h.current = status
	h.mu.Unlock()
	return status
}

// Start performs periodic health checks until ctx is done.
func (h *HealthMonitor) Start(ctx context.Context, interval time.Duration) {
	h.Check(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.Check(ctx)
			}
		}
	}()
}
