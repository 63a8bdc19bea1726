package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/susradar/internal/domain"
	"github.com/MrSnakeDoc/susradar/internal/logger"
	"github.com/MrSnakeDoc/susradar/internal/remote"
)

// Prober reports whether the sync server just came back online.
type Prober interface {
	Probe(ctx context.Context) (cameOnline bool)
}

// Syncer reconciles the local dataset with the sync server.
type Syncer interface {
	Sync(ctx context.Context) (*remote.SyncResult, error)
}

// ConnectivityMonitor probes the sync server periodically and syncs when it
// comes back online.
type ConnectivityMonitor struct {
	prober        Prober
	syncer        Syncer
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewConnectivityMonitor creates a new monitor. manualTrigger forces a probe.
func NewConnectivityMonitor(
	prober Prober,
	syncer Syncer,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		prober:        prober,
		syncer:        syncer,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start probes once, then keeps probing in the background
func (cm *ConnectivityMonitor) Start(ctx context.Context) {
	cm.Check(ctx)

	ticker := time.NewTicker(cm.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cm.Check(ctx)
			case <-cm.manualTrigger:
				cm.logger.Debug("manual connectivity check triggered")
				cm.Check(ctx)
			case <-cm.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the monitor
func (cm *ConnectivityMonitor) Stop() {
	close(cm.stopCh)
}

// Check probes the server and syncs on an offline to online transition.
// It reports whether a sync ran successfully.
func (cm *ConnectivityMonitor) Check(ctx context.Context) bool {
	if !cm.prober.Probe(ctx) || cm.syncer == nil {
		return false
	}

	res, err := cm.syncer.Sync(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAuthenticationFailed) {
			cm.logger.Debug("back online but not logged in, skipping sync")
			return false
		}
		cm.logger.Warn("sync after reconnect failed", logger.Error(err))
		return false
	}

	cm.logger.Info("synced after reconnect",
		logger.Int("companies", res.Companies),
		logger.Int("urls", res.URLs))
	return true
}
