package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReportPoster posts the reject list to a chat
type ReportPoster interface {
	PostBlockedList(ctx context.Context, chatID string) error
}

// CronRunner periodically posts the reject list report to one chat
type CronRunner struct {
	poster   ReportPoster
	chatID   string
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewCronRunner creates a new cron runner
func NewCronRunner(poster ReportPoster, chatID string, interval time.Duration, logger *zap.Logger) *CronRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CronRunner{
		poster:   poster,
		chatID:   chatID,
		interval: interval,
		logger:   logger.Named("cron"),
	}
}

// Enabled reports whether a chat and a positive interval are configured
func (r *CronRunner) Enabled() bool {
	return r.chatID != "" && r.interval > 0
}

// Start starts the cron runner; it is a no-op when not enabled
func (r *CronRunner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running || !r.Enabled() {
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.wg.Add(1)
	go r.loop(r.stopCh)
	r.logger.Info("Started", zap.Duration("interval", r.interval), zap.String("chat_id", r.chatID))
}

// Stop stops the cron runner and waits for an in-flight report
func (r *CronRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Info("Stopped")
}

func (r *CronRunner) loop(stopCh chan struct{}) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runReport()
		case <-stopCh:
			return
		}
	}
}

// runReport posts one report, bounded by the interval
func (r *CronRunner) runReport() {
	ctx, cancel := context.WithTimeout(context.Background(), r.interval)
	defer cancel()

	start := time.Now()
	if err := r.poster.PostBlockedList(ctx, r.chatID); err != nil {
		r.logger.Error("Scheduled report failed", zap.String("chat_id", r.chatID), zap.Error(err))
		return
	}
	r.logger.Info("Scheduled report posted", zap.String("chat_id", r.chatID), zap.Duration("elapsed", time.Since(start)))
}
