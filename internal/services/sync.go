package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/hoops-oracle/internal/analytics"
)

// PoolRefresher reloads a league's available pool from the provider
type PoolRefresher interface {
	RefreshPool(ctx context.Context, leagueKey string) ([]analytics.PlayerStats, error)
}

// SyncService refreshes the configured league's pool on a schedule and stores
// the raw stat lines
type SyncService struct {
	players   PoolRefresher
	snapshots SnapshotStore
	leagueKey string
	interval  time.Duration
	timeout   time.Duration
	logger    *logrus.Logger
	cron      *cron.Cron

	mu        sync.Mutex
	isRunning bool
	lastRun   time.Time
	lastErr   error
}

// NewSyncService creates a sync service. snapshots may be nil to only warm the cache.
func NewSyncService(players PoolRefresher, snapshots SnapshotStore, leagueKey string, interval time.Duration, logger *logrus.Logger) *SyncService {
	return &SyncService{
		players:   players,
		snapshots: snapshots,
		leagueKey: leagueKey,
		interval:  interval,
		timeout:   5 * time.Minute,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start schedules the sync job and runs it once immediately
func (s *SyncService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("sync service is already running")
	}
	if s.leagueKey == "" {
		return fmt.Errorf("sync service needs a league key")
	}

	schedule := fmt.Sprintf("@every %s", s.interval.String())
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return fmt.Errorf("failed to schedule pool sync: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	go s.run()

	s.logger.WithFields(logrus.Fields{
		"league_key": s.leagueKey,
		"interval":   s.interval.String(),
	}).Info("Pool sync service started")
	return nil
}

// Stop halts the schedule and waits for a running job to finish
func (s *SyncService) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Pool sync service stopped")
}

// SyncNow refreshes the pool and persists it
func (s *SyncService) SyncNow(ctx context.Context) (int, error) {
	start := time.Now()
	log := s.logger.WithField("league_key", s.leagueKey)

	players, err := s.players.RefreshPool(ctx, s.leagueKey)
	if err != nil {
		s.record(err)
		return 0, err
	}

	saved := 0
	if s.snapshots != nil {
		saved, err = s.snapshots.SavePool(ctx, s.leagueKey, players, time.Now())
		if err != nil {
			s.record(err)
			return 0, fmt.Errorf("failed to store pool snapshot: %w", err)
		}
	}

	s.record(nil)
	log.WithFields(logrus.Fields{
		"players":  len(players),
		"saved":    saved,
		"duration": time.Since(start).String(),
	}).Info("Completed pool sync")
	return len(players), nil
}

// Status reports the last run time and error
func (s *SyncService) Status() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

func (s *SyncService) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.SyncNow(ctx); err != nil {
		s.logger.WithError(err).WithField("league_key", s.leagueKey).Error("Scheduled pool sync failed")
	}
}

func (s *SyncService) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = time.Now()
	s.lastErr = err
}
