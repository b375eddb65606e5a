package services

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// CronService periodically evicts idle sessions from memory.
type CronService struct {
	ticker   *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once

	sessions *SessionService
	interval time.Duration
	maxIdle  time.Duration
	logger   *zap.Logger
}

func NewCronService(sessions *SessionService, interval, maxIdle time.Duration, logger *zap.Logger) *CronService {
	return &CronService{
		stopChan: make(chan struct{}),
		sessions: sessions,
		interval: interval,
		maxIdle:  maxIdle,
		logger:   logger,
	}
}

func (s *CronService) Start() {
	s.ticker = time.NewTicker(s.interval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.evictIdleSessions()
			case <-s.stopChan:
				return
			}
		}
	}()

	s.logger.Info("Session sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("max_idle", s.maxIdle),
	)
}

func (s *CronService) Stop() {
	s.stopOnce.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopChan)
		s.logger.Info("Session sweeper stopped")
	})
}

func (s *CronService) evictIdleSessions() {
	evicted := s.sessions.EvictIdle(s.maxIdle)
	if evicted > 0 {
		s.logger.Info("Evicted idle sessions",
			zap.Int("evicted", evicted),
			zap.Int("active", s.sessions.ActiveSessions()),
		)
	}
}
