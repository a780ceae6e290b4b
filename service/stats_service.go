package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"walrus/models"

	log "github.com/sirupsen/logrus"
)

// StatsCollector implements StatsService with in-memory counters that are
// periodically flushed to a StatsRepository
type StatsCollector struct {
	repo      StatsRepository
	startedAt time.Time

	mu            sync.Mutex
	sessionSocket map[string]int64
	commandsSince int64
	pendingUsages []models.CommandUsage
	pendingSocket map[string]int64
	pendingNicks  []models.NicknameChange
}

// NewStatsService creates a new stats service
func NewStatsService(repo StatsRepository) *StatsCollector {
	return &StatsCollector{
		repo:          repo,
		startedAt:     time.Now().UTC(),
		sessionSocket: make(map[string]int64),
		pendingSocket: make(map[string]int64),
	}
}

// RecordCommand queues a command usage for the next flush
func (s *StatsCollector) RecordCommand(usage models.CommandUsage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commandsSince++
	s.pendingUsages = append(s.pendingUsages, usage)
}

// RecordSocketEvent counts one gateway event of the given type
func (s *StatsCollector) RecordSocketEvent(name string) {
	if name == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionSocket[name]++
	s.pendingSocket[name]++
}

// RecordNickname queues a nickname change for the next flush
func (s *StatsCollector) RecordNickname(change models.NicknameChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pendingNicks = append(s.pendingNicks, change)
}

func (s *StatsCollector) SessionSocketStats() []models.SocketStat {
	s.mu.Lock()
	stats := make([]models.SocketStat, 0, len(s.sessionSocket))
	for name, count := range s.sessionSocket {
		stats = append(stats, models.SocketStat{Name: name, Count: count})
	}
	s.mu.Unlock()

	sortSocketStats(stats)
	return stats
}

func (s *StatsCollector) CommandsSinceRestart() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commandsSince
}

func (s *StatsCollector) StartedAt() time.Time {
	return s.startedAt
}

func (s *StatsCollector) SocketTotals(ctx context.Context) ([]models.SocketStat, error) {
	stats, err := s.repo.SocketTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get socket totals: %w", err)
	}
	return stats, nil
}

func (s *StatsCollector) CommandCount(ctx context.Context) (int64, error) {
	count, err := s.repo.CommandCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get command count: %w", err)
	}
	return count, nil
}

// Flush writes everything recorded since the last flush. On failure the
// batch is merged back so it is retried on the next flush.
func (s *StatsCollector) Flush(ctx context.Context) error {
	s.mu.Lock()
	usages, socket, nicks := s.pendingUsages, s.pendingSocket, s.pendingNicks
	s.pendingUsages = nil
	s.pendingSocket = make(map[string]int64)
	s.pendingNicks = nil
	s.mu.Unlock()

	if len(usages) == 0 && len(socket) == 0 && len(nicks) == 0 {
		return nil
	}

	if err := s.repo.Flush(ctx, usages, socket, nicks); err != nil {
		s.mu.Lock()
		s.pendingUsages = append(usages, s.pendingUsages...)
		for name, count := range socket {
			s.pendingSocket[name] += count
		}
		s.pendingNicks = append(nicks, s.pendingNicks...)
		s.mu.Unlock()
		return fmt.Errorf("failed to flush stats: %w", err)
	}

	log.WithFields(log.Fields{
		"commands":     len(usages),
		"socketEvents": len(socket),
		"nicknames":    len(nicks),
	}).Debug("Flushed stats")
	return nil
}

// Start flushes pending stats every interval until ctx is cancelled.
// Returns a cleanup function that stops the loop and performs a final flush.
func (s *StatsCollector) Start(ctx context.Context, interval time.Duration) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.WithField("interval", interval).Info("Stats flusher started")

		for {
			select {
			case <-ctx.Done():
				log.Info("Stats flusher shutting down (context cancelled)...")
				return
			case <-ticker.C:
				if err := s.Flush(ctx); err != nil {
					log.WithError(err).Error("Failed to flush stats")
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done

		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := s.Flush(flushCtx); err != nil {
			log.WithError(err).Error("Failed to flush stats on shutdown")
		}
	}
}

func sortSocketStats(stats []models.SocketStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})
}
