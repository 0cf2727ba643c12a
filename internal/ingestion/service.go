package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/electionwatch/candidate-dashboard/internal/config"
	"github.com/electionwatch/candidate-dashboard/internal/models"
	"github.com/electionwatch/candidate-dashboard/internal/normalizer"
	"github.com/electionwatch/candidate-dashboard/internal/storage"
)

// Service fetches post documents and normalizes them, memoizing the result
type Service struct {
	source storage.Source
	cache  *Cache
	now    Clock

	// loadMu serializes cache misses so concurrent requests share one query
	loadMu sync.Mutex

	statusMu sync.RWMutex
	status   models.FetchStatus
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces the wall clock used for cache expiry and status times
func WithClock(now Clock) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new ingestion service
func NewService(cfg config.CacheConfig, src storage.Source, opts ...Option) *Service {
	s := &Service{
		source: src,
		now:    time.Now,
		status: models.FetchStatus{Status: "never_run"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = NewCache(cfg.TTL, s.now)
	return s
}

// Load returns the cached snapshot, or fetches and normalizes a new one when
// the cache is empty or expired. A failed fetch leaves the cache empty.
func (s *Service) Load(ctx context.Context) (*Snapshot, error) {
	if snap, ok := s.cache.Get(); ok {
		s.markCached()
		return snap, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	// another request may have filled the cache while we waited
	if snap, ok := s.cache.Get(); ok {
		s.markCached()
		return snap, nil
	}

	snap, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Put(snap)
	return snap, nil
}

// Refresh discards the cached snapshot and loads a fresh one
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	slog.Info("[Ingestion] Manual refresh requested")
	s.cache.Invalidate()
	return s.Load(ctx)
}

// Status reports the outcome of the most recent load
func (s *Service) Status() models.FetchStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

// fetch performs a single query and normalization pass. No retries.
func (s *Service) fetch(ctx context.Context) (*Snapshot, error) {
	attempt := s.now()

	docs, err := s.source.FetchPosts(ctx)
	if err != nil {
		s.recordFailure(attempt, err)
		slog.Error("[Ingestion] Fetch failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}

	posts, dropped := normalizer.Normalize(docs)
	snap := &Snapshot{
		Posts:     posts,
		FetchedAt: attempt,
		Fetched:   len(docs),
		Dropped:   dropped,
	}

	s.recordSuccess(snap)
	slog.Info("[Ingestion] Loaded posts",
		slog.Int("fetched", len(docs)),
		slog.Int("normalized", len(posts)),
		slog.Int("dropped", dropped))

	return snap, nil
}

func (s *Service) recordFailure(attempt time.Time, err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	s.status.LastAttempt = attempt
	s.status.Status = "failure"
	s.status.ErrorMessage = err.Error()
	s.status.Cached = false
}

func (s *Service) recordSuccess(snap *Snapshot) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	s.status = models.FetchStatus{
		LastSuccessfulFetch: snap.FetchedAt,
		LastAttempt:         snap.FetchedAt,
		Status:              "success",
		RecordsFetched:      snap.Fetched,
		RecordsDropped:      snap.Dropped,
	}
}

func (s *Service) markCached() {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Cached = true
}
