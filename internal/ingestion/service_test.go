package ingestion

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/electionwatch/candidate-dashboard/internal/config"
	"github.com/electionwatch/candidate-dashboard/internal/models"
	"github.com/electionwatch/candidate-dashboard/internal/storage"
)

// MockSource is a mock implementation of the Source interface
type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchPosts(ctx context.Context) ([]models.Document, error) {
	args := m.Called(ctx)
	docs, _ := args.Get(0).([]models.Document)
	return docs, args.Error(1)
}

func (m *MockSource) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSource) Close() error {
	args := m.Called()
	return args.Error(0)
}

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testDocs() []models.Document {
	return []models.Document{
		{"date": "2024-10-01", "candidates": []interface{}{"Kamala"}, "sentiment": "Positive", "upvotes": 3},
		{"date": "garbage", "candidates": []interface{}{"Trump"}},
		{"date": "2024-10-02", "candidates": []interface{}{"Trump"}, "comments": "solo"},
	}
}

func newTestService(src storage.Source, clock *fakeClock) *Service {
	return NewService(config.CacheConfig{TTL: time.Minute}, src, WithClock(clock.Now))
}

func TestService_Load(t *testing.T) {
	src := new(MockSource)
	src.On("FetchPosts", mock.Anything).Return(testDocs(), nil).Once()
	clock := newFakeClock()
	service := newTestService(src, clock)

	snap, err := service.Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, snap.Posts, 2)
	assert.Equal(t, 3, snap.Fetched)
	assert.Equal(t, 1, snap.Dropped)
	assert.Equal(t, clock.Now(), snap.FetchedAt)
	assert.Equal(t, models.CandidateHarris, snap.Posts[0].Candidate)
	assert.Equal(t, []string{"solo"}, snap.Posts[1].Comments)

	status := service.Status()
	assert.Equal(t, "success", status.Status)
	assert.Equal(t, 3, status.RecordsFetched)
	assert.Equal(t, 1, status.RecordsDropped)
	src.AssertExpectations(t)
}

func TestService_Load_CachedWithinTTL(t *testing.T) {
	src := new(MockSource)
	src.On("FetchPosts", mock.Anything).Return(testDocs(), nil).Once()
	clock := newFakeClock()
	service := newTestService(src, clock)

	first, err := service.Load(context.Background())
	require.NoError(t, err)

	clock.Advance(59 * time.Second)
	second, err := service.Load(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.True(t, service.Status().Cached)
	src.AssertNumberOfCalls(t, "FetchPosts", 1)
}

func TestService_Load_RefetchesAfterTTL(t *testing.T) {
	src := new(MockSource)
	src.On("FetchPosts", mock.Anything).Return(testDocs(), nil).Twice()
	clock := newFakeClock()
	service := newTestService(src, clock)

	first, err := service.Load(context.Background())
	require.NoError(t, err)

	clock.Advance(time.Minute)
	second, err := service.Load(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, clock.Now(), second.FetchedAt)
	src.AssertNumberOfCalls(t, "FetchPosts", 2)
}

func TestService_Refresh_BypassesCache(t *testing.T) {
	src := new(MockSource)
	src.On("FetchPosts", mock.Anything).Return(testDocs(), nil).Twice()
	clock := newFakeClock()
	service := newTestService(src, clock)

	_, err := service.Load(context.Background())
	require.NoError(t, err)

	_, err = service.Refresh(context.Background())
	require.NoError(t, err)

	assert.False(t, service.Status().Cached)
	src.AssertNumberOfCalls(t, "FetchPosts", 2)
}

func TestService_Load_FailureNotCached(t *testing.T) {
	src := new(MockSource)
	unreachable := fmt.Errorf("%w: server selection timeout", storage.ErrUnavailable)
	src.On("FetchPosts", mock.Anything).Return(nil, unreachable).Once()
	src.On("FetchPosts", mock.Anything).Return(testDocs(), nil).Once()
	clock := newFakeClock()
	service := newTestService(src, clock)

	snap, err := service.Load(context.Background())
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.Contains(t, err.Error(), "failed to fetch posts")

	status := service.Status()
	assert.Equal(t, "failure", status.Status)
	assert.Contains(t, status.ErrorMessage, "server selection timeout")
	assert.True(t, status.LastSuccessfulFetch.IsZero())

	snap, err = service.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Posts, 2)
	src.AssertNumberOfCalls(t, "FetchPosts", 2)
}

func TestService_Status_NeverRun(t *testing.T) {
	service := newTestService(new(MockSource), newFakeClock())

	assert.Equal(t, "never_run", service.Status().Status)
}

func TestService_Load_ConcurrentMissesShareOneFetch(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := new(MockSource)
	src.On("FetchPosts", mock.Anything).Return(testDocs(), nil)
	service := newTestService(src, newFakeClock())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Load(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	src.AssertNumberOfCalls(t, "FetchPosts", 1)
}
