package jobs

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/teamboard/popcache/internal/domain"
	"github.com/teamboard/popcache/internal/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type fakeScoreStore struct {
	mu       sync.Mutex
	scores   map[int64]float64
	decayErr error
}

func newFakeScoreStore(scores map[int64]float64) *fakeScoreStore {
	copied := make(map[int64]float64, len(scores))
	for id, s := range scores {
		copied[id] = s
	}
	return &fakeScoreStore{scores: copied}
}

func (f *fakeScoreStore) Increment(_ context.Context, postID int64, delta float64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores[postID] += delta
	return f.scores[postID], nil
}

func (f *fakeScoreStore) TopN(context.Context, int) ([]int64, error) { return nil, nil }

func (f *fakeScoreStore) Remove(_ context.Context, postID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.scores, postID)
	return nil
}

func (f *fakeScoreStore) Decay(_ context.Context, factor, floor float64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decayErr != nil {
		return 0, f.decayErr
	}
	var pruned int64
	for id, score := range f.scores {
		next := score * factor
		if next <= floor {
			delete(f.scores, id)
			pruned++
			continue
		}
		f.scores[id] = next
	}
	return pruned, nil
}

func (f *fakeScoreStore) score(postID int64) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.scores[postID]
	return s, ok
}

func (f *fakeScoreStore) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scores)
}

type fakeListingStore struct {
	mu     sync.Mutex
	blobs  map[domain.Category][]domain.PostSummary
	getErr error
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{blobs: make(map[domain.Category][]domain.PostSummary)}
}

func (f *fakeListingStore) Get(_ context.Context, category domain.Category) ([]domain.PostSummary, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	blob, ok := f.blobs[category]
	if !ok {
		return nil, false, nil
	}
	out := make([]domain.PostSummary, len(blob))
	copy(out, blob)
	return out, true, nil
}

func (f *fakeListingStore) Put(_ context.Context, category domain.Category, posts []domain.PostSummary, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := make([]domain.PostSummary, len(posts))
	copy(stored, posts)
	f.blobs[category] = stored
	return nil
}

func (f *fakeListingStore) Delete(_ context.Context, category domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, category)
	return nil
}

func (f *fakeListingStore) blob(category domain.Category) ([]domain.PostSummary, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blob, ok := f.blobs[category]
	return blob, ok
}

type fakePostRepository struct {
	weekly    []domain.PostSummary
	legend    []domain.PostSummary
	weeklyErr error
	legendErr error
}

func (f *fakePostRepository) ListByCategory(context.Context, domain.Category, int) ([]domain.PostSummary, int64, error) {
	return nil, 0, nil
}

func (f *fakePostRepository) ListByIDsOrdered(context.Context, []int64) ([]domain.PostSummary, error) {
	return nil, nil
}

func (f *fakePostRepository) ListRecentByEngagement(context.Context, int) ([]domain.PostSummary, error) {
	return nil, nil
}

func (f *fakePostRepository) ListWeeklyTop(_ context.Context, _ time.Time, limit int) ([]domain.PostSummary, error) {
	if f.weeklyErr != nil {
		return nil, f.weeklyErr
	}
	return capped(f.weekly, limit), nil
}

func (f *fakePostRepository) ListLegendQualifying(_ context.Context, _, limit int) ([]domain.PostSummary, error) {
	if f.legendErr != nil {
		return nil, f.legendErr
	}
	return capped(f.legend, limit), nil
}

func capped(posts []domain.PostSummary, limit int) []domain.PostSummary {
	out := make([]domain.PostSummary, len(posts))
	copy(out, posts)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.FeaturedAuthorEvent
}

func (f *fakePublisher) PublishAuthorFeatured(_ context.Context, event domain.FeaturedAuthorEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) published() []domain.FeaturedAuthorEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.FeaturedAuthorEvent, len(f.events))
	copy(out, f.events)
	return out
}

type countingMetrics struct {
	ports.NopMetrics
	mu     sync.Mutex
	cycles int
	pruned int64
}

func (m *countingMetrics) DecayCycle(pruned int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles++
	m.pruned += pruned
}

func (m *countingMetrics) snapshot() (int, int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles, m.pruned
}
