package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/teamboard/popcache/internal/domain"
)

func testDiscardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type fakeListingStore struct {
	mu        sync.Mutex
	blobs     map[domain.Category][]domain.PostSummary
	getErr    error
	getStalls bool
	putErr    error
	putFails  int
	getCalls  int
	putCalls  int
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{blobs: make(map[domain.Category][]domain.PostSummary)}
}

func (f *fakeListingStore) Get(ctx context.Context, category domain.Category) ([]domain.PostSummary, bool, error) {
	f.mu.Lock()
	f.getCalls++
	stalls := f.getStalls
	f.mu.Unlock()
	if stalls {
		// Simulates an unresponsive store: only the caller's deadline ends
		// the read.
		<-ctx.Done()
		return nil, false, ctx.Err()
	}

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
	f.putCalls++
	if f.putFails > 0 {
		f.putFails--
		return fmt.Errorf("injected put failure")
	}
	if f.putErr != nil {
		return f.putErr
	}
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

func (f *fakeListingStore) setGetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
}

func (f *fakeListingStore) getCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}

func (f *fakeListingStore) blob(category domain.Category) ([]domain.PostSummary, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blob, ok := f.blobs[category]
	return blob, ok
}

type fakeScoreStore struct {
	mu     sync.Mutex
	scores map[int64]float64
}

func newFakeScoreStore() *fakeScoreStore {
	return &fakeScoreStore{scores: make(map[int64]float64)}
}

func (f *fakeScoreStore) Increment(_ context.Context, postID int64, delta float64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores[postID] += delta
	return f.scores[postID], nil
}

func (f *fakeScoreStore) TopN(_ context.Context, n int) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.scores))
	for id := range f.scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if f.scores[ids[i]] != f.scores[ids[j]] {
			return f.scores[ids[i]] > f.scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if n < len(ids) {
		ids = ids[:n]
	}
	return ids, nil
}

func (f *fakeScoreStore) Remove(_ context.Context, postID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.scores, postID)
	return nil
}

func (f *fakeScoreStore) Decay(_ context.Context, factor, floor float64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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

// fakeLeaseStore grants without waiting: a held lease means immediate
// contention, which is how concurrent callers observe single-flight.
type fakeLeaseStore struct {
	mu         sync.Mutex
	held       map[domain.Category]string
	granted    int
	grantLimit int
	released   []string
	seq        int
}

func newFakeLeaseStore() *fakeLeaseStore {
	return &fakeLeaseStore{held: make(map[domain.Category]string)}
}

func (f *fakeLeaseStore) Acquire(_ context.Context, category domain.Category, _, _ time.Duration) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.held[category]; busy {
		return "", false, nil
	}
	if f.grantLimit > 0 && f.granted >= f.grantLimit {
		return "", false, nil
	}
	f.seq++
	f.granted++
	token := fmt.Sprintf("lease-%d", f.seq)
	f.held[category] = token
	return token, true, nil
}

func (f *fakeLeaseStore) Release(_ context.Context, category domain.Category, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[category] == token {
		delete(f.held, category)
	}
	f.released = append(f.released, token)
	return nil
}

func (f *fakeLeaseStore) releasedTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.released))
	copy(out, f.released)
	return out
}

type fakePostRepository struct {
	mu              sync.Mutex
	posts           []domain.PostSummary
	listErr         error
	byCategoryCalls int
	byIDsCalls      int
	engagementCalls int
}

func newFakePostRepository(posts ...domain.PostSummary) *fakePostRepository {
	return &fakePostRepository{posts: posts}
}

func (f *fakePostRepository) ListByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.PostSummary, int64, error) {
	f.mu.Lock()
	f.byCategoryCalls++
	err := f.listErr
	f.mu.Unlock()
	if err != nil {
		return nil, 0, err
	}
	if category == domain.CategoryRealtime {
		rows, engErr := f.ListRecentByEngagement(ctx, limit)
		return rows, int64(len(rows)), engErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]domain.PostSummary, 0, len(f.posts))
	for _, p := range f.posts {
		switch category {
		case domain.CategoryWeekly:
			if p.Weekly {
				matched = append(matched, p)
			}
		case domain.CategoryLegend:
			if p.Legend {
				matched = append(matched, p)
			}
		case domain.CategoryNotice:
			if p.Notice {
				matched = append(matched, p)
			}
		case domain.CategoryFirstPage:
			matched = append(matched, p)
		}
	}
	if category == domain.CategoryFirstPage {
		sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	} else {
		sort.Slice(matched, func(i, j int) bool {
			if matched[i].LikeCount != matched[j].LikeCount {
				return matched[i].LikeCount > matched[j].LikeCount
			}
			return matched[i].ID < matched[j].ID
		})
	}
	total := int64(len(matched))
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (f *fakePostRepository) ListByIDsOrdered(_ context.Context, ids []int64) ([]domain.PostSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byIDsCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	byID := make(map[int64]domain.PostSummary, len(f.posts))
	for _, p := range f.posts {
		byID[p.ID] = p
	}
	out := make([]domain.PostSummary, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostRepository) ListRecentByEngagement(_ context.Context, limit int) ([]domain.PostSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.engagementCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	ranked := make([]domain.PostSummary, len(f.posts))
	copy(ranked, f.posts)
	sort.Slice(ranked, func(i, j int) bool {
		ei := ranked[i].LikeCount + ranked[i].CommentCount
		ej := ranked[j].LikeCount + ranked[j].CommentCount
		if ei != ej {
			return ei > ej
		}
		return ranked[i].ID < ranked[j].ID
	})
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (f *fakePostRepository) ListWeeklyTop(_ context.Context, since time.Time, limit int) ([]domain.PostSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	matched := make([]domain.PostSummary, 0, len(f.posts))
	for _, p := range f.posts {
		if !p.CreatedAt.Before(since) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].LikeCount != matched[j].LikeCount {
			return matched[i].LikeCount > matched[j].LikeCount
		}
		return matched[i].ID < matched[j].ID
	})
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakePostRepository) ListLegendQualifying(_ context.Context, minLikes, limit int) ([]domain.PostSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	matched := make([]domain.PostSummary, 0, len(f.posts))
	for _, p := range f.posts {
		if p.LikeCount >= minLikes {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].LikeCount != matched[j].LikeCount {
			return matched[i].LikeCount > matched[j].LikeCount
		}
		return matched[i].ID < matched[j].ID
	})
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakePostRepository) engagementCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.engagementCalls
}

func (f *fakePostRepository) byCategoryCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byCategoryCalls
}

func (f *fakePostRepository) addPost(post domain.PostSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, post)
}

func (f *fakePostRepository) removePost(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.posts[:0:0]
	for _, p := range f.posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.posts = kept
}

type fakeSnapshotCache struct {
	mu    sync.Mutex
	blobs map[domain.Category][]int64
}

func newFakeSnapshotCache() *fakeSnapshotCache {
	return &fakeSnapshotCache{blobs: make(map[domain.Category][]int64)}
}

func (f *fakeSnapshotCache) Put(category domain.Category, ids []int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := make([]int64, len(ids))
	copy(stored, ids)
	f.blobs[category] = stored
}

func (f *fakeSnapshotCache) Get(category domain.Category) ([]int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids, ok := f.blobs[category]
	if !ok || len(ids) == 0 {
		return nil, false
	}
	return ids, true
}

type fixture struct {
	svc       *Service
	listings  *fakeListingStore
	scores    *fakeScoreStore
	leases    *fakeLeaseStore
	posts     *fakePostRepository
	snapshots *fakeSnapshotCache
}

func newFixture(cfg Config, posts ...domain.PostSummary) *fixture {
	f := &fixture{
		listings:  newFakeListingStore(),
		scores:    newFakeScoreStore(),
		leases:    newFakeLeaseStore(),
		posts:     newFakePostRepository(posts...),
		snapshots: newFakeSnapshotCache(),
	}
	f.svc = NewService(Dependencies{
		Config:    cfg,
		Listings:  f.listings,
		Scores:    f.scores,
		Leases:    f.leases,
		Posts:     f.posts,
		Snapshots: f.snapshots,
	})
	return f
}

func makePosts(n int) []domain.PostSummary {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]domain.PostSummary, 0, n)
	for i := 1; i <= n; i++ {
		author := int64(100 + i)
		posts = append(posts, domain.PostSummary{
			ID:           int64(i),
			Title:        fmt.Sprintf("post %d", i),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
			AuthorID:     &author,
			AuthorName:   fmt.Sprintf("author-%d", i),
			ViewCount:    i * 10,
			LikeCount:    n - i + 1,
			CommentCount: i % 5,
		})
	}
	return posts
}
