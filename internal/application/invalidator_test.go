package application

import (
	"context"
	"testing"

	"github.com/teamboard/popcache/internal/domain"
)

func TestOnPostCreatedPrependsAndTrimsFirstPage(t *testing.T) {
	t.Parallel()

	f := newFixture(Config{ListingSize: 3})
	ctx := context.Background()
	f.listings.blobs[domain.CategoryFirstPage] = makePosts(3)

	created := makePosts(10)[9]
	f.svc.OnPostCreated(ctx, created)

	blob, ok := f.listings.blob(domain.CategoryFirstPage)
	if !ok {
		t.Fatalf("first-page blob disappeared")
	}
	if len(blob) != 3 {
		t.Fatalf("blob must stay trimmed to listing size, got %d entries", len(blob))
	}
	if blob[0].ID != created.ID || blob[1].ID != 1 || blob[2].ID != 2 {
		t.Fatalf("unexpected order after prepend: %d, %d, %d", blob[0].ID, blob[1].ID, blob[2].ID)
	}
}

func TestOnPostCreatedSkipsWhenBlobAbsent(t *testing.T) {
	t.Parallel()

	f := newFixture(Config{})
	f.svc.OnPostCreated(context.Background(), makePosts(1)[0])

	if _, ok := f.listings.blob(domain.CategoryFirstPage); ok {
		t.Fatalf("patch must not materialize a listing that was never built")
	}
}

func TestOnPostUpdatedPatchesEveryMemberBlob(t *testing.T) {
	t.Parallel()

	f := newFixture(Config{})
	ctx := context.Background()
	f.listings.blobs[domain.CategoryWeekly] = makePosts(3)
	f.listings.blobs[domain.CategoryFirstPage] = makePosts(3)

	edited := makePosts(3)[1]
	edited.Title = "edited title"
	edited.LikeCount = 999
	f.svc.OnPostUpdated(ctx, edited)

	for _, category := range []domain.Category{domain.CategoryWeekly, domain.CategoryFirstPage} {
		blob, _ := f.listings.blob(category)
		if len(blob) != 3 {
			t.Fatalf("%s: patch must preserve blob length, got %d", category, len(blob))
		}
		if blob[0].ID != 1 || blob[1].ID != 2 || blob[2].ID != 3 {
			t.Fatalf("%s: patch must preserve listing order", category)
		}
		if blob[1].Title != "edited title" || blob[1].LikeCount != 999 {
			t.Fatalf("%s: entry 2 not patched: %+v", category, blob[1])
		}
	}
	if _, ok := f.listings.blob(domain.CategoryNotice); ok {
		t.Fatalf("categories without a blob must stay untouched")
	}
}

func TestOnPostDeletedRemovesFromBlobsAndScores(t *testing.T) {
	t.Parallel()

	f := newFixture(Config{})
	ctx := context.Background()
	f.listings.blobs[domain.CategoryWeekly] = makePosts(3)
	f.listings.blobs[domain.CategoryRealtime] = makePosts(3)
	f.scores.Increment(ctx, 2, 5)

	f.svc.OnPostDeleted(ctx, 2)

	for _, category := range []domain.Category{domain.CategoryWeekly, domain.CategoryRealtime} {
		blob, _ := f.listings.blob(category)
		if len(blob) != 2 {
			t.Fatalf("%s: expected 2 entries after delete, got %d", category, len(blob))
		}
		for _, item := range blob {
			if item.ID == 2 {
				t.Fatalf("%s: deleted post 2 still present", category)
			}
		}
	}
	if _, ok := f.scores.score(2); ok {
		t.Fatalf("deleted post must lose its realtime score")
	}
}

func TestOnNoticeToggledAddsAndRemoves(t *testing.T) {
	t.Parallel()

	f := newFixture(Config{})
	ctx := context.Background()
	posts := makePosts(2)

	f.svc.OnNoticeToggled(ctx, posts[0], true)
	f.svc.OnNoticeToggled(ctx, posts[1], true)

	blob, _ := f.listings.blob(domain.CategoryNotice)
	if len(blob) != 2 || blob[0].ID != 2 || blob[1].ID != 1 {
		t.Fatalf("unexpected notice listing after enables: %+v", blob)
	}
	if !blob[0].Notice {
		t.Fatalf("pinned entry must carry the notice flag")
	}

	f.svc.OnNoticeToggled(ctx, posts[1], false)
	blob, _ = f.listings.blob(domain.CategoryNotice)
	if len(blob) != 1 || blob[0].ID != 1 {
		t.Fatalf("unexpected notice listing after disable: %+v", blob)
	}
}

func TestOnPostEngagedIncrementsScore(t *testing.T) {
	t.Parallel()

	f := newFixture(Config{})
	ctx := context.Background()

	f.svc.OnPostEngaged(ctx, 7, 2.5)
	f.svc.OnPostEngaged(ctx, 7, 1)
	f.svc.OnPostEngaged(ctx, 7, 0)
	f.svc.OnPostEngaged(ctx, 7, -4)

	score, ok := f.scores.score(7)
	if !ok || score != 3.5 {
		t.Fatalf("expected score 3.5, got %v (present=%v)", score, ok)
	}
}
