package application

import (
	"context"

	"github.com/teamboard/popcache/internal/domain"
)

// Write-path invalidation hooks. All of these are best-effort targeted blob
// mutations: a failed patch is logged and skipped, because the next scheduled
// or miss-triggered rebuild reconciles the category fully. Patches are
// optimistic read-modify-write without a lock; a concurrent full rebuild
// racing a patch may win with either outcome, and both represent a valid
// recent state.

// OnPostCreated prepends the new summary to the first-page listing. Nothing
// else is touched: a freshly created post cannot retroactively qualify for
// the curated categories.
func (s *Service) OnPostCreated(ctx context.Context, summary domain.PostSummary) {
	listing, found, err := s.listings.Get(ctx, domain.CategoryFirstPage)
	if err != nil || !found {
		s.logPatchSkip(ctx, "on_post_created", domain.CategoryFirstPage, err)
		return
	}
	updated := append([]domain.PostSummary{summary}, listing...)
	if len(updated) > s.cfg.ListingSize {
		updated = updated[:s.cfg.ListingSize]
	}
	if err := s.listings.Put(ctx, domain.CategoryFirstPage, updated, s.cfg.ttlFor(domain.CategoryFirstPage)); err != nil {
		s.logPatchSkip(ctx, "on_post_created", domain.CategoryFirstPage, err)
	}
}

// OnPostUpdated patches the edited summary into every category blob it is a
// member of, preserving each listing's order. Cheaper than invalidation: one
// read-modify-write per member blob instead of a full rebuild.
func (s *Service) OnPostUpdated(ctx context.Context, summary domain.PostSummary) {
	for _, category := range domain.Categories() {
		listing, found, err := s.listings.Get(ctx, category)
		if err != nil || !found {
			if err != nil {
				s.logPatchSkip(ctx, "on_post_updated", category, err)
			}
			continue
		}
		patched := false
		for i := range listing {
			if listing[i].ID == summary.ID {
				listing[i] = summary
				patched = true
				break
			}
		}
		if !patched {
			continue
		}
		if err := s.listings.Put(ctx, category, listing, s.cfg.ttlFor(category)); err != nil {
			s.logPatchSkip(ctx, "on_post_updated", category, err)
		}
	}
}

// OnPostDeleted removes the post from every category blob and drops its
// realtime score so the decayed ranking cannot resurrect it.
func (s *Service) OnPostDeleted(ctx context.Context, postID int64) {
	for _, category := range domain.Categories() {
		listing, found, err := s.listings.Get(ctx, category)
		if err != nil || !found {
			if err != nil {
				s.logPatchSkip(ctx, "on_post_deleted", category, err)
			}
			continue
		}
		filtered := listing[:0:0]
		for _, item := range listing {
			if item.ID != postID {
				filtered = append(filtered, item)
			}
		}
		if len(filtered) == len(listing) {
			continue
		}
		if err := s.listings.Put(ctx, category, filtered, s.cfg.ttlFor(category)); err != nil {
			s.logPatchSkip(ctx, "on_post_deleted", category, err)
		}
	}
	if err := s.scores.Remove(ctx, postID); err != nil {
		svcLogger().WarnContext(ctx, "realtime score removal failed",
			"operation", "on_post_deleted",
			"outcome", "failure",
			"post_id", postID,
			"error", err,
		)
	}
}

// OnNoticeToggled adds or removes the single entry in the notice listing.
// Notice membership changes are rare and precisely known at the call site, so
// a targeted mutation beats a rebuild.
func (s *Service) OnNoticeToggled(ctx context.Context, summary domain.PostSummary, enabled bool) {
	listing, found, err := s.listings.Get(ctx, domain.CategoryNotice)
	if err != nil {
		s.logPatchSkip(ctx, "on_notice_toggled", domain.CategoryNotice, err)
		return
	}
	if !found {
		listing = nil
	}

	updated := listing[:0:0]
	for _, item := range listing {
		if item.ID != summary.ID {
			updated = append(updated, item)
		}
	}
	if enabled {
		summary.Notice = true
		updated = append([]domain.PostSummary{summary}, updated...)
	}
	if err := s.listings.Put(ctx, domain.CategoryNotice, updated, s.cfg.ttlFor(domain.CategoryNotice)); err != nil {
		s.logPatchSkip(ctx, "on_notice_toggled", domain.CategoryNotice, err)
	}
}

// OnPostEngaged bumps the realtime score for a like/view interaction.
func (s *Service) OnPostEngaged(ctx context.Context, postID int64, delta float64) {
	if delta <= 0 {
		return
	}
	if _, err := s.scores.Increment(ctx, postID, delta); err != nil {
		svcLogger().WarnContext(ctx, "realtime score increment failed",
			"operation", "on_post_engaged",
			"outcome", "failure",
			"post_id", postID,
			"error", err,
		)
	}
}

func (s *Service) logPatchSkip(ctx context.Context, operation string, category domain.Category, err error) {
	if err == nil {
		return
	}
	svcLogger().WarnContext(ctx, "targeted cache patch skipped",
		"operation", operation,
		"outcome", "skipped",
		"category", category.String(),
		"error", err,
	)
}
