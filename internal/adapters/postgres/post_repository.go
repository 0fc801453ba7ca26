package postgres

import (
	"context"
	"time"

	"github.com/teamboard/popcache/internal/domain"
	"gorm.io/gorm"
)

// PostRepository reads post summaries from the relational store.
// It owns no writes; the cache subsystem only consumes ordered listings.
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates the durable-store adapter over GORM.
func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) ListByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.PostSummary, int64, error) {
	q := r.db.WithContext(ctx).Model(&postModel{})

	switch category {
	case domain.CategoryWeekly:
		q = q.Where("weekly = ?", true).Order("like_count DESC, created_at DESC")
	case domain.CategoryLegend:
		q = q.Where("legend = ?", true).Order("like_count DESC, created_at DESC")
	case domain.CategoryNotice:
		q = q.Where("notice = ?", true).Order("created_at DESC")
	case domain.CategoryFirstPage:
		q = q.Order("created_at DESC")
	case domain.CategoryRealtime:
		// The relational store carries no realtime scores; serve the
		// engagement-ranked approximation instead.
		rows, err := r.ListRecentByEngagement(ctx, limit)
		return rows, int64(len(rows)), err
	default:
		return nil, 0, domain.ErrUnknownCategory
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []postModel
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toPostSummaries(rows), total, nil
}

func (r *PostRepository) ListByIDsOrdered(ctx context.Context, ids []int64) ([]domain.PostSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []postModel
	if err := r.db.WithContext(ctx).Where("post_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[int64]postModel, len(rows))
	for _, row := range rows {
		byID[row.PostID] = row
	}
	// Reorder to the caller's ranking; deleted ids simply drop out.
	out := make([]domain.PostSummary, 0, len(ids))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			out = append(out, toPostSummary(row))
		}
	}
	return out, nil
}

func (r *PostRepository) ListRecentByEngagement(ctx context.Context, limit int) ([]domain.PostSummary, error) {
	var rows []postModel
	q := r.db.WithContext(ctx).
		Order("(like_count + comment_count) DESC, created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPostSummaries(rows), nil
}

func (r *PostRepository) ListWeeklyTop(ctx context.Context, since time.Time, limit int) ([]domain.PostSummary, error) {
	var rows []postModel
	q := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("like_count DESC, created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPostSummaries(rows), nil
}

func (r *PostRepository) ListLegendQualifying(ctx context.Context, minLikes, limit int) ([]domain.PostSummary, error) {
	var rows []postModel
	q := r.db.WithContext(ctx).
		Where("like_count >= ?", minLikes).
		Order("like_count DESC, created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPostSummaries(rows), nil
}
