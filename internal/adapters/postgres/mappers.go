package postgres

import "github.com/teamboard/popcache/internal/domain"

func toPostSummary(row postModel) domain.PostSummary {
	return domain.PostSummary{
		ID:           row.PostID,
		Title:        row.Title,
		CreatedAt:    row.CreatedAt,
		AuthorID:     row.AuthorID,
		AuthorName:   row.AuthorName,
		ViewCount:    row.ViewCount,
		LikeCount:    row.LikeCount,
		CommentCount: row.CommentCount,
		Weekly:       row.Weekly,
		Legend:       row.Legend,
		Notice:       row.Notice,
	}
}

func toPostSummaries(rows []postModel) []domain.PostSummary {
	out := make([]domain.PostSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, toPostSummary(row))
	}
	return out
}
