package postgres

import "time"

type postModel struct {
	PostID       int64     `gorm:"column:post_id;primaryKey"`
	Title        string    `gorm:"column:title"`
	AuthorID     *int64    `gorm:"column:author_id"`
	AuthorName   string    `gorm:"column:author_name"`
	ViewCount    int       `gorm:"column:view_count"`
	LikeCount    int       `gorm:"column:like_count"`
	CommentCount int       `gorm:"column:comment_count"`
	Weekly       bool      `gorm:"column:weekly"`
	Legend       bool      `gorm:"column:legend"`
	Notice       bool      `gorm:"column:notice"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (postModel) TableName() string { return "posts" }
