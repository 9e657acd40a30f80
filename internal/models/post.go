package models

import "time"

// Post is a blog post draft, published post, or scheduled post.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Topic       string     `json:"topic"`
	Style       string     `json:"style"`
	IsPublished bool       `json:"is_published"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsScheduled reports whether the post has a publish date after now.
func (p *Post) IsScheduled(now time.Time) bool {
	return p.PublishDate != nil && p.PublishDate.After(now)
}

// IsVisible reports whether the post may be shown to anyone at now.
// A published post with a future publish date is still hidden.
func (p *Post) IsVisible(now time.Time) bool {
	return p.IsPublished && !p.IsScheduled(now)
}

// OwnedBy reports whether userID authored the post.
func (p *Post) OwnedBy(userID string) bool {
	return userID != "" && p.UserID == userID
}

// AdminStats summarizes the posts table for the admin dashboard.
type AdminStats struct {
	TotalUsers     int `json:"total_users"`
	TotalPosts     int `json:"total_posts"`
	PublishedPosts int `json:"published_posts"`
	ScheduledPosts int `json:"scheduled_posts"`
}
