package domain

import "time"

// WishlistItem is one episode saved by one user. The composite key keeps membership unique.
type WishlistItem struct {
	UserID    string    `gorm:"primaryKey;size:36"`
	EpisodeID string    `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
