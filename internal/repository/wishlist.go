package repository

import (
	"context"
	"errors"

	"voicebox/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WishlistService manages each user's set of saved episodes
type WishlistService struct {
	db *gorm.DB
}

// NewWishlistService creates a WishlistService
func NewWishlistService(db *gorm.DB) *WishlistService {
	return &WishlistService{db: db}
}

// Add saves an episode for a user. Adding an episode that is already saved reports added=false.
func (s *WishlistService) Add(ctx context.Context, userID, episodeID string) (bool, error) {
	added := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Share-lock the episode so a concurrent delete cannot leave a dangling membership
		var ep domain.Episode
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Select("id").
			Where("id = ?", episodeID).
			First(&ep).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError("Episode not found")
		} else if err != nil {
			return domain.InternalError(err)
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.WishlistItem{UserID: userID, EpisodeID: episodeID})
		if res.Error != nil {
			return domain.InternalError(res.Error)
		}
		added = res.RowsAffected > 0
		return nil
	})
	return added, err
}

// Remove drops an episode from a user's wishlist; removing an absent episode is a no-op
func (s *WishlistService) Remove(ctx context.Context, userID, episodeID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND episode_id = ?", userID, episodeID).
		Delete(&domain.WishlistItem{}).Error
	if err != nil {
		return domain.InternalError(err)
	}
	return nil
}

// IDs returns the saved episode ids in the order they were added
func (s *WishlistService) IDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).Model(&domain.WishlistItem{}).
		Where("user_id = ?", userID).
		Order("created_at").Order("episode_id").
		Pluck("episode_id", &ids).Error
	if err != nil {
		return nil, domain.InternalError(err)
	}
	return ids, nil
}

// List resolves a user's wishlist into full episode records
func (s *WishlistService) List(ctx context.Context, userID string) ([]domain.Episode, error) {
	episodes := []domain.Episode{}
	err := s.db.WithContext(ctx).
		Joins("JOIN wishlist_items ON wishlist_items.episode_id = episodes.id").
		Where("wishlist_items.user_id = ?", userID).
		Order("wishlist_items.created_at").Order("episodes.id").
		Find(&episodes).Error
	if err != nil {
		return nil, domain.InternalError(err)
	}
	if err := attachCreators(ctx, s.db, episodes); err != nil {
		return nil, err
	}
	return episodes, nil
}
