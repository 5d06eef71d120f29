package repository

import (
	"context"
	"errors"
	"strings"

	"voicebox/internal/access"
	"voicebox/internal/domain"
	"voicebox/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EpisodeRepository is the durable episode collection. The Redis client is optional.
type EpisodeRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewEpisodeRepository creates an EpisodeRepository; rdb may be nil to disable caching
func NewEpisodeRepository(db *gorm.DB, rdb *redis.Client) *EpisodeRepository {
	return &EpisodeRepository{db: db, rdb: rdb}
}

// List returns every episode matching all non-empty filter fields, newest first.
func (r *EpisodeRepository) List(ctx context.Context, f domain.EpisodeFilter) ([]domain.Episode, error) {
	query := r.db.WithContext(ctx).Model(&domain.Episode{})
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.OwnerID != "" {
		query = query.Where("creator_id = ?", f.OwnerID)
	}
	var episodes []domain.Episode
	if err := query.Order("created_at desc").Order("id").Find(&episodes).Error; err != nil {
		return nil, domain.InternalError(err)
	}
	// Search runs in Go so that matching is an exact case-insensitive substring test on every driver
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		matched := episodes[:0]
		for _, e := range episodes {
			if matchesSearch(&e, search) {
				matched = append(matched, e)
			}
		}
		episodes = matched
	}
	if err := attachCreators(ctx, r.db, episodes); err != nil {
		return nil, err
	}
	return episodes, nil
}

// matchesSearch expects needle already lower-cased
func matchesSearch(e *domain.Episode, needle string) bool {
	if strings.Contains(strings.ToLower(e.Title), needle) || strings.Contains(strings.ToLower(e.Description), needle) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// GetByID returns one episode, read through the cache when one is configured
func (r *EpisodeRepository) GetByID(ctx context.Context, id string) (*domain.Episode, error) {
	key := utils.EpisodeCacheKey(id)
	var cached domain.Episode
	if found, err := utils.GetCache(ctx, r.rdb, key, &cached); err == nil && found {
		return &cached, nil
	} else if err != nil {
		logrus.WithFields(logrus.Fields{"episode_id": id, "error": err.Error()}).Warn("Episode cache read failed")
	}
	gen, genErr := utils.CacheGeneration(ctx, r.rdb, key) // Taken before the row is read
	ep, err := findEpisode(r.db.WithContext(ctx), id, false)
	if err != nil {
		return nil, err
	}
	eps := []domain.Episode{*ep}
	if err := attachCreators(ctx, r.db, eps); err != nil {
		return nil, err
	}
	ep = &eps[0]
	if genErr == nil {
		_ = utils.SetCacheAt(ctx, r.rdb, key, gen, ep, utils.EpisodeCacheTTL) // Cache miss is not fatal
	}
	return ep, nil
}

// Create persists a new episode owned by ownerID. Both media URLs must already be resolved.
func (r *EpisodeRepository) Create(ctx context.Context, ownerID string, f domain.EpisodeFields, audioURL, thumbnailURL string) (*domain.Episode, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if audioURL == "" || thumbnailURL == "" {
		return nil, domain.ValidationError("Audio and thumbnail files are required")
	}
	ep := &domain.Episode{
		CreatorID:    ownerID,
		Title:        strings.TrimSpace(f.Title),
		Description:  strings.TrimSpace(f.Description),
		AudioURL:     audioURL,
		ThumbnailURL: thumbnailURL,
		Tags:         domain.ParseTags(f.Tags),
		Category:     strings.TrimSpace(f.Category),
	}
	if err := r.db.WithContext(ctx).Create(ep).Error; err != nil {
		return nil, domain.InternalError(err)
	}
	return ep, nil
}

// Update applies a partial update. The episode is re-read and ownership checked inside the same transaction.
func (r *EpisodeRepository) Update(ctx context.Context, id, callerID string, patch domain.EpisodePatch) (*domain.Episode, error) {
	var out *domain.Episode
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ep, err := findEpisode(tx, id, true)
		if err != nil {
			return err // NotFound comes before Forbidden
		}
		if err := access.AuthorizeOwner(callerID, ep); err != nil {
			return err
		}
		if updates := patchColumns(patch); len(updates) > 0 {
			if err := tx.Model(&domain.Episode{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return domain.InternalError(err)
			}
			if ep, err = findEpisode(tx, id, false); err != nil {
				return err
			}
		}
		out = ep
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	eps := []domain.Episode{*out}
	if err := attachCreators(ctx, r.db, eps); err != nil {
		return nil, err
	}
	return &eps[0], nil
}

// patchColumns turns the set fields of a patch into column updates.
// A required field sent blank keeps its stored value, as edit forms post every field.
func patchColumns(p domain.EpisodePatch) map[string]any {
	updates := map[string]any{}
	required := []struct {
		column string
		value  domain.Optional[string]
	}{
		{"title", p.Title},
		{"description", p.Description},
		{"category", p.Category},
		{"audio_url", p.AudioURL},
		{"thumbnail_url", p.ThumbnailURL},
	}
	for _, f := range required {
		if v := strings.TrimSpace(f.value.Value); f.value.Set && v != "" {
			updates[f.column] = v
		}
	}
	if p.Tags.Set {
		updates["tags"] = domain.ParseTags(p.Tags.Value)
	}
	return updates
}

// Delete removes an owned episode and every wishlist membership pointing at it.
// Stored media is left in place; removing blobs is not part of this service.
func (r *EpisodeRepository) Delete(ctx context.Context, id, callerID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ep, err := findEpisode(tx, id, true)
		if err != nil {
			return err
		}
		if err := access.AuthorizeOwner(callerID, ep); err != nil {
			return err
		}
		if err := tx.Where("episode_id = ?", id).Delete(&domain.WishlistItem{}).Error; err != nil {
			return domain.InternalError(err)
		}
		if err := tx.Where("id = ?", id).Delete(&domain.Episode{}).Error; err != nil {
			return domain.InternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// IncrementPlayCount adds one play in a single UPDATE so concurrent plays are never lost
func (r *EpisodeRepository) IncrementPlayCount(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&domain.Episode{}).
		Where("id = ?", id).
		UpdateColumn("play_count", gorm.Expr("play_count + ?", 1))
	if res.Error != nil {
		return domain.InternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError("Episode not found")
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *EpisodeRepository) invalidate(ctx context.Context, id string) {
	if err := utils.InvalidateCache(ctx, r.rdb, utils.EpisodeCacheKey(id)); err != nil {
		logrus.WithFields(logrus.Fields{"episode_id": id, "error": err.Error()}).Warn("Episode cache invalidation failed")
	}
}

// findEpisode loads one episode, optionally locking the row for the rest of the transaction
func findEpisode(tx *gorm.DB, id string, lock bool) (*domain.Episode, error) {
	if lock {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var ep domain.Episode
	err := tx.Where("id = ?", id).First(&ep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundError("Episode not found")
	} else if err != nil {
		return nil, domain.InternalError(err)
	}
	return &ep, nil
}

// attachCreators resolves the creator of every episode in place
func attachCreators(ctx context.Context, db *gorm.DB, episodes []domain.Episode) error {
	if len(episodes) == 0 {
		return nil
	}
	ids := make([]string, 0, len(episodes))
	seen := map[string]struct{}{}
	for _, e := range episodes {
		if _, ok := seen[e.CreatorID]; !ok {
			seen[e.CreatorID] = struct{}{}
			ids = append(ids, e.CreatorID)
		}
	}
	var users []domain.User
	if err := db.WithContext(ctx).Select("id", "username").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return domain.InternalError(err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	for i := range episodes {
		episodes[i].Creator = &domain.Creator{ID: episodes[i].CreatorID, Username: names[episodes[i].CreatorID]}
	}
	return nil
}
