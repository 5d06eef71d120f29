package api

import (
	"context"        // Context for media operations
	"mime/multipart" // Uploaded file headers
	"net/http"       // HTTP status codes

	"voicebox/internal/access"     // Ownership checks
	"voicebox/internal/domain"     // Importing domain models
	"voicebox/internal/media"      // Media ingestion
	"voicebox/internal/middleware" // Session access
	"voicebox/internal/repository" // Episode storage

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// ListEpisodesHandler returns episodes filtered by search, category and creator
func ListEpisodesHandler(episodes *repository.EpisodeRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := domain.EpisodeFilter{
			Search:   c.Query("search"),   // Title, description or tag substring
			Category: c.Query("category"), // Exact category
		}
		// creator=me is the dashboard view of the signed-in creator
		if creator := c.Query("creator"); creator == "me" {
			session := middleware.RequireSession(c)
			if session == nil {
				return
			}
			filter.OwnerID = session.UserID
		} else {
			filter.OwnerID = creator
		}
		list, err := episodes.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetEpisodeHandler returns one episode
func GetEpisodeHandler(episodes *repository.EpisodeRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ep, err := episodes.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ep)
	}
}

// CreateEpisodeHandler uploads both media files and then persists the episode.
// Nothing is persisted unless both uploads succeed.
func CreateEpisodeHandler(episodes *repository.EpisodeRepository, ingestor *media.Ingestor) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := middleware.CurrentSession(c)
		fields := domain.EpisodeFields{
			Title:       c.PostForm("title"),
			Description: c.PostForm("description"),
			Tags:        c.PostForm("tags"),
			Category:    c.PostForm("category"),
		}
		audioFile, audioErr := c.FormFile("audio")
		thumbFile, thumbErr := c.FormFile("thumbnail")
		if audioErr != nil || thumbErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Audio and thumbnail files are required"})
			return
		}
		// Reject bad metadata before spending an upload on it
		if err := fields.Validate(); err != nil {
			respondError(c, err)
			return
		}
		ctx := c.Request.Context()
		audio, err := ingestFile(ctx, ingestor, audioFile, media.Audio)
		if err != nil {
			respondError(c, err)
			return
		}
		thumb, err := ingestFile(ctx, ingestor, thumbFile, media.Image)
		if err != nil {
			ingestor.Discard(ctx, audio)
			respondError(c, err)
			return
		}
		ep, err := episodes.Create(ctx, session.UserID, fields, audio.URL, thumb.URL)
		if err != nil {
			ingestor.Discard(ctx, audio)
			ingestor.Discard(ctx, thumb)
			respondError(c, err)
			return
		}
		ep.Creator = &domain.Creator{ID: session.UserID, Username: session.Username}
		// Log successful upload
		logrus.WithFields(logrus.Fields{
			"user_id":    session.UserID, // Creator ID
			"episode_id": ep.ID,          // Episode ID
			"category":   ep.Category,    // Category
		}).Info("Episode created")
		c.JSON(http.StatusCreated, ep)
	}
}

// UpdateEpisodeHandler replaces only the fields and files present in the request
func UpdateEpisodeHandler(episodes *repository.EpisodeRepository, ingestor *media.Ingestor) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := middleware.CurrentSession(c)
		id := c.Param("id")
		ctx := c.Request.Context()

		// Fail fast before uploading; the repository repeats the check on the locked row
		current, err := episodes.GetByID(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := access.AuthorizeOwner(session.UserID, current); err != nil {
			respondError(c, err)
			return
		}

		var patch domain.EpisodePatch
		if v, ok := c.GetPostForm("title"); ok {
			patch.Title = domain.Some(v)
		}
		if v, ok := c.GetPostForm("description"); ok {
			patch.Description = domain.Some(v)
		}
		if v, ok := c.GetPostForm("tags"); ok {
			patch.Tags = domain.Some(v)
		}
		if v, ok := c.GetPostForm("category"); ok {
			patch.Category = domain.Some(v)
		}

		var uploaded []*media.Object // Discarded if the update does not go through
		discard := func() {
			for _, obj := range uploaded {
				ingestor.Discard(ctx, obj)
			}
		}
		if fh, err := c.FormFile("audio"); err == nil {
			obj, err := ingestFile(ctx, ingestor, fh, media.Audio)
			if err != nil {
				respondError(c, err)
				return
			}
			uploaded = append(uploaded, obj)
			patch.AudioURL = domain.Some(obj.URL)
		}
		if fh, err := c.FormFile("thumbnail"); err == nil {
			obj, err := ingestFile(ctx, ingestor, fh, media.Image)
			if err != nil {
				discard()
				respondError(c, err)
				return
			}
			uploaded = append(uploaded, obj)
			patch.ThumbnailURL = domain.Some(obj.URL)
		}

		ep, err := episodes.Update(ctx, id, session.UserID, patch)
		if err != nil {
			discard()
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":    session.UserID, // Creator ID
			"episode_id": ep.ID,          // Episode ID
		}).Info("Episode updated")
		c.JSON(http.StatusOK, ep)
	}
}

// DeleteEpisodeHandler removes an episode owned by the caller
func DeleteEpisodeHandler(episodes *repository.EpisodeRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := middleware.CurrentSession(c)
		id := c.Param("id")
		if err := episodes.Delete(c.Request.Context(), id, session.UserID); err != nil {
			if domain.KindOf(err) == domain.KindForbidden {
				logrus.WithFields(logrus.Fields{"user_id": session.UserID, "episode_id": id}).Warn("Delete refused, not owner")
			}
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":    session.UserID, // Creator ID
			"episode_id": id,             // Episode ID
		}).Info("Episode deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Episode removed"})
	}
}

// PlayEpisodeHandler counts one play. Public.
func PlayEpisodeHandler(episodes *repository.EpisodeRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := episodes.IncrementPlayCount(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"episode_id": id,           // Episode ID
			"client_ip":  c.ClientIP(), // Listener address, plays are anonymous
		}).Info("Episode played")
		c.JSON(http.StatusOK, gin.H{"message": "Play count incremented"})
	}
}

// ingestFile opens one multipart file and hands it to the ingestor
func ingestFile(ctx context.Context, ingestor *media.Ingestor, fh *multipart.FileHeader, kind media.Kind) (*media.Object, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, domain.UploadFailedError(err)
	}
	defer f.Close()
	return ingestor.Ingest(ctx, media.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, kind)
}
