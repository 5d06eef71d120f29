package api

import (
	"net/http" // HTTP status codes

	"voicebox/internal/middleware" // Session access
	"voicebox/internal/repository" // Wishlist storage

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// GetWishlistHandler returns the caller's saved episodes
func GetWishlistHandler(wishlist *repository.WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := middleware.CurrentSession(c)
		episodes, err := wishlist.List(c.Request.Context(), session.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, episodes)
	}
}

// AddToWishlistHandler saves an episode. A repeat add is answered with added=false.
func AddToWishlistHandler(wishlist *repository.WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := middleware.CurrentSession(c)
		ctx := c.Request.Context()
		episodeID := c.Param("episodeId")
		added, err := wishlist.Add(ctx, session.UserID, episodeID)
		if err != nil {
			respondError(c, err)
			return
		}
		if !added {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Episode already in wishlist", "added": false})
			return
		}
		ids, err := wishlist.IDs(ctx, session.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":    session.UserID, // User ID
			"episode_id": episodeID,      // Episode ID
		}).Info("Wishlist add")
		c.JSON(http.StatusOK, gin.H{"message": "Episode added to wishlist", "added": true, "wishlist": ids})
	}
}

// RemoveFromWishlistHandler drops an episode; always succeeds for absent entries
func RemoveFromWishlistHandler(wishlist *repository.WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := middleware.CurrentSession(c)
		ctx := c.Request.Context()
		episodeID := c.Param("episodeId")
		if err := wishlist.Remove(ctx, session.UserID, episodeID); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":    session.UserID, // User ID
			"episode_id": episodeID,      // Episode ID
		}).Info("Wishlist remove")
		ids, err := wishlist.IDs(ctx, session.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Episode removed from wishlist", "wishlist": ids})
	}
}
