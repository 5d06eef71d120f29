package api

import (
	"net/http" // HTTP status codes
	"time"     // CORS preflight cache

	"voicebox/internal/domain"     // Roles
	"voicebox/internal/media"      // Media ingestion
	"voicebox/internal/middleware" // Auth middleware
	"voicebox/internal/repository" // Storage

	"github.com/gin-contrib/cors" // CORS middleware
	"github.com/gin-gonic/gin"    // Gin web framework
)

// Deps are the collaborators the HTTP surface is built from
type Deps struct {
	Users     *repository.UserRepository
	Episodes  *repository.EpisodeRepository
	Wishlist  *repository.WishlistService
	Media     *media.Ingestor
	Tokens    TokenIssuer
	UploadDir string   // Served at /uploads when set
	Origins   []string // Allowed CORS origins
	MaxUpload int64    // Multipart memory limit in bytes
}

// NewRouter wires every route under /api
func NewRouter(d Deps) *gin.Engine {
	r := gin.Default() // Gin router instance with logger and recovery

	if d.MaxUpload > 0 {
		r.MaxMultipartMemory = d.MaxUpload
	}
	if len(d.Origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.Origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true, // Cookies carry the token
			MaxAge:           12 * time.Hour,
		}))
	}
	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir) // Local media store
	}

	protect := middleware.Protect(d.Tokens.Secret, d.Users)
	creatorOnly := middleware.AuthorizeRoles(domain.RoleCreator)

	api := r.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.POST("/register", RegisterHandler(d.Users, d.Tokens))
	auth.POST("/login", LoginHandler(d.Users, d.Tokens))
	auth.POST("/logout", LogoutHandler(d.Tokens))
	auth.GET("/me", protect, MeHandler(d.Users))

	// Episode routes; reads and plays are public
	episodes := api.Group("/episodes")
	episodes.GET("", middleware.OptionalAuth(d.Tokens.Secret, d.Users), ListEpisodesHandler(d.Episodes))
	episodes.GET("/:id", GetEpisodeHandler(d.Episodes))
	episodes.POST("", protect, creatorOnly, CreateEpisodeHandler(d.Episodes, d.Media))
	episodes.PUT("/:id", protect, creatorOnly, UpdateEpisodeHandler(d.Episodes, d.Media))
	episodes.DELETE("/:id", protect, creatorOnly, DeleteEpisodeHandler(d.Episodes))
	episodes.PUT("/:id/play", PlayEpisodeHandler(d.Episodes))

	// Wishlist routes (any signed-in user)
	wishlist := api.Group("/wishlist", protect)
	wishlist.GET("", GetWishlistHandler(d.Wishlist))
	wishlist.POST("/:episodeId", AddToWishlistHandler(d.Wishlist))
	wishlist.DELETE("/:episodeId", RemoveFromWishlistHandler(d.Wishlist))

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found - " + c.Request.URL.Path})
	})
	return r
}
