package main

import (
	"context" // context package is needed for Redis and bucket checks

	"voicebox/internal/api"        // Custom package for API handlers
	"voicebox/internal/config"     // Custom package for configuration
	"voicebox/internal/db"         // Custom package for database access
	"voicebox/internal/media"      // Custom package for media storage
	"voicebox/internal/repository" // Custom package for persistence

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	conn, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalf("failed to migrate DB: %v", err)
	}

	// Setup Redis client; caching is skipped when no address is configured
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	}

	store, uploadDir := newStore(cfg)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.NewRouter(api.Deps{
		Users:    repository.NewUserRepository(conn),
		Episodes: repository.NewEpisodeRepository(conn, redisClient),
		Wishlist: repository.NewWishlistService(conn),
		Media:    media.NewIngestor(store),
		Tokens: api.TokenIssuer{
			Secret:       cfg.JWTSecret,
			TTL:          cfg.JWTTTL,
			SecureCookie: cfg.IsProd,
		},
		UploadDir: uploadDir,
		Origins:   cfg.CORSOrigin,
		MaxUpload: cfg.MaxUploadMB << 20,
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"port":    cfg.AppPort,
		"db":      cfg.DBDriver,
		"storage": cfg.StorageDriver,
	}).Info("Server running")
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}

// newStore picks the media backend. The returned directory is non-empty only for the local store.
func newStore(cfg *config.Config) (media.Store, string) {
	if cfg.StorageDriver == "s3" {
		s3, err := media.NewS3Store(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL, cfg.S3PublicURL)
		if err != nil {
			logrus.Fatalf("failed to create S3 client: %v", err)
		}
		if err := s3.EnsureBucket(context.Background()); err != nil {
			logrus.Fatalf("failed to prepare bucket %s: %v", cfg.S3Bucket, err)
		}
		return s3, ""
	}
	return media.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL), cfg.UploadDir
}
