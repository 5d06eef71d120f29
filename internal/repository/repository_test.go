package repository

import (
	"context"
	"testing"

	"voicebox/internal/db"
	"voicebox/internal/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, db.Migrate(conn), "failed to run migrations")

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

// seedUser registers an account and fails the test on error
func seedUser(t *testing.T, conn *gorm.DB, name string, role domain.Role) *domain.User {
	t.Helper()

	u, err := NewUserRepository(conn).Register(context.Background(), name, name+"@example.com", "secret123", role)
	require.NoError(t, err)
	return u
}

// seedEpisode creates an episode owned by owner
func seedEpisode(t *testing.T, repo *EpisodeRepository, owner *domain.User, f domain.EpisodeFields) *domain.Episode {
	t.Helper()

	ep, err := repo.Create(context.Background(), owner.ID, f, "https://cdn.example/a.mp3", "https://cdn.example/t.png")
	require.NoError(t, err)
	return ep
}
