package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		for _, k := range []string{"APP_PORT", "DB_DRIVER", "JWT_TTL_HOURS", "CORS_ORIGIN", "STORAGE_DRIVER", "MAX_UPLOAD_MB"} {
			t.Setenv(k, "")
		}

		cfg := LoadConfig()

		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "mysql", cfg.DBDriver)
		assert.Equal(t, 30*24*time.Hour, cfg.JWTTTL)
		assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigin)
		assert.Equal(t, "local", cfg.StorageDriver)
		assert.Equal(t, int64(100), cfg.MaxUploadMB)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "SQLite")
		t.Setenv("JWT_TTL_HOURS", "2")
		t.Setenv("CORS_ORIGIN", "https://a.example, https://b.example ,")
		t.Setenv("IS_PROD", "true")

		cfg := LoadConfig()

		assert.Equal(t, "sqlite", cfg.DBDriver)
		assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigin)
		assert.True(t, cfg.IsProd)
	})
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "3306", DBName: "voicebox", DBPath: "x.db"}

	cfg.DBDriver = "mysql"
	assert.Equal(t, "u:p@tcp(h:3306)/voicebox?parseTime=true", cfg.DSN())

	cfg.DBDriver = "postgres"
	assert.Equal(t, "host=h user=u password=p dbname=voicebox port=3306 sslmode=disable", cfg.DSN())

	cfg.DBDriver = "sqlite"
	assert.Equal(t, "x.db", cfg.DSN())
}
