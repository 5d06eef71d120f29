package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting list values
	"time"    // For token lifetime

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string   // Application port
	DBDriver   string   // Database driver: mysql, postgres or sqlite
	DBUser     string   // Database user
	DBPassword string   // Database password
	DBHost     string   // Database host
	DBPort     string   // Database port
	DBName     string   // Database name
	DBPath     string   // SQLite database file
	JWTSecret  string   // JWT secret key
	JWTTTL     time.Duration
	RedisAddr  string   // Redis server address, empty disables caching
	RedisPass  string   // Redis password
	RedisDB    int      // Redis database number
	IsProd     bool     // Is production environment
	CORSOrigin []string // Allowed browser origins

	StorageDriver string // Media storage: local or s3
	UploadDir     string // Root directory for the local store
	PublicBaseURL string // Base URL the local store links are built from
	S3Endpoint    string // S3-compatible endpoint (host:port)
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
	S3UseSSL      bool
	S3PublicURL   string // Public base URL of the bucket
	MaxUploadMB   int64  // Multipart memory limit in megabytes
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	ttlHours, err := strconv.Atoi(os.Getenv("JWT_TTL_HOURS"))
	if err != nil || ttlHours <= 0 {
		ttlHours = 24 * 30 // 30 days, same as the session cookie
	}
	maxUpload, err := strconv.ParseInt(os.Getenv("MAX_UPLOAD_MB"), 10, 64)
	if err != nil || maxUpload <= 0 {
		maxUpload = 100
	}
	port := getEnv("APP_PORT", "8080")
	return &Config{
		AppPort:       port,                                             // Application port
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "mysql")),    // Database driver
		DBUser:        os.Getenv("DB_USER"),                             // Database user
		DBPassword:    os.Getenv("DB_PASSWORD"),                         // Database password
		DBHost:        os.Getenv("DB_HOST"),                             // Database host
		DBPort:        os.Getenv("DB_PORT"),                             // Database port
		DBName:        os.Getenv("DB_NAME"),                             // Database name
		DBPath:        getEnv("DB_PATH", "voicebox.db"),                 // SQLite file
		JWTSecret:     os.Getenv("JWT_SECRET"),                          // JWT secret key
		JWTTTL:        time.Duration(ttlHours) * time.Hour,              // Token lifetime
		RedisAddr:     os.Getenv("REDIS_ADDR"),                          // Redis server address
		RedisPass:     os.Getenv("REDIS_PASS"),                          // Redis password
		RedisDB:       redisDB,                                          // Redis database number
		IsProd:        os.Getenv("IS_PROD") == "true",                   // Is production environment
		CORSOrigin:    splitList(getEnv("CORS_ORIGIN", "http://localhost:5173")),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:"+port),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3UseSSL:      os.Getenv("S3_USE_SSL") == "true",
		S3PublicURL:   os.Getenv("S3_PUBLIC_URL"),
		MaxUploadMB:   maxUpload,
	}
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
			" dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=disable"
	case "sqlite":
		return c.DBPath
	default:
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
