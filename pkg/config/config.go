package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	PostgresURL string
	MongoURI    string
	MongoDBName string
	RedisAddr   string
	NatsURL     string
	JWTSecret   string
	UploadDir   string
	PublicURL   string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is read first so its values are visible to the lookups
// below; variables already set in the real environment keep precedence
// because godotenv never overrides them.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		PostgresURL: getEnv("POSTGRES_URL", ""),
		MongoURI:    getEnv("MONGO_URI", ""),
		MongoDBName: getEnv("MONGO_DB_NAME", "socialite"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		NatsURL:     getEnv("NATS_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", "supersecretjwtkey"),
		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),
		PublicURL:   getEnv("PUBLIC_URL", "http://localhost:8080"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
