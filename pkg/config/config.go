package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	PostgresConnStr         string
	MongoURI                string
	JWTSecret               string
	FirebaseCredentialsPath string
	HashidSalt              string

	// Notification pipeline tuning. Defaults follow the original product
	// behavior: push on the first vote and every 50th after it, fan out to
	// at most 3 devices, and list up to 3 sender names in a caption.
	PushVotesInterval   int
	MaxPushDevices      int
	SendersCaptionLimit int
	WorkerCount         int
}

func Load() *Config {
	// Load environment variables from .env file, if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		HashidSalt:              getEnv("HASHID_SALT", "Stackdeck card short_id salt"),
		PushVotesInterval:       getEnvInt("PUSH_VOTES_INTERVAL", 50),
		MaxPushDevices:          getEnvInt("MAX_PUSH_DEVICES", 3),
		SendersCaptionLimit:     getEnvInt("SENDERS_CAPTION_LIMIT", 3),
		WorkerCount:             getEnvInt("WORKER_COUNT", 4),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}
