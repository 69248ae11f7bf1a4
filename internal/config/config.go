// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"credit-ledger/pkg/db" // Import db package for its Config struct
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config

	// JWTSecret is the HS256 secret used to verify bearer tokens issued
	// by the external auth service.
	JWTSecret string

	// AllowUserSelfDeduct keeps the transitional policy that lets a user
	// deduct from their own balance. It defaults to true until the
	// payment-gateway integration replaces direct deduction.
	AllowUserSelfDeduct bool

	// KafkaBrokers lists the brokers for transaction event publishing.
	// Empty means events are disabled and a no-op publisher is used.
	KafkaBrokers []string
}

// LoadConfig loads configuration from a .env file (if present) and the
// environment. It returns an AppConfig or an error if a required variable
// is missing or invalid.
func LoadConfig() (*AppConfig, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080" // Default port
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost" // Default to localhost for local development
	}
	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		dbPortStr = "5432" // Default PostgreSQL port
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		dbPassword = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "creditdb"
	}
	dbSSLMode := os.Getenv("DB_SSLMODE")
	if dbSSLMode == "" {
		dbSSLMode = "disable"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	allowSelfDeduct := true
	if v := os.Getenv("ALLOW_USER_SELF_DEDUCT"); v != "" {
		allowSelfDeduct, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ALLOW_USER_SELF_DEDUCT: %w", err)
		}
	}

	var kafkaBrokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		for _, broker := range strings.Split(v, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				kafkaBrokers = append(kafkaBrokers, broker)
			}
		}
	}

	return &AppConfig{
		ServerPort: serverPort,
		DB: db.Config{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			DBName:   dbName,
			SSLMode:  dbSSLMode,
		},
		JWTSecret:           jwtSecret,
		AllowUserSelfDeduct: allowSelfDeduct,
		KafkaBrokers:        kafkaBrokers,
	}, nil
}
