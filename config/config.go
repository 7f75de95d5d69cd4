// Package config reads process settings from the environment. Unset or
// unparsable values fall back to their defaults.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aswathylr-builds/order-confirmation/channels"
)

const (
	// TaskQueue is shared by the worker and the starter
	TaskQueue = "order-confirmation-queue"

	DefaultDispatcherURL = "http://localhost:8080/send-order-confirmation"
)

// Temporal holds the client settings shared by worker and starter
type Temporal struct {
	Host              string
	EncryptionEnabled bool
	KeyFile           string
}

// Server configures the dispatcher HTTP service
type Server struct {
	Port         int
	Email        channels.EmailConfig
	KafkaBrokers string
	KafkaTopic   string
}

// Worker configures the Temporal worker
type Worker struct {
	Temporal
	DispatcherURL string
	SessionDB     string
	HealthPort    int
}

// Starter configures the CLI
type Starter struct {
	Temporal
	DispatcherURL   string
	SessionDB       string
	TaxRate         decimal.Decimal
	ItemConcurrency int
	ResendWindow    time.Duration
}

// LoadServer reads the dispatcher service settings
func LoadServer() Server {
	return Server{
		Port: getEnvAsInt("PORT", 8080),
		Email: channels.EmailConfig{
			ServiceID:  getEnv("EMAILJS_SERVICE_ID", ""),
			TemplateID: getEnv("EMAILJS_TEMPLATE_ID", ""),
			UserID:     getEnv("EMAILJS_USER_ID", ""),
			URL:        getEnv("EMAILJS_URL", channels.DefaultEmailJSURL),
			Timeout:    getEnvAsDuration("EMAILJS_TIMEOUT", 10*time.Second),
		},
		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "order-notifications"),
	}
}

// LoadWorker reads the worker settings
func LoadWorker() Worker {
	return Worker{
		Temporal:      loadTemporal(),
		DispatcherURL: getEnv("DISPATCHER_URL", DefaultDispatcherURL),
		SessionDB:     getEnv("SESSION_DB", "sessions.db"),
		HealthPort:    getEnvAsInt("HEALTH_PORT", 8090),
	}
}

// LoadStarter reads the CLI settings
func LoadStarter() Starter {
	return Starter{
		Temporal:        loadTemporal(),
		DispatcherURL:   getEnv("DISPATCHER_URL", DefaultDispatcherURL),
		SessionDB:       getEnv("SESSION_DB", ""),
		TaxRate:         getEnvAsDecimal("TAX_RATE", decimal.Zero),
		ItemConcurrency: getEnvAsInt("ITEM_CONCURRENCY", 1),
		ResendWindow:    getEnvAsDuration("RESEND_WINDOW", 30*time.Minute),
	}
}

func loadTemporal() Temporal {
	return Temporal{
		Host:              getEnv("TEMPORAL_HOST", "localhost:7233"),
		EncryptionEnabled: getEnvAsBool("ENCRYPTION_ENABLED", false),
		KeyFile:           getEnv("ENCRYPTION_KEY_FILE", ".encryption.key"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
