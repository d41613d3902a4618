package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramConfig TelegramConfig
	JoplinConfig   JoplinConfig
	PostgresConfig PostgresConfig
	KafkaConfig    KafkaConfig
	MetricsConfig  MetricsConfig
	TracingConfig  TracingConfig
}

type TelegramConfig struct {
	Token string
}

type JoplinConfig struct {
	Token string
	Host  string
	Port  string
}

// BaseURL is the root of the Joplin Web Clipper API.
func (j JoplinConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%s", j.Host, j.Port)
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (p PostgresConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Enabled reports whether activity events should go through Kafka at all.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type MetricsConfig struct {
	Addr string
}

type TracingConfig struct {
	Endpoint string
}

// LoadBridgeConfig loads the settings of the chat bridge process.
func LoadBridgeConfig() (*Config, error) {
	config := load()

	if config.TelegramConfig.Token == "" {
		return nil, fmt.Errorf("TELEGRAMBOT_ML_TOKEN is required")
	}

	if config.JoplinConfig.Port == "" {
		return nil, fmt.Errorf("JOPLIN_PORT must not be empty")
	}

	return config, nil
}

// LoadJournalConfig loads the settings of the activity journal process.
func LoadJournalConfig() (*Config, error) {
	config := load()

	if !config.KafkaConfig.Enabled() {
		return nil, fmt.Errorf("KAFKA_BROKERS is required")
	}

	return config, nil
}

func load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}

	return &Config{
		TelegramConfig: TelegramConfig{
			Token: getEnv("TELEGRAMBOT_ML_TOKEN", ""),
		},
		JoplinConfig: JoplinConfig{
			Token: getEnv("JOPLIN_TOKEN", ""),
			Host:  getEnv("JOPLIN_HOST", "localhost"),
			Port:  getEnv("JOPLIN_PORT", "41184"),
		},
		PostgresConfig: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "user"),
			Password: getEnv("POSTGRES_PASSWORD", "password"),
			DBName:   getEnv("POSTGRES_DB", "dbname"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		KafkaConfig: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "note-activity"),
			GroupID: getEnv("KAFKA_GROUP_ID", "note-journal"),
		},
		MetricsConfig: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ":8080"),
		},
		TracingConfig: TracingConfig{
			Endpoint: getEnv("TRACING_ENDPOINT", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
