package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	SystemName    string
	SystemAddress string
	RootAddress   string

	UpdateIntervalSeconds int64
	PrevVotesDiscount     uint64
	NewVotesDiscount      uint64
}

func Load() (Config, error) {
	// Missing .env is fine, real deployments use process env.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "repledger"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	systemName := os.Getenv("SYSTEM_NAME")
	if systemName == "" {
		systemName = "reputation-system"
	}

	interval, err := envInt64("UPDATE_INTERVAL", 0)
	if err != nil {
		return Config{}, err
	}
	prevDiscount, err := envUint64("PREV_VOTES_DISCOUNT", 100)
	if err != nil {
		return Config{}, err
	}
	newDiscount, err := envUint64("NEW_VOTES_DISCOUNT", 100)
	if err != nil {
		return Config{}, err
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,

		SystemName:    systemName,
		SystemAddress: os.Getenv("SYSTEM_ADDRESS"),
		RootAddress:   os.Getenv("ROOT_ADDRESS"),

		UpdateIntervalSeconds: interval,
		PrevVotesDiscount:     prevDiscount,
		NewVotesDiscount:      newDiscount,
	}, nil
}

func envInt64(name string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func envUint64(name string, fallback uint64) (uint64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}
