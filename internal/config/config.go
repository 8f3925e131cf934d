package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultRechargeURL is the Polar AccessLink nightly recharge endpoint.
const DefaultRechargeURL = "https://www.polaraccesslink.com/v3/users/nightly-recharge"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Recharge API.
	RechargeURL     string
	RechargeTimeout time.Duration

	// Synthetic series generation. A nil seed draws a fresh one at startup.
	SyntheticDays int
	SyntheticSeed *uint64

	// Assessment event publishing, enabled when brokers are configured.
	KafkaBrokers         []string
	KafkaAssessmentTopic string
	KafkaEnabled         bool

	ChartWidth  int
	ChartHeight int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	rechargeTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("RECHARGE_TIMEOUT", "10s"))
	if err != nil || rechargeTimeout <= 0 {
		return nil, errors.New("invalid RECHARGE_TIMEOUT")
	}

	rechargeURL := sharedcfg.EnvOrDefault("RECHARGE_URL", DefaultRechargeURL)
	if err := validateURL(rechargeURL); err != nil {
		return nil, fmt.Errorf("invalid RECHARGE_URL: %w", err)
	}

	days, err := parsePositiveInt("SYNTHETIC_DAYS", 7)
	if err != nil {
		return nil, err
	}
	if days < 2 {
		return nil, errors.New("SYNTHETIC_DAYS must be at least 2")
	}

	seed, err := parseSeed()
	if err != nil {
		return nil, err
	}

	chartWidth, err := parsePositiveInt("CHART_WIDTH", 1024)
	if err != nil {
		return nil, err
	}
	chartHeight, err := parsePositiveInt("CHART_HEIGHT", 512)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RechargeURL:     rechargeURL,
		RechargeTimeout: rechargeTimeout,

		SyntheticDays: days,
		SyntheticSeed: seed,

		KafkaBrokers:         brokers,
		KafkaAssessmentTopic: sharedcfg.EnvOrDefault("KAFKA_ASSESSMENT_TOPIC", "ans-assessments"),
		KafkaEnabled:         len(brokers) > 0,

		ChartWidth:  chartWidth,
		ChartHeight: chartHeight,
	}

	if cfg.KafkaEnabled && cfg.KafkaAssessmentTopic == "" {
		return nil, errors.New("KAFKA_ASSESSMENT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseSeed() (*uint64, error) {
	s := os.Getenv("SYNTHETIC_SEED")
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, errors.New("invalid SYNTHETIC_SEED")
	}
	return &n, nil
}
