package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings
const (
	EnvDevice      = "TICKPROBE_DEVICE"
	EnvBaud        = "TICKPROBE_BAUD"
	EnvMetricsAddr = "TICKPROBE_METRICS_ADDR"
	EnvLogLevel    = "TICKPROBE_LOG_LEVEL"
)

// ProbeConfig configures the tickprobe host tool
type ProbeConfig struct {
	Device        string `json:"device"`
	Baud          int    `json:"baud"`
	ReadTimeoutMs int    `json:"read_timeout_ms"`

	// Rate is the software timer rate used by the soft command
	Rate uint32 `json:"rate"`

	// MetricsAddr, when set, serves Prometheus metrics (e.g. ":9100")
	MetricsAddr string `json:"metrics_addr"`

	LogLevel string `json:"log_level"`
	LogJSON  bool   `json:"log_json"`
}

// LoadConfig parses a JSON configuration and applies defaults
func LoadConfig(jsonData []byte) (*ProbeConfig, error) {
	var config ProbeConfig

	if len(jsonData) > 0 {
		if err := json.Unmarshal(jsonData, &config); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads path (if not empty), then applies overrides from a .env
// file in the working directory, if present, and from the environment.
func LoadFile(path string) (*ProbeConfig, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	config, err := LoadConfig(data)
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := applyEnv(config); err != nil {
		return nil, err
	}
	return config, config.Validate()
}

// Validate checks values defaults cannot fix
func (c *ProbeConfig) Validate() error {
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if c.ReadTimeoutMs < 0 {
		return fmt.Errorf("invalid read timeout %dms", c.ReadTimeoutMs)
	}
	if c.Rate > 1_000_000_000 {
		return fmt.Errorf("software timer rate %d above 1e9", c.Rate)
	}
	return nil
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *ProbeConfig) {
	if config.Device == "" {
		config.Device = "/dev/ttyACM0"
	}
	if config.Baud == 0 {
		config.Baud = 250000
	}
	if config.ReadTimeoutMs == 0 {
		config.ReadTimeoutMs = 100
	}
	if config.Rate == 0 {
		config.Rate = 1_000_000
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

func applyEnv(config *ProbeConfig) error {
	if v := os.Getenv(EnvDevice); v != "" {
		config.Device = v
	}
	if v := os.Getenv(EnvBaud); v != "" {
		baud, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBaud, err)
		}
		config.Baud = baud
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		config.MetricsAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.LogLevel = v
	}
	return nil
}
