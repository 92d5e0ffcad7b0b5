package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/relabs-tech/climate_node/internal/dht"
)

// DefaultPath is where the commands look for their configuration file.
const DefaultPath = "climate_config.txt"

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicClimate string
	TopicStatus  string

	// DHT Hardware
	DHTPin   string // periph pin name, e.g. "GPIO4"
	DHTModel dht.Model
	DHTMock  bool // publish synthetic samples instead of touching the bus

	// DHT Timing
	DHTSampleInterval int // milliseconds, >= 2000
	DHTMinInterval    int // milliseconds, >= 2000
	DHTStrictRate     bool
	DHTWarmup         int // milliseconds of power-up settle before the first read

	// Presentation
	TemperatureScale dht.Scale

	// History
	HistoryDBPath         string // empty keeps history in memory
	HistoryRetentionHours int

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CBus         string // empty selects the first bus
	DisplayUpdateInterval int    // milliseconds

	// Logging
	LogLevel zerolog.Level
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported (lowercase) so other packages cannot access it directly.
//     This enforces encapsulation and prevents external code from modifying config without proper locking.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock (Lock) for initialization,
//     read lock (RLock) for Get() allows multiple concurrent readers without blocking each other.
//
// External code must use InitGlobal() to set and Get() to read, ensuring thread safety.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Defaults returns a Config with every optional key set.
func Defaults() *Config {
	return &Config{
		MQTTClientIDProducer:  "climate-producer",
		MQTTClientIDConsole:   "climate-console-subscriber",
		MQTTClientIDWeb:       "climate-web-subscriber",
		MQTTClientIDDisplay:   "climate-display-subscriber",
		TopicClimate:          "climate/dht",
		TopicStatus:           "climate/dht/status",
		DHTModel:              dht.DHT22,
		DHTSampleInterval:     3000,
		DHTMinInterval:        2000,
		DHTWarmup:             1000,
		TemperatureScale:      dht.Celsius,
		HistoryRetentionHours: 24 * 7,
		WebServerPort:         8080,
		DisplayUpdateInterval: 1000,
		LogLevel:              zerolog.InfoLevel,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_CLIMATE":
		c.TopicClimate = value
	case "TOPIC_STATUS":
		c.TopicStatus = value

	// DHT Hardware
	case "DHT_PIN":
		c.DHTPin = value
	case "DHT_MODEL":
		m, err := dht.ParseModel(value)
		if err != nil {
			return fmt.Errorf("invalid DHT_MODEL: %w", err)
		}
		c.DHTModel = m
	case "DHT_MOCK":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid DHT_MOCK %q: %w", value, err)
		}
		c.DHTMock = b

	// DHT Timing
	case "DHT_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DHT_SAMPLE_INTERVAL %q: %w", value, err)
		}
		if interval < 2000 {
			return fmt.Errorf("DHT_SAMPLE_INTERVAL must be at least 2000ms (sensor sampling period), got %d", interval)
		}
		c.DHTSampleInterval = interval
	case "DHT_MIN_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DHT_MIN_INTERVAL %q: %w", value, err)
		}
		if interval < 2000 {
			return fmt.Errorf("DHT_MIN_INTERVAL must be at least 2000ms (sensor sampling period), got %d", interval)
		}
		c.DHTMinInterval = interval
	case "DHT_STRICT_RATE":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid DHT_STRICT_RATE %q: %w", value, err)
		}
		c.DHTStrictRate = b
	case "DHT_WARMUP":
		warmup, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DHT_WARMUP %q: %w", value, err)
		}
		if warmup < 0 {
			return fmt.Errorf("DHT_WARMUP cannot be negative, got %d", warmup)
		}
		c.DHTWarmup = warmup

	// Presentation
	case "TEMPERATURE_SCALE":
		s, err := dht.ParseScale(value)
		if err != nil {
			return fmt.Errorf("invalid TEMPERATURE_SCALE: %w", err)
		}
		c.TemperatureScale = s

	// History
	case "HISTORY_DB_PATH":
		c.HistoryDBPath = value
	case "HISTORY_RETENTION_HOURS":
		hours, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid HISTORY_RETENTION_HOURS %q: %w", value, err)
		}
		if hours < 1 {
			return fmt.Errorf("HISTORY_RETENTION_HOURS must be at least 1, got %d", hours)
		}
		c.HistoryRetentionHours = hours

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", port)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	// Logging
	case "LOG_LEVEL":
		level, err := zerolog.ParseLevel(strings.ToLower(value))
		if err != nil {
			return fmt.Errorf("invalid LOG_LEVEL %q: %w", value, err)
		}
		c.LogLevel = level

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.DHTPin == "" && !c.DHTMock {
		return fmt.Errorf("DHT_PIN is required unless DHT_MOCK=true")
	}
	if c.DHTSampleInterval < c.DHTMinInterval {
		return fmt.Errorf("DHT_SAMPLE_INTERVAL (%d) must not be below DHT_MIN_INTERVAL (%d)", c.DHTSampleInterval, c.DHTMinInterval)
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
// Acquires write lock (configMu.Lock) during initialization to prevent concurrent access.
// This is the only function that can set globalConfig.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
// Uses read lock (configMu.RLock) to allow multiple concurrent readers without blocking.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
