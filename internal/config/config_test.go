package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/relabs-tech/climate_node/internal/dht"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "climate_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
# broker
MQTT_BROKER=tcp://localhost:1883
TOPIC_CLIMATE = greenhouse/climate
DHT_PIN=GPIO17
DHT_MODEL=dht11
DHT_SAMPLE_INTERVAL=5000
DHT_STRICT_RATE=true
DHT_WARMUP=0
TEMPERATURE_SCALE=F
HISTORY_DB_PATH=/var/lib/climate/history.db
WEB_SERVER_PORT=9000
LOG_LEVEL=DEBUG
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("MQTTBroker = %q", cfg.MQTTBroker)
	}
	if cfg.TopicClimate != "greenhouse/climate" {
		t.Errorf("TopicClimate = %q", cfg.TopicClimate)
	}
	if cfg.DHTPin != "GPIO17" || cfg.DHTModel != dht.DHT11 {
		t.Errorf("DHT = %q %v", cfg.DHTPin, cfg.DHTModel)
	}
	if cfg.DHTSampleInterval != 5000 || !cfg.DHTStrictRate || cfg.DHTWarmup != 0 {
		t.Errorf("timing = %d %v %d", cfg.DHTSampleInterval, cfg.DHTStrictRate, cfg.DHTWarmup)
	}
	if cfg.TemperatureScale != dht.Fahrenheit {
		t.Errorf("TemperatureScale = %v", cfg.TemperatureScale)
	}
	if cfg.WebServerPort != 9000 {
		t.Errorf("WebServerPort = %d", cfg.WebServerPort)
	}
	if cfg.LogLevel != zerolog.DebugLevel {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "MQTT_BROKER=tcp://broker:1883\nDHT_MOCK=true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Defaults()
	want.MQTTBroker = "tcp://broker:1883"
	want.DHTMock = true
	if *cfg != *want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
	if cfg.DHTModel != dht.DHT22 || cfg.DHTMinInterval != 2000 || cfg.DHTWarmup != 1000 {
		t.Errorf("unexpected DHT defaults: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing broker", "DHT_PIN=GPIO4\n", "MQTT_BROKER is required"},
		{"missing pin", "MQTT_BROKER=tcp://b:1883\n", "DHT_PIN is required"},
		{"no equals", "MQTT_BROKER\n", "invalid config line 1"},
		{"unknown key", "MQTT_BROKER=x\nIMU_LEFT_SPI_DEVICE=/dev/spidev0.0\n", "unknown config key"},
		{"bad model", "DHT_MODEL=dht33\n", "invalid DHT_MODEL"},
		{"fast interval", "DHT_SAMPLE_INTERVAL=1000\n", "at least 2000ms"},
		{"fast min interval", "DHT_MIN_INTERVAL=500\n", "at least 2000ms"},
		{"bad bool", "DHT_STRICT_RATE=maybe\n", "invalid DHT_STRICT_RATE"},
		{"bad scale", "TEMPERATURE_SCALE=R\n", "invalid TEMPERATURE_SCALE"},
		{"bad port", "WEB_SERVER_PORT=70000\n", "WEB_SERVER_PORT must be"},
		{"bad level", "LOG_LEVEL=loud\n", "invalid LOG_LEVEL"},
		{"negative warmup", "DHT_WARMUP=-1\n", "cannot be negative"},
		{"sample below min interval", "MQTT_BROKER=x\nDHT_PIN=GPIO4\nDHT_MIN_INTERVAL=5000\n", "must not be below DHT_MIN_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
