package app

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/climate_node/internal/climate"
	"github.com/relabs-tech/climate_node/internal/config"
	"github.com/relabs-tech/climate_node/internal/dht"
)

// displayLineHeight matches basicfont.Face7x13.
const displayLineHeight = 13

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	sample     climate.Sample
	haveSample bool

	status     climate.StatusEvent
	haveStatus bool
}

func RunDisplay() error {
	cfg := config.Get()
	logger := log.With().Str("component", "display").Logger()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	logger.Info().Str("bus", bus.String()).Msg("display initialized")

	if err := drawLines(dev, splashLines()); err != nil {
		logger.Warn().Err(err).Msg("error showing splash")
	}

	// Data storage
	data := &DisplayData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeJSON(client, cfg.TopicClimate, logger, func(s climate.Sample) {
		data.mu.Lock()
		data.sample = s
		data.haveSample = true
		data.mu.Unlock()
	}); err != nil {
		return fmt.Errorf("failed to subscribe for display: %w", err)
	}
	if err := subscribeJSON(client, cfg.TopicStatus, logger, func(ev climate.StatusEvent) {
		data.mu.Lock()
		data.status = ev
		data.haveStatus = true
		data.mu.Unlock()
	}); err != nil {
		return fmt.Errorf("failed to subscribe for display: %w", err)
	}

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	logger.Info().Msg("starting update loop")

	for range ticker.C {
		// Read data without copying the mutex
		data.mu.RLock()
		snapshot := DisplayData{
			sample:     data.sample,
			haveSample: data.haveSample,
			status:     data.status,
			haveStatus: data.haveStatus,
		}
		data.mu.RUnlock()

		if err := drawLines(dev, climateLines(&snapshot, cfg.TemperatureScale)); err != nil {
			logger.Warn().Err(err).Msg("error updating display")
		}
	}

	return nil
}

// climateLines lays out the screen: temperature, humidity, dew point and
// the last error when it is newer than the last sample.
func climateLines(data *DisplayData, scale dht.Scale) []string {
	if !data.haveSample {
		lines := []string{"", "Climate", "Waiting..."}
		if data.haveStatus {
			lines = append(lines, data.status.Status)
		}
		return lines
	}

	s := data.sample
	lines := []string{
		fmt.Sprintf("T:  %6.1f %s", s.Temperature(scale), scale),
		fmt.Sprintf("RH: %6.1f %%", s.Humidity),
	}
	if s.DewPointC != nil {
		lines = append(lines, fmt.Sprintf("DP: %6.1f %s", dht.Convert(*s.DewPointC, scale), scale))
	} else {
		lines = append(lines, "DP:    n/a")
	}
	if data.haveStatus && data.status.Time.After(s.CapturedAt) {
		lines = append(lines, "! "+data.status.Status)
	} else {
		lines = append(lines, s.CapturedAt.Local().Format("15:04:05"))
	}
	return lines
}

func splashLines() []string {
	return []string{"", "Climate Node", "DHT11/DHT22"}
}

// renderLines draws one text line per 13 pixel row on a blank 128x64 image.
func renderLines(lines []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	for i, line := range lines {
		drawer.Dot = fixed.P(0, (i+1)*displayLineHeight)
		drawer.DrawString(line)
	}
	return img
}

func drawLines(dev *ssd1306.Dev, lines []string) error {
	return dev.Draw(dev.Bounds(), renderLines(lines), image.Point{})
}
