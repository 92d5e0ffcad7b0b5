package app

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/climate_node/internal/climate"
	"github.com/relabs-tech/climate_node/internal/config"
	"github.com/relabs-tech/climate_node/internal/dht"
)

func RunConsoleMQTT() error {
	cfg := config.Get()
	logger := log.With().Str("component", "console").Logger()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole, logger)
	if err != nil {
		return err
	}

	if err := subscribeJSON(client, cfg.TopicClimate, logger, func(s climate.Sample) {
		printSampleLine(os.Stdout, s, cfg.TemperatureScale)
	}); err != nil {
		return err
	}

	if err := subscribeJSON(client, cfg.TopicStatus, logger, func(ev climate.StatusEvent) {
		printStatusLine(os.Stdout, ev)
	}); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")
	client.Disconnect(250)
	return nil
}

func printSampleLine(w io.Writer, s climate.Sample, scale dht.Scale) {
	fmt.Fprintf(w,
		"[%s] %-12s T=%7.2f°%s  RH=%5.1f%%  DP=%s\n",
		s.CapturedAt.Format("15:04:05"), s.Source, s.Temperature(scale), scale, s.Humidity, formatDewPoint(s.DewPointC),
	)
}

func printStatusLine(w io.Writer, ev climate.StatusEvent) {
	fmt.Fprintf(w, "[%s] %-12s ERROR [%d] %s\n", ev.Time.Format("15:04:05"), ev.Source, ev.Code, ev.Status)
}

func formatDewPoint(dp *float64) string {
	if dp == nil {
		return "  n/a"
	}
	return fmt.Sprintf("%5.2f°C", *dp)
}
