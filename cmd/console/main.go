// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/climate_node/internal/app"
	"github.com/relabs-tech/climate_node/internal/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to configuration file")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Msg("starting climate console (direct sensor read)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(config.Get().LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunConsole(ctx); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
