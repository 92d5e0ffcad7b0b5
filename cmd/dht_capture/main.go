// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/climate_node/internal/app"
	"github.com/relabs-tech/climate_node/internal/dht"
)

// dht_capture dumps the raw answer of a sensor. It does not need a
// configuration file so it can be used while wiring a new node.
func main() {
	pin := flag.String("pin", "GPIO4", "data pin")
	model := flag.String("model", "dht22", "sensor model: dht11, dht22 or am2302")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	m, err := dht.ParseModel(*model)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -model")
	}

	log.Info().Str("pin", *pin).Str("model", m.String()).Msg("capturing one DHT answer")

	if err := app.RunCapture(*pin, m); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
