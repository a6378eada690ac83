package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/zebreus/wasmlet/cmd/wasmlet/cmd"
	"github.com/zebreus/wasmlet/internal/logging"
)

// main runs the wasmlet CLI and reports any failure on stderr.
func main() {
	// Failures before configuration is loaded still need readable output.
	logging.InitLogger("info", true)

	if err := cmd.Execute(); err != nil {
		log.Error().Msg(err.Error())
		os.Exit(1)
	}
}
