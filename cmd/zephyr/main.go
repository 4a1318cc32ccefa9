// Zephyr - voice assistant with credential-gated Google tools.
// Uses the OpenAI Realtime API for speech-to-speech conversation.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/zephyrlabs/zephyr/internal/config"
	"github.com/zephyrlabs/zephyr/pkg/zephyr"
)

func main() {
	cfg := parseFlags()

	app, err := zephyr.New(cfg)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := app.Init(); err != nil {
		log.Fatalf("Initialization failed: %v", err)
	}
	defer app.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Runtime error: %v", err)
	}
}

// parseFlags parses command line flags and returns configuration.
func parseFlags() zephyr.Config {
	cfg := zephyr.DefaultConfig()

	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	identity := flag.String("identity", "", "User identity (overrides ZEPHYR_IDENTITY)")
	port := flag.String("port", "", "Dashboard port (overrides ZEPHYR_WEB_PORT)")
	voice := flag.String("voice", cfg.Voice, "Voice for the realtime session")
	flag.Parse()

	cfg.LoadEnvConfig()

	cfg.Debug = *debug
	cfg.Voice = *voice
	cfg.CredentialDB = config.CredentialDBRequired()
	if *identity != "" {
		cfg.Identity = *identity
	}
	if *port != "" {
		cfg.Port = *port
	}
	return cfg
}
