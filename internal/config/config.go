// Package config provides configuration helpers for zephyr commands.
package config

import (
	"fmt"
	"os"
	"time"
)

// Default assistant configuration.
const (
	DefaultWebPort  = "8181"
	DefaultTimezone = "Europe/Paris"
	DefaultIdentity = "local"
)

// CredentialDBRequired returns the credential store DSN from the
// CREDENTIAL_DB env var. Exits if not set: running without a working
// store would silently strip every user's authentication.
func CredentialDBRequired() string {
	dsn := os.Getenv("CREDENTIAL_DB")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "Error: CREDENTIAL_DB environment variable is required")
		fmt.Fprintln(os.Stderr, "Usage: CREDENTIAL_DB=./zephyr.db go run ./cmd/zephyr")
		os.Exit(1)
	}
	return dsn
}

// Timezone returns the zone used for timestamps that arrive without an
// offset, from the ZEPHYR_TIMEZONE env var. Falls back to the documented
// default when unset or unparsable.
func Timezone() *time.Location {
	name := os.Getenv("ZEPHYR_TIMEZONE")
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: unknown timezone %q, using %s\n", name, DefaultTimezone)
		loc, _ = time.LoadLocation(DefaultTimezone)
	}
	return loc
}

// WebPort returns the dashboard port from ZEPHYR_WEB_PORT or the default.
func WebPort() string {
	if port := os.Getenv("ZEPHYR_WEB_PORT"); port != "" {
		return port
	}
	return DefaultWebPort
}

// Identity returns the participant identity from ZEPHYR_IDENTITY.
// Falls back to the provided default if not set.
func Identity(defaultID string) string {
	if id := os.Getenv("ZEPHYR_IDENTITY"); id != "" {
		return id
	}
	return defaultID
}
