package zephyr

import (
	"os"

	"github.com/zephyrlabs/zephyr/internal/config"
)

// Config holds everything the application needs to start.
type Config struct {
	Debug bool

	// CredentialDB is the path to the sqlite credential store.
	CredentialDB string

	// Identity is the default user identity for the local session.
	Identity string

	// Port is the web dashboard listen port.
	Port string

	// Voice session
	OpenAIKey string
	Voice     string

	// Google OAuth consent flow; the flow is disabled when ClientID
	// or ClientSecret is empty.
	GoogleClientID     string
	GoogleClientSecret string
	RedirectURL        string
}

// DefaultConfig returns a configuration with sane defaults.
func DefaultConfig() Config {
	return Config{
		Identity: config.DefaultIdentity,
		Port:     config.DefaultWebPort,
		Voice:    "alloy",
	}
}

// LoadEnvConfig overlays environment variables onto the configuration.
func (c *Config) LoadEnvConfig() {
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	c.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	if url := os.Getenv("GOOGLE_REDIRECT_URL"); url != "" {
		c.RedirectURL = url
	}
	c.Identity = config.Identity(c.Identity)
	c.Port = config.WebPort()
}
