package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_CHAT_ADDR points at a running chat service; the suite is skipped without it
	ChatAddr string `envconfig:"E2E_CHAT_ADDR"`
	// E2E_DEBUG_JSON dumps every frame as JSON in the debug logs
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
