package internal

import (
	"chat-client/domain"
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// ClientConfig defines the client-side environment variables.
type ClientConfig struct {
	ServerAddress   string        `env:"CHAT_SERVER_ADDR,default=localhost:8080" validate:"required,hostname_port"`
	UserName        string        `env:"CHAT_USER_NAME" validate:"max=64"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	InboundMode     string        `env:"INBOUND_MODE,default=direct" validate:"oneof=direct queued"`
	LocalEcho       bool          `env:"LOCAL_ECHO,default=false"`
	ExplicitLogout  bool          `env:"EXPLICIT_LOGOUT,default=false"`
	DrainTimeout    time.Duration `env:"DRAIN_TIMEOUT,default=0s" validate:"gte=0"`
	GracePeriod     time.Duration `env:"GRACE_PERIOD,default=2s" validate:"gt=0"`
	ErrorBufferSize int           `env:"ERROR_BUFFER_SIZE,default=16" validate:"gt=0"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=0s" validate:"gte=0"`
	BacklogWarnAt   int           `env:"BACKLOG_THRESHOLD,default=256" validate:"gte=0"`
	TranscriptPath  string        `env:"TRANSCRIPT_PATH"`
	SearchIndexPath string        `env:"SEARCH_INDEX_PATH" validate:"excluded_without=TranscriptPath"`
	CensoredWords   string        `env:"CENSORED_WORDS"`
	CharReplacement string        `env:"CHARACTER_REPLACEMENT,default=*"`
	Colours         bool          `env:"COLOURS,default=true"`
	DebugFrames     bool          `env:"DEBUG_FRAMES,default=false"`
}

// RelayConfig defines the environment variables of the relay server.
type RelayConfig struct {
	Host                 string `env:"HOST,default=localhost" validate:"required"`
	Port                 int    `env:"PORT,default=8080" validate:"gt=0,lte=65535"`
	ConnectionBufferSize int    `env:"CONNECTION_BUFFER_SIZE,default=64" validate:"gt=0"`
	LogLevel             string `env:"LOG_LEVEL,default=INFO"`
}

// LoadClientConfig reads an optional .env file, then the environment.
func LoadClientConfig(files ...string) (ClientConfig, error) {
	var config ClientConfig
	if err := load(&config, files...); err != nil {
		return ClientConfig{}, err
	}
	if _, err := CharacterRune(config.CharReplacement); err != nil {
		return ClientConfig{}, err
	}
	return config, nil
}

func LoadRelayConfig(files ...string) (RelayConfig, error) {
	var config RelayConfig
	if err := load(&config, files...); err != nil {
		return RelayConfig{}, err
	}
	return config, nil
}

func load(config any, files ...string) error {
	// A missing .env is fine, the environment alone is enough.
	_ = godotenv.Load(files...)
	if _, err := env.UnmarshalFromEnviron(config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c ClientConfig) Mode() domain.InboundMode {
	return domain.InboundMode(c.InboundMode)
}

// Words splits CENSORED_WORDS on commas, dropping blanks.
func (c ClientConfig) Words() []string {
	var words []string
	for _, word := range strings.Split(c.CensoredWords, ",") {
		if word = strings.TrimSpace(word); word != "" {
			words = append(words, word)
		}
	}
	return words
}

func (c RelayConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
