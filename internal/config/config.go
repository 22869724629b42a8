package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingParameter reports an absent notification parameter; the
// invocation is malformed and must not be retried.
var ErrMissingParameter = errors.New("missing notification parameter")

// Config holds the full runtime configuration of one notification run.
type Config struct {
	Matrix       MatrixConfig       `mapstructure:"matrix"`
	HTTP         HTTPConfig         `mapstructure:"http"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Presentation PresentationConfig `mapstructure:"presentation"`
}

// MatrixConfig identifies the delivery target. CheckMK passes these as
// the three notification parameters; a config file may also set them.
type MatrixConfig struct {
	Homeserver  string `mapstructure:"homeserver"`
	AccessToken string `mapstructure:"access_token"`
	RoomID      string `mapstructure:"room_id"`
}

// HTTPConfig bounds the outbound request.
type HTTPConfig struct {
	Timeout string `mapstructure:"timeout"`
}

// LoggingConfig defines diagnostic output settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PresentationConfig points at an optional state-override file.
type PresentationConfig struct {
	StatesFile string `mapstructure:"states_file"`
}

// Load reads configuration with precedence environment > config file >
// defaults. The CheckMK notification parameters NOTIFY_PARAMETER_1..3
// map to homeserver, access token and room id.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".checkmk-matrix-notify"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults; 15s is the bound the notification runner tolerates.
	v.SetDefault("http.timeout", "15s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("presentation.states_file", "")

	// The fixed CheckMK parameter contract.
	_ = v.BindEnv("matrix.homeserver", "NOTIFY_PARAMETER_1")
	_ = v.BindEnv("matrix.access_token", "NOTIFY_PARAMETER_2")
	_ = v.BindEnv("matrix.room_id", "NOTIFY_PARAMETER_3")

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the delivery target is fully specified.
func (c *Config) Validate() error {
	switch {
	case c.Matrix.Homeserver == "":
		return fmt.Errorf("%w: homeserver (NOTIFY_PARAMETER_1)", ErrMissingParameter)
	case c.Matrix.AccessToken == "":
		return fmt.Errorf("%w: access token (NOTIFY_PARAMETER_2)", ErrMissingParameter)
	case c.Matrix.RoomID == "":
		return fmt.Errorf("%w: room id (NOTIFY_PARAMETER_3)", ErrMissingParameter)
	}
	return nil
}

// Timeout returns the parsed request timeout, falling back to 15s on
// an unparsable value.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.HTTP.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}
