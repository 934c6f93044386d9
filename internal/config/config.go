// Package config loads settings from defaults, a TOML file, the environment
// and command-line flags, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/m-mizutani/goerr/v2"
	"github.com/natefinch/atomic"
	"github.com/spf13/viper"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/clickup"
)

// AppName names the config directory and the environment prefix.
const AppName = "clickup-to-sqlite"

// EnvPrefix prefixes environment overrides of any key, with dots replaced by
// underscores: CLICKUP_TO_SQLITE_LOG_LEVEL sets log.level.
const EnvPrefix = "CLICKUP_TO_SQLITE"

// TokenEnv is the conventional variable holding the API token.
const TokenEnv = "CLICKUP_ACCESS_TOKEN"

// Keys.
const (
	KeyAccessToken = "access_token"
	KeyAPIURL      = "api_url"
	KeyHTTPTimeout = "http_timeout"
	KeyLogLevel    = "log.level"
	KeyLogFormat   = "log.format"
	KeyLogFile     = "log.file"
	KeySince       = "time_entries.since"
	KeyUntil       = "time_entries.until"
	KeyChunk       = "time_entries.chunk"
)

var (
	ErrNoToken      = goerr.New("no access token configured")
	ErrInvalidDate  = goerr.New("invalid date")
	ErrConfigExists = goerr.New("config file already exists")
)

// Config is the effective configuration.
type Config struct {
	AccessToken string            `mapstructure:"access_token" toml:"access_token"`
	APIURL      string            `mapstructure:"api_url" toml:"api_url"`
	HTTPTimeout string            `mapstructure:"http_timeout" toml:"http_timeout"`
	Log         LogConfig         `mapstructure:"log" toml:"log"`
	TimeEntries TimeEntriesConfig `mapstructure:"time_entries" toml:"time_entries"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`
	File   string `mapstructure:"file" toml:"file"`
}

// TimeEntriesConfig bounds and splits the time entry window. Since and Until
// accept RFC 3339, YYYY-MM-DD or English phrases such as "3 months ago";
// empty means ten years back or ahead. Chunk is a duration ("720h", "30d");
// empty or "0" fetches the window at once.
type TimeEntriesConfig struct {
	Since string `mapstructure:"since" toml:"since"`
	Until string `mapstructure:"until" toml:"until"`
	Chunk string `mapstructure:"chunk" toml:"chunk"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:      clickup.DefaultBaseURL,
		HTTPTimeout: "0s",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		TimeEntries: TimeEntriesConfig{
			Chunk: "0",
		},
	}
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to locate config directory")
	}
	return filepath.Join(dir, AppName, "config.toml"), nil
}

// NewViper returns a viper instance with defaults and environment bindings
// in place. Flags are bound by the caller.
func NewViper() *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault(KeyAccessToken, d.AccessToken)
	v.SetDefault(KeyAPIURL, d.APIURL)
	v.SetDefault(KeyHTTPTimeout, d.HTTPTimeout)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
	v.SetDefault(KeyLogFile, d.Log.File)
	v.SetDefault(KeySince, d.TimeEntries.Since)
	v.SetDefault(KeyUntil, d.TimeEntries.Until)
	v.SetDefault(KeyChunk, d.TimeEntries.Chunk)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyAccessToken, TokenEnv, EnvPrefix+"_ACCESS_TOKEN")

	return v
}

// Load reads the config file into v and returns the merged configuration.
//
// An explicitly given path must exist. Without one, the default path is read
// if present.
func Load(v *viper.Viper, path string) (*Config, error) {
	v.SetConfigType("toml")

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to decode config")
	}
	return &cfg, nil
}

// Token returns the access token or ErrNoToken.
func (c *Config) Token() (string, error) {
	if strings.TrimSpace(c.AccessToken) == "" {
		return "", ErrNoToken
	}
	return c.AccessToken, nil
}

// Timeout parses HTTPTimeout. Zero means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	d, err := ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid http_timeout", goerr.V("value", c.HTTPTimeout))
	}
	return d, nil
}

// Redacted returns a copy safe for display.
func (c Config) Redacted() Config {
	c.AccessToken = MaskToken(c.AccessToken)
	return c
}

// MaskToken hides all but the first and last four characters of a token.
func MaskToken(token string) string {
	switch {
	case token == "":
		return ""
	case len(token) <= 8:
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, goerr.Wrap(err, "failed to encode config")
	}
	return buf.Bytes(), nil
}

const fileHeader = `# clickup-to-sqlite configuration.
#
# Every key can be overridden with an environment variable prefixed with
# CLICKUP_TO_SQLITE_ (dots become underscores), and the token also with
# CLICKUP_ACCESS_TOKEN. Command-line flags win over both.
#
# time_entries.since / until take RFC 3339 timestamps, YYYY-MM-DD dates or
# phrases like "3 months ago". Empty means ten years back / ahead.

`

// WriteFile writes the default configuration to path atomically. An existing
// file is only replaced when force is set.
func WriteFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return goerr.Wrap(ErrConfigExists, "refusing to overwrite", goerr.V("path", path))
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return goerr.Wrap(err, "failed to create config directory", goerr.V("path", path))
	}

	body, err := Default().Encode()
	if err != nil {
		return err
	}

	content := append([]byte(fileHeader), body...)
	if err := atomic.WriteFile(path, bytes.NewReader(content)); err != nil {
		return goerr.Wrap(err, "failed to write config file", goerr.V("path", path))
	}
	// The file may hold a token.
	if err := os.Chmod(path, 0600); err != nil {
		return goerr.Wrap(err, "failed to set config file permissions", goerr.V("path", path))
	}
	return nil
}

// ParseDuration parses a Go duration, additionally accepting a whole number
// of days ("30d"). Empty and "0" are zero.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, goerr.Wrap(err, "invalid day count", goerr.V("value", s))
		}
		if n < 0 {
			return 0, goerr.New("negative duration", goerr.V("value", s))
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid duration", goerr.V("value", s))
	}
	if d < 0 {
		return 0, goerr.New("negative duration", goerr.V("value", s))
	}
	return d, nil
}
