package config

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/oleg578/csvmend/internal/textenc"
)

// Config represents a csvmend repair run configuration
type Config struct {
	Delimiter     string  `yaml:"delimiter"`
	Header        bool    `yaml:"header"`
	Reconcile     bool    `yaml:"reconcile"`
	AlwaysQuote   bool    `yaml:"always_quote"`
	CRLF          bool    `yaml:"crlf"`
	Encoding      string  `yaml:"encoding"`
	DropPattern   string  `yaml:"drop_pattern"`
	QuarantineDir string  `yaml:"quarantine_dir"`
	Logging       Logging `yaml:"logging"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

var delimiterNames = map[string]byte{
	"comma":     ',',
	"tab":       '\t',
	"pipe":      '|',
	"semicolon": ';',
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Delimiter: ",",
		Header:    true,
		Encoding:  "utf-8",
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from the specified path on top of the defaults
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Comma resolves the configured delimiter to a single byte.
func (c *Config) Comma() (byte, error) {
	return ParseDelimiter(c.Delimiter)
}

// ParseDelimiter resolves a delimiter setting to a single byte. Names such as
// "tab" and "pipe" are accepted alongside literal characters.
func ParseDelimiter(s string) (byte, error) {
	if b, ok := delimiterNames[s]; ok {
		return b, nil
	}
	if s == `\t` {
		return '\t', nil
	}
	if len(s) != 1 || s[0] >= utf8.RuneSelf {
		return 0, fmt.Errorf("delimiter must be a single ASCII character, got %q", s)
	}
	switch b := s[0]; b {
	case '"', '\r', '\n':
		return 0, fmt.Errorf("delimiter cannot be %q", b)
	default:
		return b, nil
	}
}

// Validate checks the delimiter and encoding settings
func (c *Config) Validate() error {
	if _, err := c.Comma(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := textenc.Lookup(c.Encoding); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
