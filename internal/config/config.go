package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gubarz/pikchrmd/internal/parser"
	"github.com/gubarz/pikchrmd/internal/render"
	"github.com/spf13/viper"
)

// Defaults matching the original pikchr filter
const (
	DefaultAttrs   = "style='font-size:initial;'"
	DefaultSummary = "Pikchr Source"
)

// ErrConflictingFilters is returned when both diagram filters are set
var ErrConflictingFilters = errors.New("only_number and only_modifier are mutually exclusive")

// Config holds the run configuration. It is built once by Load and
// treated as read-only afterwards.
type Config struct {
	Class           string `mapstructure:"class"`
	Attrs           string `mapstructure:"attrs"`
	Summary         string `mapstructure:"summary"`
	SummaryAttrs    string `mapstructure:"summary_attrs"`
	Bare            bool   `mapstructure:"bare"`
	PlaintextErrors bool   `mapstructure:"plaintext_errors"`
	DarkMode        bool   `mapstructure:"dark_mode"`
	CurrentColor    bool   `mapstructure:"current_color"`
	Requote         bool   `mapstructure:"requote"`
	Details         bool   `mapstructure:"details"`
	Document        bool   `mapstructure:"document"`
	Diagrams        bool   `mapstructure:"diagrams"`
	OnlyNumber      int    `mapstructure:"only_number"`
	OnlyModifier    string `mapstructure:"only_modifier"`
	Tag             string `mapstructure:"tag"`
	Renderer        string `mapstructure:"renderer"`
	MaxBlock        int    `mapstructure:"max_block"`
	ColorHeader     string `mapstructure:"color_header"`
	ColorBorder     string `mapstructure:"color_border"`
	ColorError      string `mapstructure:"color_error"`
	ColorDim        string `mapstructure:"color_dim"`
}

// SetDefaults registers every configuration key with its default value
func SetDefaults(v *viper.Viper) {
	v.SetDefault("class", "")
	v.SetDefault("attrs", DefaultAttrs)
	v.SetDefault("summary", DefaultSummary)
	v.SetDefault("summary_attrs", "")
	v.SetDefault("bare", false)
	v.SetDefault("plaintext_errors", false)
	v.SetDefault("dark_mode", false)
	v.SetDefault("current_color", false)
	v.SetDefault("requote", false) // requote every diagram
	v.SetDefault("details", false) // wrap every requote in <details>
	v.SetDefault("document", true) // copy non-diagram text to output
	v.SetDefault("diagrams", true) // render diagrams at all
	v.SetDefault("only_number", 0) // 1-based; 0 disables
	v.SetDefault("only_modifier", "")
	v.SetDefault("tag", parser.DefaultTag)
	v.SetDefault("renderer", render.DefaultCommand)
	v.SetDefault("max_block", 0)       // bytes; 0 is unlimited
	v.SetDefault("color_header", "36") // Cyan
	v.SetDefault("color_border", "240")
	v.SetDefault("color_error", "31") // Red
	v.SetDefault("color_dim", "90")   // Gray
}

// Init registers defaults, config file locations and environment binding,
// then reads the config file. A missing file is not an error; an explicitly
// named one is.
func Init(v *viper.Viper, configFile string) error {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("pikchrmd")
		v.SetConfigType("yaml")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "pikchrmd"))
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PIKCHRMD")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// Load unmarshals and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks settings that cannot be combined
func (c *Config) Validate() error {
	if c.OnlyNumber < 0 {
		return fmt.Errorf("only_number must not be negative, got %d", c.OnlyNumber)
	}
	if c.OnlyNumber > 0 && c.OnlyModifier != "" {
		return ErrConflictingFilters
	}
	if c.MaxBlock < 0 {
		return fmt.Errorf("max_block must not be negative, got %d", c.MaxBlock)
	}
	return nil
}

// BaseFlags returns the render flags applied to every diagram
func (c *Config) BaseFlags() render.Flags {
	var flags render.Flags
	if c.PlaintextErrors {
		flags |= render.PlaintextErrors
	}
	if c.DarkMode {
		flags |= render.DarkMode
	}
	if c.CurrentColor {
		flags |= render.CurrentColor
	}
	return flags
}

// Filter returns the active diagram filter
func (c *Config) Filter() parser.Filter {
	return parser.Filter{
		Modifier: c.OnlyModifier,
		Number:   c.OnlyNumber,
	}
}

// Defaults returns the run-wide settings per-diagram modifiers build on
func (c *Config) Defaults() parser.Defaults {
	return parser.Defaults{
		Bare:            c.Bare,
		Requote:         c.Requote,
		Details:         c.Details,
		Flags:           c.BaseFlags(),
		IncludeDiagrams: c.Diagrams,
		Filter:          c.Filter(),
	}
}
