package textdiff

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Configuration holds everything a diff run can be tuned with. It can be
// loaded from a TOML file.
type Configuration struct {
	Encoding          string `toml:"encoding"`  // IANA name; empty means the platform default
	Separator         string `toml:"separator"` // "auto", "lf", "crlf" or "cr"
	IgnoreWhitespace  bool   `toml:"ignore_whitespace"`
	CompactWhitespace bool   `toml:"compact_whitespace"`
	TrimWhitespace    bool   `toml:"trim_whitespace"`
	Style             string `toml:"style"`        // "normal" or "full"
	NonPrinting       string `toml:"non_printing"` // "asis", "escape", "box" or "remove"
	TabWidth          int    `toml:"tab_width"`
	DetailedLogging   bool   `toml:"detailed_logging"`
	LogPath           string `toml:"log_path"`
}

func DefaultConfig() *Configuration {
	return &Configuration{
		Separator:   "auto",
		Style:       "normal",
		NonPrinting: "escape",
		TabWidth:    8,
	}
}

// LoadConfig reads path on top of DefaultConfig.
func LoadConfig(path string) (*Configuration, error) {
	config := DefaultConfig()

	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks every enumerated field.
func (c *Configuration) Validate() error {
	if c.Encoding != "" {
		if _, err := LookupEncoding(c.Encoding); err != nil {
			return err
		}
	}

	if _, _, err := c.SeparatorOverride(); err != nil {
		return err
	}

	if _, err := ParseStyle(c.Style); err != nil {
		return err
	}

	if _, err := ParseNonPrinting(c.NonPrinting); err != nil {
		return err
	}
	return nil
}

// SeparatorOverride returns the configured separator and whether one is set;
// "auto" and "" mean inference.
func (c *Configuration) SeparatorOverride() (LineSeparator, bool, error) {
	switch lower(c.Separator) {
	case "", "auto":
		return 0, false, nil
	}

	sep, err := ParseLineSeparator(c.Separator)
	if err != nil {
		return 0, false, err
	}
	return sep, true, nil
}

func (c *Configuration) DiffConfig() DiffConfig {
	return DiffConfig{
		IgnoreWhitespace:  c.IgnoreWhitespace,
		CompactWhitespace: c.CompactWhitespace,
		TrimWhitespace:    c.TrimWhitespace,
	}
}

// RenderStyle returns the parsed Style; invalid values fall back to normal.
func (c *Configuration) RenderStyle() Style {
	style, _ := ParseStyle(c.Style)
	return style
}

// NonPrintingPolicy returns the parsed policy.
func (c *Configuration) NonPrintingPolicy() (NonPrinting, error) {
	return ParseNonPrinting(c.NonPrinting)
}
