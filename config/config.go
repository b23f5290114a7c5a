// Package config provides configuration types and defaults for ellipsis.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/ellipsis/layout"
)

// Output formats.
const (
	FormatPDF  = "pdf"
	FormatText = "text"
)

// Config holds all configuration options for ellipsis.
type Config struct {
	Format  string     `mapstructure:"format" yaml:"format"` // "pdf" (default) or "text"
	FontDir string     `mapstructure:"font_dir" yaml:"font_dir,omitempty"`
	Page    PageConfig `mapstructure:"page" yaml:"page"`
	View    ViewConfig `mapstructure:"view" yaml:"view"`
	Term    TermConfig `mapstructure:"term" yaml:"term"`
}

// PageConfig is the default page for documents without a page section.
// Lengths are strings such as "210mm" or "12pt".
type PageConfig struct {
	Size   string `mapstructure:"size" yaml:"size"` // A4, LETTER, ...; overridden by width/height
	Width  string `mapstructure:"width" yaml:"width,omitempty"`
	Height string `mapstructure:"height" yaml:"height,omitempty"`
	Margin string `mapstructure:"margin" yaml:"margin"` // 1-4 space separated lengths
	Gap    string `mapstructure:"gap" yaml:"gap"`
}

// ViewConfig holds the defaults applied to every view.
type ViewConfig struct {
	MaxLines    int    `mapstructure:"max_lines" yaml:"max_lines"`
	LineSpacing string `mapstructure:"line_spacing" yaml:"line_spacing"`
	Ellipsis    string `mapstructure:"ellipsis" yaml:"ellipsis"`
	Font        string `mapstructure:"font" yaml:"font"`
	Size        string `mapstructure:"size" yaml:"size"`
}

// TermConfig configures text output.
type TermConfig struct {
	Columns int  `mapstructure:"columns" yaml:"columns"`
	NoColor bool `mapstructure:"no_color" yaml:"no_color"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Format: FormatPDF,
		Page: PageConfig{
			Size:   "A4",
			Margin: "15mm",
			Gap:    "4mm",
		},
		View: ViewConfig{
			MaxLines:    layout.DefaultMaxLines,
			LineSpacing: "0",
			Ellipsis:    layout.DefaultEllipsis,
			Font:        "go-regular",
			Size:        "12pt",
		},
		Term: TermConfig{
			Columns: 80,
		},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	d := Defaults()
	viper.SetDefault("format", d.Format)
	viper.SetDefault("font_dir", d.FontDir)

	viper.SetDefault("page.size", d.Page.Size)
	viper.SetDefault("page.width", d.Page.Width)
	viper.SetDefault("page.height", d.Page.Height)
	viper.SetDefault("page.margin", d.Page.Margin)
	viper.SetDefault("page.gap", d.Page.Gap)

	viper.SetDefault("view.max_lines", d.View.MaxLines)
	viper.SetDefault("view.line_spacing", d.View.LineSpacing)
	viper.SetDefault("view.ellipsis", d.View.Ellipsis)
	viper.SetDefault("view.font", d.View.Font)
	viper.SetDefault("view.size", d.View.Size)

	viper.SetDefault("term.columns", d.Term.Columns)
	viper.SetDefault("term.no_color", d.Term.NoColor)
}

// Load unmarshals the current viper state and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be caught later with a better message.
func (c Config) Validate() error {
	switch c.Format {
	case FormatPDF, FormatText:
	default:
		return fmt.Errorf("invalid format %q: want %s or %s", c.Format, FormatPDF, FormatText)
	}
	if c.View.MaxLines < 0 {
		return fmt.Errorf("view.max_lines must not be negative, got %d", c.View.MaxLines)
	}
	if c.Term.Columns <= 0 {
		return fmt.Errorf("term.columns must be positive, got %d", c.Term.Columns)
	}
	return nil
}

// ViewOptions converts the view defaults into layout options for ts.
func (c Config) ViewOptions(ts layout.Typesetter) (layout.Options, error) {
	opts := layout.DefaultOptions()
	opts.MaxLines = c.View.MaxLines
	opts.Ellipsis = c.View.Ellipsis
	opts.Style.Font = c.View.Font
	if c.View.Size != "" {
		size, err := layout.ParseLength(c.View.Size)
		if err != nil {
			return opts, fmt.Errorf("view.size: %w", err)
		}
		opts.Style.Size = size
	}
	if c.View.LineSpacing != "" {
		spacing, err := layout.ParseLength(c.View.LineSpacing)
		if err != nil {
			return opts, fmt.Errorf("view.line_spacing: %w", err)
		}
		opts.LineSpacing = ts.ResolveLength(spacing)
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// PageOptions converts the page defaults into layout page options for ts.
// Text output ignores the page section: pages are term.columns wide, unbounded,
// without margins and one row apart.
func (c Config) PageOptions(ts layout.Typesetter) (layout.PageOptions, error) {
	var out layout.PageOptions
	if c.Format == FormatText {
		out.Width = float64(c.Term.Columns)
		out.Gap = 1
		return out, nil
	}
	if c.Page.Size != "" {
		w, h, ok := layout.PageSize(c.Page.Size)
		if !ok {
			return out, fmt.Errorf("page.size: unknown paper size %q", c.Page.Size)
		}
		out.Width, out.Height = ts.ResolveLength(w), ts.ResolveLength(h)
	}

	lengths := []struct {
		key   string
		value string
		dst   *float64
	}{
		{"page.width", c.Page.Width, &out.Width},
		{"page.height", c.Page.Height, &out.Height},
		{"page.gap", c.Page.Gap, &out.Gap},
	}
	for _, l := range lengths {
		if l.value == "" {
			continue
		}
		v, err := layout.ParseLength(l.value)
		if err != nil {
			return out, fmt.Errorf("%s: %w", l.key, err)
		}
		*l.dst = ts.ResolveLength(v)
	}

	if fields := strings.Fields(c.Page.Margin); len(fields) > 0 {
		m, err := layout.ResolveBox(ts, fields)
		if err != nil {
			return out, fmt.Errorf("page.margin: %w", err)
		}
		out.Margin = m
	}
	return out, nil
}

// ConfigDir returns the per-user configuration directory.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "ellipsis")
	}
	return filepath.Join(home, ".config", "ellipsis")
}

// WriteDefault writes the default configuration as YAML to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	header := "# ellipsis configuration\n# lengths accept pt, mm, cm, in and px suffixes\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
