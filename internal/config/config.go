package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Calendar sources.
const (
	SourceGoogle = "google"
	SourceICS    = "ics"
)

const (
	defaultTimezone      = "America/Los_Angeles"
	defaultRefresh       = "*/15 * * * *"
	defaultRetryInterval = 30 * time.Second
	defaultHTTPTimeout   = 30 * time.Second
	defaultLookAheadDays = 1
	defaultMaxEvents     = 5
	defaultCalendarID    = "primary"
	defaultPreviewPath   = "/var/lib/portalcal/preview.png"
)

// GoogleConfig holds the OAuth client and the long-lived refresh token.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	// TokenURL overrides Google's token endpoint. Empty means the default.
	TokenURL string `yaml:"token_url,omitempty"`
}

// DisplayConfig describes the agenda layout and where frames are shown.
type DisplayConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Colors are hex strings, "0x00DD00" or "#00DD00".
	Background  string `yaml:"background"`
	TextColor   string `yaml:"text_color"`
	HeaderColor string `yaml:"header_color"`
	LineColor   string `yaml:"line_color"`

	// HeaderFont / EventFont are optional TTF/OTF paths. Empty uses Go Regular.
	HeaderFont     string  `yaml:"header_font,omitempty"`
	HeaderFontSize float64 `yaml:"header_font_size"`
	EventFont      string  `yaml:"event_font,omitempty"`
	EventFontSize  float64 `yaml:"event_font_size"`

	// PreviewPath is where the last frame is written as PNG. Empty disables it.
	PreviewPath string `yaml:"preview_path"`

	// Panel enables the SPI e-paper HAT.
	Panel bool `yaml:"panel"`
}

// BatteryConfig enables the optional I2C fuel gauge readout in the header.
type BatteryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bus     string `yaml:"bus"`
	Addr    uint16 `yaml:"addr"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone the agenda is shown in (e.g. "America/Los_Angeles").
	Timezone string `yaml:"timezone"`

	// Refresh is a cron-style schedule for fetch/render cycles.
	Refresh string `yaml:"refresh"`

	// RetryInterval is the fixed wait after a transient network failure.
	RetryInterval time.Duration `yaml:"retry_interval"`

	// HTTPTimeout bounds each calendar/token request.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// LookAheadDays is how many days past today the query window reaches.
	LookAheadDays int `yaml:"look_ahead_days"`

	// MaxEvents caps the rows requested and displayed.
	MaxEvents int `yaml:"max_events"`

	// Use24Hour selects "14:05" over "2:05pm".
	Use24Hour bool `yaml:"use_24h"`

	// Source selects the calendar backend: "google" or "ics".
	Source     string `yaml:"source"`
	CalendarID string `yaml:"calendar_id"`
	ICSURL     string `yaml:"ics_url,omitempty"`

	Google GoogleConfig `yaml:"google"`

	// SecretsFile is an optional dotenv file whose values override the
	// credentials above. See ApplySecrets.
	SecretsFile string `yaml:"secrets_file,omitempty"`

	Display DisplayConfig `yaml:"display"`
	Battery BatteryConfig `yaml:"battery"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns an in-memory default configuration matching a
// 320x240 green-on-black screen.
func DefaultConfig() *Config {
	return &Config{
		Timezone:      defaultTimezone,
		Refresh:       defaultRefresh,
		RetryInterval: defaultRetryInterval,
		HTTPTimeout:   defaultHTTPTimeout,
		LookAheadDays: defaultLookAheadDays,
		MaxEvents:     defaultMaxEvents,
		Use24Hour:     true,
		Source:        SourceGoogle,
		CalendarID:    defaultCalendarID,
		Display: DisplayConfig{
			Width:          320,
			Height:         240,
			Background:     "0x000000",
			TextColor:      "0x00DD00",
			HeaderColor:    "0x00DD00",
			LineColor:      "0x00DD00",
			HeaderFontSize: 18,
			EventFontSize:  14,
			PreviewPath:    defaultPreviewPath,
		},
		Battery: BatteryConfig{
			Addr: 0x57,
		},
		LogLevel: "info",
	}
}

// Normalize fills in missing/zero values so partially-filled files still
// behave like the defaults.
func (c *Config) Normalize() {
	d := DefaultConfig()

	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.Refresh == "" {
		c.Refresh = d.Refresh
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = d.RetryInterval
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = d.HTTPTimeout
	}
	if c.LookAheadDays <= 0 {
		c.LookAheadDays = d.LookAheadDays
	}
	if c.MaxEvents <= 0 {
		c.MaxEvents = d.MaxEvents
	}
	switch c.Source {
	case SourceGoogle, SourceICS:
	default:
		c.Source = SourceGoogle
	}
	if c.CalendarID == "" {
		c.CalendarID = d.CalendarID
	}

	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		c.Display.Width = d.Display.Width
		c.Display.Height = d.Display.Height
	}
	if c.Display.Background == "" {
		c.Display.Background = d.Display.Background
	}
	if c.Display.TextColor == "" {
		c.Display.TextColor = d.Display.TextColor
	}
	if c.Display.HeaderColor == "" {
		c.Display.HeaderColor = d.Display.HeaderColor
	}
	if c.Display.LineColor == "" {
		c.Display.LineColor = d.Display.LineColor
	}
	if c.Display.HeaderFontSize <= 0 {
		c.Display.HeaderFontSize = d.Display.HeaderFontSize
	}
	if c.Display.EventFontSize <= 0 {
		c.Display.EventFontSize = d.Display.EventFontSize
	}
	if c.Battery.Addr == 0 {
		c.Battery.Addr = d.Battery.Addr
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Validate reports configuration that cannot produce a working agenda.
// It is called after secrets have been applied.
func (c *Config) Validate() error {
	var errs []error
	switch c.Source {
	case SourceGoogle:
		if c.Google.ClientID == "" {
			errs = append(errs, errors.New("google.client_id is required"))
		}
		if c.Google.ClientSecret == "" {
			errs = append(errs, errors.New("google.client_secret is required"))
		}
		if c.Google.RefreshToken == "" {
			errs = append(errs, errors.New("google.refresh_token is required"))
		}
	case SourceICS:
		if c.ICSURL == "" {
			errs = append(errs, errors.New("ics_url is required when source is ics"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source %q", c.Source))
	}
	if _, err := ParseColor(c.Display.Background); err != nil {
		errs = append(errs, fmt.Errorf("display.background: %w", err))
	}
	if _, err := ParseColor(c.Display.TextColor); err != nil {
		errs = append(errs, fmt.Errorf("display.text_color: %w", err))
	}
	if _, err := ParseColor(c.Display.HeaderColor); err != nil {
		errs = append(errs, fmt.Errorf("display.header_color: %w", err))
	}
	if _, err := ParseColor(c.Display.LineColor); err != nil {
		errs = append(errs, fmt.Errorf("display.line_color: %w", err))
	}
	return errors.Join(errs...)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML over DefaultConfig
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	// Decode over the defaults so keys absent from the file (including
	// booleans such as use_24h) keep their default values.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".portalcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
