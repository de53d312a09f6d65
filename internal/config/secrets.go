package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/subosito/gotenv"
)

// Keys recognised in the secrets file.
const (
	SecretCalendarID   = "CALENDAR_ID"
	SecretClientID     = "GOOGLE_CLIENT_ID"
	SecretClientSecret = "GOOGLE_CLIENT_SECRET"
	SecretRefreshToken = "GOOGLE_REFRESH_TOKEN"
	SecretTimezone     = "TIMEZONE"
	SecretICSURL       = "ICS_URL"
)

// ApplySecrets reads c.SecretsFile (dotenv syntax) and overrides the matching
// credential fields. Keeping credentials in a separate file lets the YAML
// settings be shared without leaking tokens. A missing SecretsFile setting is
// not an error; a configured but unreadable file is.
func (c *Config) ApplySecrets() error {
	if c.SecretsFile == "" {
		return nil
	}
	env, err := gotenv.Read(c.SecretsFile)
	if err != nil {
		return fmt.Errorf("config: read secrets %s: %w", c.SecretsFile, err)
	}
	c.applyEnv(env)
	return nil
}

func (c *Config) applyEnv(env gotenv.Env) {
	set := func(dst *string, key string) {
		if v, ok := env[key]; ok && v != "" {
			*dst = v
		}
	}
	set(&c.CalendarID, SecretCalendarID)
	set(&c.Google.ClientID, SecretClientID)
	set(&c.Google.ClientSecret, SecretClientSecret)
	set(&c.Google.RefreshToken, SecretRefreshToken)
	set(&c.Timezone, SecretTimezone)
	set(&c.ICSURL, SecretICSURL)
}

// ParseColor parses "0xRRGGBB", "#RRGGBB" or "RRGGBB" into an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimPrefix(strings.TrimPrefix(v, "0x"), "0X")
	v = strings.TrimPrefix(v, "#")
	if len(v) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xFF}, nil
}
