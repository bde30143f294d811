// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv = "WAYBARWHERETO"
	AppName   = "waybar-whereto"

	DefaultTextTpl       = `{{modeIcon .Mode}} {{with first .Picks}}{{trunc .Name 20}}{{else}}{{loc "nothing found"}}{{end}}`
	DefaultAltTextTpl    = `{{modeIcon .Mode}} {{range $i, $p := .Picks}}{{if $i}} · {{end}}{{trunc $p.Name 12}}{{else}}{{loc "nothing found"}}{{end}}`
	DefaultTooltipTpl    = `{{if .Found}}{{modeIcon .Mode}} {{loc "recommendations"}}{{if .Teleport}} · {{floatFormat .DistanceKm 1}}km {{arrow .BearingDeg}} {{compass .BearingDeg}}{{else}} · {{loc "near me"}}{{end}}{{with .Region}} · {{.}}{{end}}
{{range $i, $p := .Picks}}
{{inc $i}}. {{$p.Name}} · {{$p.Label}}
    📍 {{$p.Street}} ({{distance $p.DistanceMeters}})
    {{if $p.Travel.Walkable}}🚶 {{loc "walk"}} {{duration $p.Travel.Walking}}{{else}}🚗 {{loc "drive"}} {{duration $p.Travel.Driving}}{{end}} {{loc "from here"}}
{{end}}{{else}}{{loc "nothing found"}} ({{.Attempts}} {{loc "attempts"}}){{end}}
{{loc "updated"}}: {{localizedTime .UpdateTime}}`
	DefaultAltTooltipTpl = `{{range $i, $p := .Picks}}{{if $i}}

{{end}}{{$p.Name}}
{{$p.Links.Place}}
{{$p.Links.Route}}{{end}}`

	MaxSearchAttempts = 20
	MaxPicks          = 10
	MaxPoolSize       = 45
)

// ModeSettings are the search parameters of a single mode. Zero values are replaced with the
// mode's defaults.
type ModeSettings struct {
	MinKm        float64 `fig:"min_km"`
	MaxKm        float64 `fig:"max_km"`
	RadiusMeters int     `fig:"radius"`
	Keyword      string  `fig:"keyword"`
	// Allowed values: category, keyword
	Lookup string `fig:"lookup"`
}

var (
	defaultFood = ModeSettings{MinKm: 1, MaxKm: 10, RadiusMeters: 3000, Keyword: "맛집", Lookup: "category"}
	defaultCafe = ModeSettings{MinKm: 2, MaxKm: 20, RadiusMeters: 5000, Keyword: "카페", Lookup: "category"}
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`
	// Allowed values: food, cafe
	Mode string `fig:"mode" default:"food"`
	// NearMe searches around the current location instead of teleporting to a random spot nearby.
	NearMe bool `fig:"near_me"`

	Search struct {
		MaxAttempts  int `fig:"max_attempts" default:"5"`
		NearAttempts int `fig:"near_attempts" default:"1"`
		Picks        int `fig:"picks" default:"3"`
		PoolSize     int `fig:"pool_size" default:"15"`
		// Seed makes the recommendations reproducible. Zero picks a random seed.
		Seed uint64 `fig:"seed"`
	} `fig:"search"`

	Food ModeSettings `fig:"food"`
	Cafe ModeSettings `fig:"cafe"`

	Places struct {
		// Allowed values: kakao, google
		Provider string        `fig:"provider" default:"kakao"`
		APIKey   string        `fig:"apikey"`
		CacheTTL time.Duration `fig:"cache_ttl" default:"15m"`
	} `fig:"places"`

	GeoCoder struct {
		// Allowed values: nominatim, kakao
		Provider string `fig:"provider" default:"nominatim"`
		APIKey   string `fig:"apikey"`
	} `fig:"geocoder"`

	Filter struct {
		Blocklist     []string `fig:"blocklist"`
		BlocklistFile string   `fig:"blocklist_file"`
		// AvoidRecent skips places that were recommended within this period. Requires the history.
		AvoidRecent time.Duration `fig:"avoid_recent"`
	} `fig:"filter"`

	GeoLocation struct {
		File                   string `fig:"file"`
		PlacenameFile          string `fig:"placename_file"`
		DisableGeoIP           bool   `fig:"disable_geoip"`
		DisableGPSD            bool   `fig:"disable_gpsd"`
		DisableGeolocationFile bool   `fig:"disable_geolocation_file"`
		DisablePlacenameFile   bool   `fig:"disable_placename_file"`
		DisableICHNAEA         bool   `fig:"disable_ichnaea"`
	} `fig:"geolocation"`

	Intervals struct {
		Output     time.Duration `fig:"output" default:"30s"`
		Reroll     time.Duration `fig:"reroll" default:"1h"`
		CacheSweep time.Duration `fig:"cache_sweep" default:"10m"`
	} `fig:"intervals"`

	Templates struct {
		Text       string `fig:"text"`
		AltText    string `fig:"alt_text"`
		Tooltip    string `fig:"tooltip"`
		AltTooltip string `fig:"alt_tooltip"`
	} `fig:"templates"`

	Preview struct {
		Enable bool `fig:"enable"`
	} `fig:"preview"`

	History struct {
		Disable bool   `fig:"disable"`
		Path    string `fig:"path"`
	} `fig:"history"`

	RateLimit struct {
		RequestsPerSecond float64 `fig:"requests_per_second" default:"5"`
		Burst             int     `fig:"burst" default:"5"`
	} `fig:"ratelimit"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	c.Mode = strings.ToLower(c.Mode)
	if c.Mode != "food" && c.Mode != "cafe" {
		return fmt.Errorf("invalid mode: %s", c.Mode)
	}
	if c.Locale == "" {
		c.Locale = getLocale()
	}

	if c.Search.MaxAttempts < 1 || c.Search.MaxAttempts > MaxSearchAttempts {
		return fmt.Errorf("invalid max attempts: %d", c.Search.MaxAttempts)
	}
	if c.Search.NearAttempts < 1 || c.Search.NearAttempts > MaxSearchAttempts {
		return fmt.Errorf("invalid near attempts: %d", c.Search.NearAttempts)
	}
	if c.Search.Picks < 1 || c.Search.Picks > MaxPicks {
		return fmt.Errorf("invalid number of picks: %d", c.Search.Picks)
	}
	if c.Search.PoolSize < c.Search.Picks || c.Search.PoolSize > MaxPoolSize {
		return fmt.Errorf("invalid pool size: %d", c.Search.PoolSize)
	}

	c.Food.fillDefaults(defaultFood)
	c.Cafe.fillDefaults(defaultCafe)
	if err := c.Food.validate(); err != nil {
		return fmt.Errorf("invalid food settings: %w", err)
	}
	if err := c.Cafe.validate(); err != nil {
		return fmt.Errorf("invalid cafe settings: %w", err)
	}

	c.Places.Provider = strings.ToLower(c.Places.Provider)
	c.GeoCoder.Provider = strings.ToLower(c.GeoCoder.Provider)
	if c.Filter.AvoidRecent < 0 {
		return fmt.Errorf("invalid avoid recent period: %s", c.Filter.AvoidRecent)
	}
	if c.Intervals.Output <= 0 || c.Intervals.Reroll <= 0 || c.Intervals.CacheSweep <= 0 {
		return fmt.Errorf("intervals must be positive")
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid rate limit: %f", c.RateLimit.RequestsPerSecond)
	}

	if c.Templates.Text == "" {
		c.Templates.Text = DefaultTextTpl
	}
	if c.Templates.AltText == "" {
		c.Templates.AltText = DefaultAltTextTpl
	}
	if c.Templates.Tooltip == "" {
		c.Templates.Tooltip = DefaultTooltipTpl
	}
	if c.Templates.AltTooltip == "" {
		c.Templates.AltTooltip = DefaultAltTooltipTpl
	}

	home, _ := os.UserHomeDir()
	if c.GeoLocation.File == "" {
		c.GeoLocation.File = filepath.Join(home, ".config", AppName, "geolocation")
	}
	if c.GeoLocation.PlacenameFile == "" {
		c.GeoLocation.PlacenameFile = filepath.Join(home, ".config", AppName, "placename")
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(stateDir(home), AppName, "history.db")
	}

	return nil
}

func (m *ModeSettings) fillDefaults(defaults ModeSettings) {
	if m.MinKm == 0 && m.MaxKm == 0 {
		m.MinKm, m.MaxKm = defaults.MinKm, defaults.MaxKm
	}
	if m.RadiusMeters == 0 {
		m.RadiusMeters = defaults.RadiusMeters
	}
	if m.Keyword == "" {
		m.Keyword = defaults.Keyword
	}
	m.Lookup = strings.ToLower(m.Lookup)
	if m.Lookup == "" {
		m.Lookup = defaults.Lookup
	}
}

func (m *ModeSettings) validate() error {
	if m.MinKm < 0 || m.MinKm >= m.MaxKm {
		return fmt.Errorf("distance range %.1f-%.1fkm is invalid", m.MinKm, m.MaxKm)
	}
	if m.RadiusMeters <= 0 {
		return fmt.Errorf("radius %d is invalid", m.RadiusMeters)
	}
	if m.Lookup != "category" && m.Lookup != "keyword" {
		return fmt.Errorf("unsupported lookup type: %s", m.Lookup)
	}
	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}

func stateDir(home string) string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(home, ".local", "state")
}
