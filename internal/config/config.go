package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	appLog "prodcal/internal/log"
)

// Supported year range for generation.
const (
	MinYear = 2020
	MaxYear = 2050
)

const (
	defaultListen          = "127.0.0.1:8080"
	defaultTimezone        = "UTC"
	defaultWeekStart       = "monday"
	defaultRefresh         = "0 * * * *"
	defaultTitle           = "Production Calendar"
	defaultCacheDir        = "./var/rules-cache"
	defaultUIDDomain       = "prodcal.local"
	defaultReminderTrigger = "-P1D"
	defaultCaptureTimeout  = 30
	defaultPreviewPath     = "./var/preview.png"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the web server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// CaptureConfig configures headless Chromium.
type CaptureConfig struct {
	TimeoutSec int `yaml:"timeout_sec" json:"timeout_sec"`
	// PreviewPath is where serve mode writes the PNG preview of /calendar.
	PreviewPath string `yaml:"preview_path" json:"preview_path"`
	// ChromePath overrides the Chromium binary; empty lets chromedp find one.
	ChromePath string `yaml:"chrome_path,omitempty" json:"chrome_path,omitempty"`
}

// Timeout returns the capture timeout as a duration.
func (c CaptureConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// LoggingConfig mirrors log.Options.
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"`
	OutputFile string `yaml:"output_file,omitempty" json:"output_file,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone used to decide "today" in rendered grids.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is the first column of month grids: "monday" (default) or
	// "sunday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron schedules rule reload and preview capture in serve mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Year is the default generation year. Zero means the current year.
	Year int `yaml:"year" json:"year"`

	// Title heads rendered calendars and names the ICS calendar.
	Title string `yaml:"title" json:"title"`

	// RulesPath and RulesURL select the rule list. RulesPath wins; with
	// neither set the built-in defaults are used.
	RulesPath string `yaml:"rules_path" json:"rules_path"`
	RulesURL  string `yaml:"rules_url" json:"rules_url"`
	// CacheDir holds the HTTP cache for RulesURL.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// UIDDomain is appended to every ICS UID.
	UIDDomain string `yaml:"uid_domain" json:"uid_domain"`
	// ReminderTrigger is the VALARM TRIGGER duration.
	ReminderTrigger string `yaml:"reminder_trigger" json:"reminder_trigger"`

	// HighlightRed is a list of keywords that cause events to be rendered in red.
	HighlightRed []string `yaml:"highlight_red" json:"highlight_red"`

	Capture CaptureConfig `yaml:"capture" json:"capture"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          defaultListen,
		Timezone:        defaultTimezone,
		WeekStart:       defaultWeekStart,
		RefreshCron:     defaultRefresh,
		Title:           defaultTitle,
		CacheDir:        defaultCacheDir,
		UIDDomain:       defaultUIDDomain,
		ReminderTrigger: defaultReminderTrigger,
		HighlightRed:    []string{"deadline", "close"},
		Capture: CaptureConfig{
			TimeoutSec:  defaultCaptureTimeout,
			PreviewPath: defaultPreviewPath,
		},
		Logging: LoggingConfig{
			Level:  string(appLog.LevelInfo),
			Format: "console",
		},
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	if c.WeekStart == "" {
		c.WeekStart = defaultWeekStart
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.Title == "" {
		c.Title = defaultTitle
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.UIDDomain == "" {
		c.UIDDomain = defaultUIDDomain
	}
	if c.ReminderTrigger == "" {
		c.ReminderTrigger = defaultReminderTrigger
	}
	if c.HighlightRed == nil {
		c.HighlightRed = []string{}
	}
	if c.Capture.TimeoutSec <= 0 {
		c.Capture.TimeoutSec = defaultCaptureTimeout
	}
	if c.Capture.PreviewPath == "" {
		c.Capture.PreviewPath = defaultPreviewPath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = string(appLog.LevelInfo)
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.WeekStart != "monday" && c.WeekStart != "sunday" {
		errs = append(errs, fmt.Errorf("week_start %q: want monday or sunday", c.WeekStart))
	}
	if c.Year != 0 {
		if err := ValidateYear(c.Year); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		errs = append(errs, fmt.Errorf("refresh %q: %w", c.RefreshCron, err))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	if _, err := appLog.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q: want console or json", c.Logging.Format))
	}
	if !strings.HasPrefix(c.ReminderTrigger, "-P") && !strings.HasPrefix(c.ReminderTrigger, "P") {
		errs = append(errs, fmt.Errorf("reminder_trigger %q: want an ISO 8601 duration such as -P1D", c.ReminderTrigger))
	}
	if c.BasicAuth != nil && (c.BasicAuth.Username == "") != (c.BasicAuth.Password == "") {
		errs = append(errs, errors.New("basic_auth: username and password must both be set"))
	}
	return errors.Join(errs...)
}

// ValidateYear checks y against the supported range.
func ValidateYear(y int) error {
	if y < MinYear || y > MaxYear {
		return fmt.Errorf("year %d out of range %d-%d", y, MinYear, MaxYear)
	}
	return nil
}

// ResolveYear returns the configured year, or the current year in the
// configured timezone.
func (c *Config) ResolveYear(now time.Time) int {
	if c.Year != 0 {
		return c.Year
	}
	return now.In(c.Location()).Year()
}

// Location loads Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LogOptions converts the logging section for log.Configure.
func (c *Config) LogOptions() appLog.Options {
	return appLog.Options{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		OutputFile: c.Logging.OutputFile,
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms (creating the parent directory) and returned.
//   - Otherwise the YAML is read, normalized and validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes cfg to path atomically via a temp file + rename, leaving the
// final file with 0600 permissions.
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

	tmp, err := os.CreateTemp(dir, ".prodcal-config-*.tmp")
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

// Save is a convenience method that delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
