package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "monday", cfg.WeekStart)
	assert.Equal(t, "-P1D", cfg.ReminderTrigger)
	assert.Equal(t, 30*time.Second, cfg.Capture.Timeout())
}

func TestLoadFirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadPartialConfigNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
week_start: Sunday
year: 2027
rules_url: https://example.com/rules.txt
highlight_red: [payroll]
basic_auth:
  username: ops
  password: secret
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sunday", cfg.WeekStart)
	assert.Equal(t, 2027, cfg.Year)
	assert.Equal(t, "https://example.com/rules.txt", cfg.RulesURL)
	assert.Equal(t, []string{"payroll"}, cfg.HighlightRed)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "0 * * * *", cfg.RefreshCron)
	assert.Equal(t, "prodcal.local", cfg.UIDDomain)
	require.NotNil(t, cfg.BasicAuth)
	assert.Equal(t, "ops", cfg.BasicAuth.Username)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "week start", yaml: "week_start: friday\n", want: "week_start"},
		{name: "year", yaml: "year: 2051\n", want: "out of range"},
		{name: "cron", yaml: "refresh: every hour\n", want: "refresh"},
		{name: "timezone", yaml: "timezone: Mars/Olympus\n", want: "timezone"},
		{name: "log level", yaml: "logging:\n  level: loud\n", want: "logging.level"},
		{name: "log format", yaml: "logging:\n  format: xml\n", want: "logging.format"},
		{name: "trigger", yaml: "reminder_trigger: tomorrow\n", want: "reminder_trigger"},
		{name: "basic auth", yaml: "basic_auth:\n  username: ops\n", want: "basic_auth"},
		{name: "bad yaml", yaml: "listen: [\n", want: "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Title = "Finance Close"
	cfg.Year = 2026
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Finance Close", loaded.Title)
	assert.Equal(t, 2026, loaded.Year)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestValidateYear(t *testing.T) {
	assert.NoError(t, ValidateYear(2020))
	assert.NoError(t, ValidateYear(2050))
	assert.Error(t, ValidateYear(2019))
	assert.Error(t, ValidateYear(2051))
}

func TestResolveYear(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Date(2026, time.December, 31, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 2026, cfg.ResolveYear(now))

	cfg.Timezone = "Asia/Tokyo"
	assert.Equal(t, 2027, cfg.ResolveYear(now))

	cfg.Year = 2030
	assert.Equal(t, 2030, cfg.ResolveYear(now))
}

func TestLogOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.OutputFile = "/tmp/prodcal.log"
	opts := cfg.LogOptions()
	assert.Equal(t, "info", opts.Level)
	assert.Equal(t, "console", opts.Format)
	assert.Equal(t, "/tmp/prodcal.log", opts.OutputFile)
}
