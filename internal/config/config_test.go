package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-table-report/internal/layout"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, 1.0, cfg.LegendToleranceMM)
	assert.Equal(t, 0.01, cfg.GridEpsilon)
	assert.NotEmpty(t, cfg.PDFDirectory)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid stdio", func(c *Config) {}, ""},
		{"valid server", func(c *Config) { c.Mode = ModeServer }, ""},
		{"bad mode", func(c *Config) { c.Mode = "http" }, "mode must be"},
		{"bad port", func(c *Config) {
			c.Mode = ModeServer
			c.Port = 70000
		}, "port must be"},
		{"port ignored in stdio", func(c *Config) { c.Port = 0 }, ""},
		{"empty dir", func(c *Config) { c.PDFDirectory = "" }, "cannot be empty"},
		{"zero size", func(c *Config) { c.MaxFileSize = 0 }, "must be positive"},
		{"negative tolerance", func(c *Config) { c.LegendToleranceMM = -1 }, "legend tolerance"},
		{"negative epsilon", func(c *Config) { c.GridEpsilon = -0.1 }, "grid epsilon"},
		{"zero gap ratio", func(c *Config) { c.RunGapRatio = 0 }, "run gap ratio"},
		{"trace level", func(c *Config) { c.LogLevel = "trace" }, ""},
		{"bad level", func(c *Config) { c.LogLevel = "verbose" }, "invalid log level"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.PDFDirectory = dir
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	cfg := DefaultConfig()
	cfg.PDFDirectory = dir

	require.NoError(t, cfg.Validate())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestAnalyzerOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LegendToleranceMM = 2
	cfg.GridEpsilon = 0

	opts := cfg.AnalyzerOptions()
	assert.InDelta(t, 2*layout.PointsPerMillimeter, opts.LegendTolerance, 1e-12)
	assert.Zero(t, opts.GridEpsilon)
	assert.True(t, opts.SpatialIndex)
}

func TestDefaultAnalyzerToleranceIsOneMillimeter(t *testing.T) {
	opts := DefaultConfig().AnalyzerOptions()
	assert.Equal(t, layout.MillimetersToPoints(1), opts.LegendTolerance)
}

func TestServiceConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PDFDirectory = "/srv/reports"
	cfg.MaxFileSize = 1024
	cfg.RunGapRatio = 0.25

	sc := cfg.ServiceConfig()
	assert.Equal(t, "/srv/reports", sc.Directory)
	assert.Equal(t, int64(1024), sc.MaxFileSize)
	assert.Equal(t, 0.25, sc.Extractor.RunGapRatio)
	assert.Equal(t, cfg.AnalyzerOptions(), sc.Analyzer)
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host, cfg.Port = "0.0.0.0", 9000

	assert.Equal(t, "0.0.0.0:9000", cfg.Address())
	assert.True(t, cfg.IsStdioMode())
	assert.False(t, cfg.IsServerMode())
	assert.False(t, cfg.IsDebug())
	cfg.LogLevel = "trace"
	assert.True(t, cfg.IsDebug())
	assert.Contains(t, cfg.String(), "Port: 9000")

	lc := cfg.LoggingConfig()
	assert.Equal(t, "trace", lc.Level)
	assert.Equal(t, os.Stderr, lc.Output)
}

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	DefineFlags(fs, DefaultConfig())
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestFromFlagSet(t *testing.T) {
	dir := t.TempDir()
	fs := newFlagSet(t,
		"--mode=server", "--port=9090", "--dir="+dir,
		"--loglevel=DEBUG", "--logformat=json",
		"--legend-tolerance-mm=1.5", "--grid-epsilon=0", "--run-gap-ratio=0.5",
	)

	cfg, err := FromFlagSet(fs)
	require.NoError(t, err)

	assert.Equal(t, ModeServer, cfg.Mode)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, dir, cfg.PDFDirectory)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 1.5, cfg.LegendToleranceMM)
	assert.Zero(t, cfg.GridEpsilon)
	assert.Equal(t, 0.5, cfg.RunGapRatio)
}

func TestFromFlagSetEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TABLE_REPORT_DIR", dir)
	t.Setenv("TABLE_REPORT_PORT", "8181")
	t.Setenv("TABLE_REPORT_LEGEND_TOLERANCE_MM", "3")

	cfg, err := FromFlagSet(newFlagSet(t))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.PDFDirectory)
	assert.Equal(t, 8181, cfg.Port)
	assert.Equal(t, 3.0, cfg.LegendToleranceMM)
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("TABLE_REPORT_DIR", t.TempDir())
	t.Setenv("TABLE_REPORT_PORT", "8181")

	cfg, err := FromFlagSet(newFlagSet(t, "--port=7070"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
}

func TestFromFlagSetInvalid(t *testing.T) {
	_, err := FromFlagSet(newFlagSet(t, "--dir="+t.TempDir(), "--mode=invalid"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadFromFlags(t *testing.T) {
	originalArgs := os.Args
	originalFlags := pflag.CommandLine
	t.Cleanup(func() {
		os.Args = originalArgs
		pflag.CommandLine = originalFlags
	})

	t.Run("parses os.Args", func(t *testing.T) {
		pflag.CommandLine = pflag.NewFlagSet("mcp-table-report", pflag.ContinueOnError)
		os.Args = []string{"mcp-table-report", "--dir=" + t.TempDir(), "--loglevel=warn"}

		cfg, err := LoadFromFlags()
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("version flag", func(t *testing.T) {
		pflag.CommandLine = pflag.NewFlagSet("mcp-table-report", pflag.ContinueOnError)
		os.Args = []string{"mcp-table-report", "--version"}

		_, err := LoadFromFlags()
		assert.ErrorIs(t, err, ErrVersionRequested)
	})
}
