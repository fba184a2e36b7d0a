package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-table-report/internal/layout"
	"github.com/a3tai/mcp-table-report/internal/logging"
	"github.com/a3tai/mcp-table-report/internal/pdf"
	"github.com/a3tai/mcp-table-report/internal/tablereport"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// EnvPrefix is prepended to every environment variable, e.g. TABLE_REPORT_DIR
	EnvPrefix = "TABLE_REPORT"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// ErrVersionRequested is returned by LoadFromFlags when --version was passed
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the table report server and inspector
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// PDF configuration
	PDFDirectory string
	MaxFileSize  int64 // Maximum PDF file size in bytes

	// Analysis configuration
	LegendToleranceMM float64
	GridEpsilon       float64
	RunGapRatio       float64 // glyph gap, in font sizes, that still joins a text run

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	LogFormat  string // "console" or "json"
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:              ModeStdio,
		Host:              DefaultHost,
		Port:              DefaultPort,
		PDFDirectory:      currentDir,
		MaxFileSize:       DefaultMaxFileSize,
		LegendToleranceMM: tablereport.DefaultLegendToleranceMM,
		GridEpsilon:       tablereport.DefaultGridEpsilon,
		RunGapRatio:       pdf.DefaultRunGapRatio,
		Version:           "1.0.0",
		ServerName:        "mcp-table-report",
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
	}
}

// LoadFromFlags parses os.Args with the global flag set and returns a validated configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()
	DefineFlags(pflag.CommandLine, cfg)
	setupUsageMessage()

	if versionRequested(os.Args[1:]) {
		return nil, ErrVersionRequested
	}

	pflag.Parse()
	return FromFlagSet(pflag.CommandLine)
}

// DefineFlags registers all configuration flags on fs with defaults taken from cfg.
// The inspector CLI registers them as cobra persistent flags.
func DefineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP/SSE server")
	fs.String("host", cfg.Host, "Server host address (server mode only)")
	fs.Int("port", cfg.Port, "Server port (server mode only)")
	fs.String("dir", cfg.PDFDirectory, "Directory containing PDF reports")
	fs.String("loglevel", cfg.LogLevel, "Log level (trace, debug, info, warn, error)")
	fs.String("logformat", cfg.LogFormat, "Log format (console, json)")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	fs.Float64("legend-tolerance-mm", cfg.LegendToleranceMM, "Vertical distance in mm within which a legend value joins its label")
	fs.Float64("grid-epsilon", cfg.GridEpsilon, "Distance in points under which grid line coordinates are merged")
	fs.Float64("run-gap-ratio", cfg.RunGapRatio, "Glyph gap, as a multiple of the font size, that still joins a text run")
}

// FromFlagSet resolves flags, environment and defaults into a validated configuration.
// Flags explicitly set on the command line win over environment variables.
func FromFlagSet(fs *pflag.FlagSet) (*Config, error) {
	v := newViper()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg := DefaultConfig()
	populateConfigFromViper(v, cfg)

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP Table Report - recovers legend and table structure from PDF table reports\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                   # stdio mode, current directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/srv/reports                # stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --port=8081         # SSE server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --legend-tolerance-mm=1.5         # looser legend pairing\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		for _, name := range []string{"MODE", "HOST", "PORT", "DIR", "LOGLEVEL", "LOGFORMAT", "MAXFILESIZE",
			"LEGEND_TOLERANCE_MM", "GRID_EPSILON", "RUN_GAP_RATIO"} {
			fmt.Fprintf(os.Stderr, "  %s_%s\n", EnvPrefix, name)
		}
	}
}

func versionRequested(args []string) bool {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return true
		}
	}
	return false
}

func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.LogLevel = strings.ToLower(v.GetString("loglevel"))
	cfg.LogFormat = strings.ToLower(v.GetString("logformat"))
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.LegendToleranceMM = v.GetFloat64("legend-tolerance-mm")
	cfg.GridEpsilon = v.GetFloat64("grid-epsilon")
	cfg.RunGapRatio = v.GetFloat64("run-gap-ratio")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Create the directory on first use, like an output folder
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.LegendToleranceMM < 0 {
		return errors.New("legend tolerance cannot be negative")
	}
	if c.GridEpsilon < 0 {
		return errors.New("grid epsilon cannot be negative")
	}
	if c.RunGapRatio <= 0 {
		return errors.New("run gap ratio must be positive")
	}

	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: trace, debug, info, warn, error)", c.LogLevel)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be console or json)", c.LogFormat)
	}

	return nil
}

// AnalyzerOptions derives table analyzer options from the configuration
func (c *Config) AnalyzerOptions() tablereport.Options {
	opts := tablereport.DefaultOptions()
	opts.GridEpsilon = c.GridEpsilon
	opts.LegendTolerance = layout.MillimetersToPoints(c.LegendToleranceMM)
	return opts
}

// ExtractorOptions derives PDF element extraction options from the configuration
func (c *Config) ExtractorOptions() pdf.ExtractorOptions {
	return pdf.ExtractorOptions{RunGapRatio: c.RunGapRatio}
}

// ServiceConfig derives the PDF service configuration
func (c *Config) ServiceConfig() pdf.ServiceConfig {
	return pdf.ServiceConfig{
		MaxFileSize: c.MaxFileSize,
		Directory:   c.PDFDirectory,
		Analyzer:    c.AnalyzerOptions(),
		Extractor:   c.ExtractorOptions(),
	}
}

// LoggingConfig derives the logger configuration. Stdio mode keeps stdout free for the protocol.
func (c *Config) LoggingConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.LogLevel
	lc.Format = c.LogFormat
	return lc
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug or trace logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug" || c.LogLevel == "trace"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, "+
		"LegendToleranceMM: %g, GridEpsilon: %g, RunGapRatio: %g}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize,
		c.LegendToleranceMM, c.GridEpsilon, c.RunGapRatio)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
