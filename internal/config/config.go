package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-invoice-contract/internal/layout"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultWordGap     = 3.0
	DefaultCacheSize   = 256

	// DateLayout is the format of the contractdate option.
	DateLayout = "2006-01-02"

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "MCP_INVOICE"
)

// Config holds all configuration for the invoice MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// InvoiceDirectory is the only directory tools may read and write
	InvoiceDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
	Workers     int
	// CacheSize is the number of extracted invoices kept in memory; 0 disables the cache
	CacheSize int

	// ContractDate overrides the date printed on contracts, as yyyy-mm-dd.
	// Empty means today.
	ContractDate string

	// WordGap is the widest gap in points between glyphs of one word
	WordGap float64

	// Layout holds the table reconstruction heuristics
	Layout layout.Config
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:             ModeStdio, // Default to stdio mode for MCP compatibility
		Host:             DefaultHost,
		Port:             DefaultPort,
		InvoiceDirectory: currentDir,
		Version:          "1.0.0",
		ServerName:       "mcp-invoice-contract",
		LogLevel:         DefaultLogLevel,
		MaxFileSize:      DefaultMaxFileSize,
		Workers:          runtime.NumCPU(),
		CacheSize:        DefaultCacheSize,
		WordGap:          DefaultWordGap,
		Layout:           layout.DefaultConfig(),
	}
}

// floatOption is a layout heuristic exposed as a flag
type floatOption struct {
	key   string
	usage string
	field func(*Config) *float64
}

var layoutOptions = []floatOption{
	{"row-tolerance", "Max y distance of a token from its row's first token",
		func(c *Config) *float64 { return &c.Layout.RowTolerance }},
	{"table-row-tolerance", "Row tolerance used inside the goods table",
		func(c *Config) *float64 { return &c.Layout.TableRowTolerance }},
	{"continuation-window", "Max y distance of a wrapped line below its item",
		func(c *Config) *float64 { return &c.Layout.ContinuationWindow }},
	{"name-region-max-x", "Right edge of the item name region",
		func(c *Config) *float64 { return &c.Layout.NameRegionMaxX }},
	{"spec-region-min-x", "Left edge of the specification region",
		func(c *Config) *float64 { return &c.Layout.SpecRegionMinX }},
	{"spec-region-max-x", "Right edge of the specification region",
		func(c *Config) *float64 { return &c.Layout.SpecRegionMaxX }},
	{"voltage-max-distance", "Max y distance of a voltage rating below its item",
		func(c *Config) *float64 { return &c.Layout.VoltageMaxDistance }},
	{"column-margin", "Distance the outer goods table columns extend beyond their labels",
		func(c *Config) *float64 { return &c.Layout.ColumnMargin }},
	{"fallback-name-max-x", "Right edge of item names when no table header is found",
		func(c *Config) *float64 { return &c.Layout.FallbackNameMaxX }},
	{"fallback-row-window", "Row window used when no table header is found",
		func(c *Config) *float64 { return &c.Layout.FallbackRowWindow }},
	{"word-gap", "Widest gap in points between glyphs of one word",
		func(c *Config) *float64 { return &c.WordGap }},
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.InvoiceDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.InvoiceDirectory); err == nil {
			cfg.InvoiceDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.InvoiceDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("cachesize", cfg.CacheSize)
	viper.SetDefault("contractdate", cfg.ContractDate)
	for _, opt := range layoutOptions {
		viper.SetDefault(opt.key, *opt.field(cfg))
	}
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.InvoiceDirectory, "Directory containing invoice PDFs")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Int("workers", cfg.Workers, "Number of invoices extracted in parallel")
	pflag.Int("cachesize", cfg.CacheSize, "Number of extracted invoices kept in memory (0 disables)")
	pflag.String("contractdate", cfg.ContractDate, "Date printed on contracts (yyyy-mm-dd, default today)")
	for _, opt := range layoutOptions {
		pflag.Float64(opt.key, *opt.field(cfg), opt.usage)
	}
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, key := range []string{"mode", "host", "port", "dir", "loglevel", "maxfilesize", "workers", "cachesize", "contractdate"} {
		_ = viper.BindPFlag(key, pflag.Lookup(key))
	}
	for _, opt := range layoutOptions {
		_ = viper.BindPFlag(opt.key, pflag.Lookup(opt.key))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP Invoice Contract - A Model Context Protocol server that extracts VAT invoices "+
			"and builds contract data\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/data/invoices                     "+
			"# stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/data/invoices       # server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --contractdate=2024-03-05 --workers=8    # fixed contract date\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MCP_INVOICE_MODE          Server mode\n")
		fmt.Fprintf(os.Stderr, "  MCP_INVOICE_HOST          Server host\n")
		fmt.Fprintf(os.Stderr, "  MCP_INVOICE_PORT          Server port\n")
		fmt.Fprintf(os.Stderr, "  MCP_INVOICE_DIR           Invoice directory\n")
		fmt.Fprintf(os.Stderr, "  MCP_INVOICE_LOGLEVEL      Log level\n")
		fmt.Fprintf(os.Stderr, "  MCP_INVOICE_MAXFILESIZE   Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  MCP_INVOICE_WORKERS       Parallel extractions\n")
		fmt.Fprintf(os.Stderr, "  MCP_INVOICE_CACHESIZE     Cached invoices\n")
		fmt.Fprintf(os.Stderr, "  MCP_INVOICE_CONTRACTDATE  Contract date\n")
		fmt.Fprintf(os.Stderr, "  MCP_INVOICE_ROW_TOLERANCE and the other layout options, dashes as underscores\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.InvoiceDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.Workers = viper.GetInt("workers")
	cfg.CacheSize = viper.GetInt("cachesize")
	cfg.ContractDate = viper.GetString("contractdate")
	for _, opt := range layoutOptions {
		*opt.field(cfg) = viper.GetFloat64(opt.key)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.InvoiceDirectory == "" {
		return errors.New("invoice directory cannot be empty")
	}

	// Check if the directory exists, create if it doesn't
	if _, err := os.Stat(c.InvoiceDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.InvoiceDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create invoice directory %s: %w", c.InvoiceDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access invoice directory %s: %w", c.InvoiceDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.CacheSize < 0 {
		return errors.New("cache size cannot be negative")
	}
	if c.WordGap <= 0 {
		return errors.New("word gap must be positive")
	}
	if _, err := c.ContractTime(); err != nil {
		return err
	}
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("invalid layout heuristics: %w", err)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// ContractTime parses ContractDate. An empty date yields the zero time.
func (c *Config) ContractTime() (time.Time, error) {
	if c.ContractDate == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, c.ContractDate, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid contract date %q (want yyyy-mm-dd): %w", c.ContractDate, err)
	}
	return t, nil
}

// LayoutConfig returns the layout heuristics with Debug following the log level
func (c *Config) LayoutConfig() layout.Config {
	lc := c.Layout
	lc.Debug = c.IsDebug()
	return lc
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, InvoiceDirectory: %s, LogLevel: %s, "+
		"MaxFileSize: %d, Workers: %d, CacheSize: %d, ContractDate: %s}",
		c.Mode, c.Host, c.Port, c.InvoiceDirectory, c.LogLevel, c.MaxFileSize, c.Workers, c.CacheSize, c.ContractDate)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
