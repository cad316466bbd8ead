package backend

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DataSource selects the services provider for the process.
type DataSource string

const (
	DataSourcePostgres DataSource = "postgres"
	DataSourceStatic   DataSource = "static"
)

const (
	defaultPort          = 3000
	defaultAllowedOrigin = "*"
	defaultBuildDir      = "build/web"
	defaultMaxConns      = 10
)

// Config is built once at startup by LoadConfig and never modified.
type Config struct {
	DatabaseURL      string
	DataSource       DataSource
	DatabaseSSL      bool
	DatabaseMaxConns int32
	AllowedOrigin    string
	Port             int
	BuildDir         string
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Overrides carries command-line values. Zero values are ignored.
type Overrides struct {
	ConfigFile string
	DataSource string
	BuildDir   string
	Port       int
}

// fileConfig mirrors config.toml. Pointers distinguish unset keys.
type fileConfig struct {
	DatabaseURL      *string `toml:"database_url"`
	DataSource       *string `toml:"data_source"`
	DatabaseSSL      *bool   `toml:"database_ssl"`
	DatabaseMaxConns *int32  `toml:"database_max_conns"`
	AllowedOrigin    *string `toml:"allowed_origin"`
	Port             *int    `toml:"port"`
	BuildDir         *string `toml:"build_dir"`
}

// LoadDotEnv loads variables from .env files without overriding ones already
// set. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig resolves the configuration from defaults, the optional TOML
// file, the environment and finally o.
func LoadConfig(o Overrides) (Config, error) {
	cfg := Config{
		DatabaseSSL:      true,
		DatabaseMaxConns: defaultMaxConns,
		AllowedOrigin:    defaultAllowedOrigin,
		Port:             defaultPort,
		BuildDir:         defaultBuildDir,
	}
	var source string

	if o.ConfigFile != "" {
		fc, err := readConfigFile(o.ConfigFile)
		if err != nil {
			return Config{}, err
		}
		fc.apply(&cfg, &source)
	}

	if err := applyEnv(&cfg, &source); err != nil {
		return Config{}, err
	}

	if o.DataSource != "" {
		source = o.DataSource
	}
	if o.BuildDir != "" {
		cfg.BuildDir = o.BuildDir
	}
	if o.Port != 0 {
		cfg.Port = o.Port
	}

	ds, err := resolveDataSource(source, cfg.DatabaseURL)
	if err != nil {
		return Config{}, err
	}
	cfg.DataSource = ds

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readConfigFile(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return fc, nil
}

func (fc fileConfig) apply(cfg *Config, source *string) {
	if fc.DatabaseURL != nil {
		cfg.DatabaseURL = *fc.DatabaseURL
	}
	if fc.DataSource != nil {
		*source = *fc.DataSource
	}
	if fc.DatabaseSSL != nil {
		cfg.DatabaseSSL = *fc.DatabaseSSL
	}
	if fc.DatabaseMaxConns != nil {
		cfg.DatabaseMaxConns = *fc.DatabaseMaxConns
	}
	if fc.AllowedOrigin != nil {
		cfg.AllowedOrigin = *fc.AllowedOrigin
	}
	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.BuildDir != nil {
		cfg.BuildDir = *fc.BuildDir
	}
}

func applyEnv(cfg *Config, source *string) error {
	if v := env("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := env("DATA_SOURCE"); v != "" {
		*source = v
	}
	if v := env("DATABASE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: DATABASE_SSL: %w", err)
		}
		cfg.DatabaseSSL = b
	}
	if v := env("DATABASE_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("config: DATABASE_MAX_CONNS: %w", err)
		}
		cfg.DatabaseMaxConns = int32(n)
	}
	if v := env("FRONTEND_ORIGIN_URL"); v != "" {
		cfg.AllowedOrigin = v
	}
	if v := env("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PORT: %w", err)
		}
		cfg.Port = n
	}
	if v := env("BUILD_DIR"); v != "" {
		cfg.BuildDir = v
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func resolveDataSource(source, dsn string) (DataSource, error) {
	switch DataSource(strings.ToLower(source)) {
	case "":
		if dsn != "" {
			return DataSourcePostgres, nil
		}
		return DataSourceStatic, nil
	case DataSourcePostgres:
		return DataSourcePostgres, nil
	case DataSourceStatic:
		return DataSourceStatic, nil
	default:
		return "", fmt.Errorf("config: unknown data source %q", source)
	}
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.DataSource == DataSourcePostgres && c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL is required for the postgres data source")
	}
	if c.DatabaseMaxConns < 1 {
		return fmt.Errorf("config: database max conns must be positive, got %d", c.DatabaseMaxConns)
	}
	if c.AllowedOrigin == "" {
		return errors.New("config: allowed origin must not be empty")
	}
	return nil
}
