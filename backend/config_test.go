package backend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"DATABASE_URL",
	"DATA_SOURCE",
	"DATABASE_SSL",
	"DATABASE_MAX_CONNS",
	"FRONTEND_ORIGIN_URL",
	"PORT",
	"BUILD_DIR",
}

// clearConfigEnv blanks every recognised variable for the test's duration.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "*", cfg.AllowedOrigin)
	assert.Equal(t, DataSourceStatic, cfg.DataSource)
	assert.True(t, cfg.DatabaseSSL)
	assert.Equal(t, int32(10), cfg.DatabaseMaxConns)
	assert.Equal(t, "build/web", cfg.BuildDir)
	assert.Equal(t, ":3000", cfg.Addr())
}

func TestLoadConfig_Env(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://laundry@db:5432/laundry")
	t.Setenv("FRONTEND_ORIGIN_URL", "https://kays.example")
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_SSL", "false")
	t.Setenv("DATABASE_MAX_CONNS", "5")

	cfg, err := LoadConfig(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, DataSourcePostgres, cfg.DataSource)
	assert.Equal(t, "postgres://laundry@db:5432/laundry", cfg.DatabaseURL)
	assert.Equal(t, "https://kays.example", cfg.AllowedOrigin)
	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.DatabaseSSL)
	assert.Equal(t, int32(5), cfg.DatabaseMaxConns)
}

func TestLoadConfig_StaticWithURL(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://laundry@db:5432/laundry")
	t.Setenv("DATA_SOURCE", "static")

	cfg, err := LoadConfig(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, DataSourceStatic, cfg.DataSource)
}

func TestLoadConfig_Precedence(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = 4000
allowed_origin = "https://file.example"
build_dir = "/srv/file"
database_ssl = false
`), 0o600))

	t.Setenv("FRONTEND_ORIGIN_URL", "https://env.example")

	cfg, err := LoadConfig(Overrides{ConfigFile: path, Port: 5000})
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "https://env.example", cfg.AllowedOrigin)
	assert.Equal(t, "/srv/file", cfg.BuildDir)
	assert.False(t, cfg.DatabaseSSL)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		o       Overrides
		wantErr string
	}{
		{
			name:    "non-numeric port",
			env:     map[string]string{"PORT": "http"},
			wantErr: "PORT",
		},
		{
			name:    "port out of range",
			o:       Overrides{Port: 70000},
			wantErr: "out of range",
		},
		{
			name:    "unknown data source",
			o:       Overrides{DataSource: "mysql"},
			wantErr: "unknown data source",
		},
		{
			name:    "postgres without url",
			o:       Overrides{DataSource: "postgres"},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "bad ssl flag",
			env:     map[string]string{"DATABASE_SSL": "maybe"},
			wantErr: "DATABASE_SSL",
		},
		{
			name:    "missing config file",
			o:       Overrides{ConfigFile: "/nonexistent/config.toml"},
			wantErr: "read /nonexistent/config.toml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig(tt.o)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("FRONTEND_ORIGIN_URL", "https://already.set")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9090\nFRONTEND_ORIGIN_URL=https://dotenv.example\n"), 0o600))

	// godotenv sets PORT in the process environment; restore it afterwards.
	t.Setenv("PORT", "")
	require.NoError(t, os.Unsetenv("PORT"))

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "9090", os.Getenv("PORT"))
	assert.Equal(t, "https://already.set", os.Getenv("FRONTEND_ORIGIN_URL"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
