package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "mongo", c.DB.Driver)
	assert.Equal(t, 720, c.JWT.TTLHours)
	assert.Equal(t, 30*24, int(c.JWT.TTL().Hours()))
	assert.Equal(t, 5000, c.App.HTTP.Port)
	assert.Equal(t, "heartbeat", c.Mongo.Database)
	assert.Equal(t, int64(1<<20), c.Limits.MaxBodyBytes)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  env: prod
  http:
    port: 8080
db:
  driver: sqlite
  dsn: "file::memory:"
jwt:
  secret: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("APP_JWT_SECRET", "from-env")
	t.Setenv("APP_APP_HTTP_PORT", "9090")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.True(t, c.IsProd())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(c *Config)
		ok   bool
	}{
		{"dev_without_secret", func(c *Config) {}, true},
		{"bad_driver", func(c *Config) { c.DB.Driver = "oracle" }, false},
		{"prod_without_secret", func(c *Config) { c.App.Env = "prod" }, false},
		{"zero_ttl", func(c *Config) { c.JWT.TTLHours = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Config{App: App{Env: "dev"}, DB: DB{Driver: "memory"}, JWT: JWT{TTLHours: 1}}
			tc.mut(c)
			err := c.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
