package sqlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	c := LoadConfig()

	assert.Equal(t, "postgres", c.Driver)
	assert.Equal(t, "localhost", c.Host)
	assert.Equal(t, "5432", c.Port)
	assert.Equal(t, "disable", c.SSLMode)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6432")
	t.Setenv("DB_PASSWORD", "secret")

	c := LoadConfig()

	assert.Equal(t, "db.internal", c.Host)
	assert.Equal(t, "6432", c.Port)
	assert.Equal(t, "secret", c.Password)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(f, []byte("DB_NAME=billing\n"), 0o600))

	c := LoadConfig(f)

	assert.Equal(t, "billing", c.Database)
}

func TestConfig_DSN(t *testing.T) {
	c := &Config{
		Host:     "localhost",
		Port:     "5432",
		Database: "postgres",
		User:     "admin",
		Password: "admin",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 dbname=postgres user=admin password=admin sslmode='disable'",
		c.DSN())

	c.Password = ""
	assert.Equal(t,
		"host=localhost port=5432 dbname=postgres user=admin sslmode='disable'",
		c.DSN())
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t,
		"host=localhost password=****** sslmode='disable'",
		MaskDSN("host=localhost password=secret sslmode='disable'"))

	assert.Equal(t,
		"host=localhost password=******",
		MaskDSN("host=localhost password=secret"))

	assert.Equal(t,
		"host=localhost",
		MaskDSN("host=localhost"))
}
