package sqlog

import (
	"bytes"
	"os"

	"github.com/joho/godotenv"
)

// Config holds database connection settings.
type Config struct {
	Driver   string
	Host     string
	Port     string
	Database string
	User     string
	Password string
	SSLMode  string
}

// LoadConfig reads connection settings from the environment, optionally
// loading env files first. A missing file is not an error, variables already
// present in the environment win over file values.
func LoadConfig(envFiles ...string) *Config {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	return &Config{
		Driver:   getenv("DB_DRIVER", "postgres"),
		Host:     getenv("DB_HOST", "localhost"),
		Port:     getenv("DB_PORT", "5432"),
		Database: getenv("DB_NAME", "postgres"),
		User:     getenv("DB_USER", "postgres"),
		Password: os.Getenv("DB_PASSWORD"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// DSN builds connection string in the key/value form.
func (c *Config) DSN() string {
	s := "host=" + c.Host +
		" port=" + c.Port +
		" dbname=" + c.Database +
		" user=" + c.User
	if c.Password != "" {
		s += " password=" + c.Password
	}
	s += " sslmode='" + c.SSLMode + "'"
	return s
}

// Open establishes connection using the config values.
func (c *Config) Open(opts ...Option) (*Session, error) {
	return Open(c.Driver, c.DSN(), opts...)
}

// MaskDSN replaces password=12345 by password=***** for log output.
func MaskDSN(src string) string {

	res := []byte(src)

	from := bytes.Index(res, []byte("password"))
	if from < 0 {
		return src
	}

	from += bytes.IndexByte(res[from:], '=') + 1
	for _, c := range src[from:] {
		if c == ' ' {
			from++
		}
		break
	}

	to := bytes.IndexByte(res[from:], ' ')
	if to < 0 {
		to = len(src)
	} else {
		to += from
	}

	for i := from; i < to; i++ {
		res[i] = '*'
	}
	return string(res)
}
