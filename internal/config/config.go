package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Stockdesk"`
	}

	API struct {
		BaseURL  string        `envconfig:"API_BASE_URL" default:"http://localhost:8080"`
		Username string        `envconfig:"API_USERNAME"`
		Password string        `envconfig:"API_PASSWORD"`
		Timeout  time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
	}

	Drafts struct {
		// DataDir holds the local SQLite database. Defaults to the
		// user config dir when empty.
		DataDir        string        `envconfig:"DATA_DIR"`
		AutosaveWindow time.Duration `envconfig:"AUTOSAVE_WINDOW" default:"3s"`
		MaxAgeDays     int           `envconfig:"DRAFT_MAX_AGE_DAYS" default:"30"`
	}

	Mock struct {
		Port   int    `envconfig:"MOCK_PORT" default:"8080"`
		Secret string `envconfig:"MOCK_JWT_SECRET" default:"stockdesk-dev"`
	}
}

// DatabasePath returns the path of the local draft database, creating its
// directory when needed.
func (c *Config) DatabasePath() (string, error) {
	dir := c.Drafts.DataDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("resolving config dir: %w", err)
		}

		dir = filepath.Join(base, "stockdesk")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}

	return filepath.Join(dir, "stockdesk.db"), nil
}

// DraftMaxAge converts the configured retention in days to a duration.
func (c *Config) DraftMaxAge() time.Duration {
	return time.Duration(c.Drafts.MaxAgeDays) * 24 * time.Hour
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
