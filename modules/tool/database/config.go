package database

import (
	"fmt"
	"time"
)

// Config holds the database tool module configuration.
type Config struct {
	Enabled *bool `yaml:"enabled"`

	// MaxRows caps the rows fetched per query. Defaults to 100.
	MaxRows int `yaml:"max_rows"`

	// QueryTimeout bounds connect, ping and each query. Defaults to 30s.
	QueryTimeout string `yaml:"query_timeout"`

	// SQLiteRoots are extra directories sqlite files may live in, in
	// addition to the workspace, the data directory and the temp directory.
	SQLiteRoots []string `yaml:"sqlite_roots"`
}

func (c *Config) defaults() {
	if c.Enabled == nil {
		t := true
		c.Enabled = &t
	}
	if c.MaxRows == 0 {
		c.MaxRows = 100
	}
	if c.QueryTimeout == "" {
		c.QueryTimeout = "30s"
	}
}

func (c *Config) validate() error {
	if c.MaxRows < 0 {
		return fmt.Errorf("tool.database: max_rows must be positive, got %d", c.MaxRows)
	}
	if d, err := time.ParseDuration(c.QueryTimeout); err != nil || d <= 0 {
		return fmt.Errorf("tool.database: invalid query_timeout %q", c.QueryTimeout)
	}
	return nil
}

func (c *Config) parsedQueryTimeout() time.Duration {
	d, err := time.ParseDuration(c.QueryTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}
