package gateway

import (
	"errors"
	"net"
	"time"

	"github.com/flemzord/toolclaw/internal/security"
)

// Config holds HTTP gateway configuration.
type Config struct {
	Bind            string                      `yaml:"bind"`
	Auth            AuthConfig                  `yaml:"auth"`
	Webhooks        map[string]WebhookSourceCfg `yaml:"webhooks"`
	MaxBodySize     int                         `yaml:"max_body_size"`
	ReadTimeout     time.Duration               `yaml:"read_timeout"`
	WriteTimeout    time.Duration               `yaml:"write_timeout"`
	ShutdownTimeout time.Duration               `yaml:"shutdown_timeout"`
}

// defaults fills zero values with sensible defaults.
func (c *Config) defaults() {
	if c.Bind == "" {
		c.Bind = "127.0.0.1:8080"
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = security.DefaultMaxPayloadSize
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	// Runs may take up to the agent timeout, so the write side is generous.
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 6 * time.Minute
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}

func (c *Config) validate() error {
	var errs []error
	if _, err := net.ResolveTCPAddr("tcp", c.Bind); err != nil {
		errs = append(errs, errors.New("gateway: invalid bind address: "+c.Bind))
	}
	if (c.Auth.BasicUser == "") != (c.Auth.BasicPass == "") {
		errs = append(errs, errors.New("gateway: basic_user and basic_pass must be set together"))
	}
	for source, wh := range c.Webhooks {
		if wh.Secret == "" {
			errs = append(errs, errors.New("gateway: webhook source "+source+" has no secret"))
		}
	}
	return errors.Join(errs...)
}

// AuthConfig configures authentication for the API endpoints.
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token"`
	BasicUser   string `yaml:"basic_user"`
	BasicPass   string `yaml:"basic_pass"`
}

// IsConfigured returns true if any auth method is configured.
func (a AuthConfig) IsConfigured() bool {
	return a.BearerToken != "" || (a.BasicUser != "" && a.BasicPass != "")
}

// WebhookSourceCfg holds per-source webhook configuration. Every source
// must carry an HMAC secret.
type WebhookSourceCfg struct {
	Secret string `yaml:"secret"`
}
