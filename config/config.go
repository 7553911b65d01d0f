package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/kroma-labs/grest/grest"
	"github.com/kroma-labs/grest/httpclient"
)

var (
	// ErrMissingBaseURL is returned by Validate when no base URL is configured.
	ErrMissingBaseURL = errors.New("config: base_url is required")

	// ErrInvalidBaseURL is returned by Validate when the base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("config: base_url must be an absolute http or https URL")
)

// Config describes a grest client.
//
// Example config.yml:
//
//	base_url: https://api.example.com/v1
//	authorization: Bearer xyz
//	headers:
//	  X-Tenant: acme
//	endpoints:
//	  - users
//	  - auth/login
//	service_name: billing
//	debug: false
//	generate_curl: false
type Config struct {
	BaseURL       string            `mapstructure:"base_url"`
	Authorization string            `mapstructure:"authorization"`
	Headers       map[string]string `mapstructure:"headers"`
	Endpoints     []string          `mapstructure:"endpoints"`
	ServiceName   string            `mapstructure:"service_name"`
	Debug         bool              `mapstructure:"debug"`
	GenerateCurl  bool              `mapstructure:"generate_curl"`
}

// Validate checks that the configuration can build a client.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}
	return nil
}

// NewClient validates c and builds a grest.Client from it. opts are applied
// after the configured ones and may override them.
func (c *Config) NewClient(opts ...grest.Option) (*grest.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	base := []grest.Option{
		grest.WithAuthorization(c.Authorization),
		grest.WithHeaders(c.Headers),
		grest.WithHTTPClientOptions(
			httpclient.WithServiceName(c.ServiceName),
			httpclient.WithDebug(c.Debug),
			httpclient.WithGenerateCurl(c.GenerateCurl),
		),
	}

	client := grest.New(c.BaseURL, append(base, opts...)...)
	if err := client.Register(c.Endpoints...); err != nil {
		return nil, fmt.Errorf("config: register endpoints: %w", err)
	}
	return client, nil
}
