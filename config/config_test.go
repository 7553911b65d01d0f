package config

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroma-labs/grest/grest"
	"github.com/kroma-labs/grest/httpclient"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleYAML = `
base_url: https://api.example.com/v1
authorization: Bearer from-file
headers:
  X-Tenant: acme
endpoints:
  - users
  - auth/login
service_name: billing
debug: true
`

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.yml", sampleYAML)

	cfg, err := Load(LoaderConfig{ConfigFile: path, EnvPrefix: "GRESTFILE"})
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1", cfg.BaseURL)
	assert.Equal(t, "Bearer from-file", cfg.Authorization)
	assert.Equal(t, map[string]string{"x-tenant": "acme"}, cfg.Headers)
	assert.Equal(t, []string{"users", "auth/login"}, cfg.Endpoints)
	assert.Equal(t, "billing", cfg.ServiceName)
	assert.True(t, cfg.Debug)
	assert.False(t, cfg.GenerateCurl)
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "config.json", `{"base_url":"http://localhost:8080","endpoints":["health"]}`)

	cfg, err := Load(LoaderConfig{ConfigFile: path, EnvPrefix: "GRESTJSON"})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, []string{"health"}, cfg.Endpoints)
	assert.Equal(t, "grest", cfg.ServiceName)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yml", sampleYAML)
	t.Setenv("GRESTENV_AUTHORIZATION", "Bearer from-env")
	t.Setenv("GRESTENV_ENDPOINTS", "orders,support-tickets")
	t.Setenv("GRESTENV_GENERATE_CURL", "true")

	cfg, err := Load(LoaderConfig{ConfigFile: path, EnvPrefix: "GRESTENV"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer from-env", cfg.Authorization)
	assert.Equal(t, []string{"orders", "support-tickets"}, cfg.Endpoints)
	assert.True(t, cfg.GenerateCurl)
	assert.Equal(t, "https://api.example.com/v1", cfg.BaseURL)
}

func TestLoad_EnvFile(t *testing.T) {
	envPath := writeFile(t, ".env", "GRESTDOT_BASE_URL=https://dotenv.example.com\nGRESTDOT_SERVICE_NAME=dotenv\n")
	t.Setenv("GRESTDOT_SERVICE_NAME", "process")
	t.Cleanup(func() { _ = os.Unsetenv("GRESTDOT_BASE_URL") })

	cfg, err := Load(LoaderConfig{EnvFile: envPath, EnvPrefix: "GRESTDOT"})
	require.NoError(t, err)

	assert.Equal(t, "https://dotenv.example.com", cfg.BaseURL)
	assert.Equal(t, "process", cfg.ServiceName, "existing variables win over the dotenv file")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		lc   LoaderConfig
	}{
		{
			name: "given a missing config file, then returns error",
			lc:   LoaderConfig{ConfigFile: filepath.Join(t.TempDir(), "missing.yml")},
		},
		{
			name: "given a missing env file, then returns error",
			lc:   LoaderConfig{EnvFile: filepath.Join(t.TempDir(), "missing.env")},
		},
		{
			name: "given a malformed config file, then returns error",
			lc:   LoaderConfig{ConfigFile: writeFile(t, "bad.yml", "base_url: [unclosed")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.lc)
			assert.Error(t, err)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		wantErr error
	}{
		{name: "given https URL, then valid", baseURL: "https://api.example.com"},
		{name: "given http URL with port, then valid", baseURL: "http://localhost:8080/v1"},
		{name: "given empty URL, then missing", baseURL: "", wantErr: ErrMissingBaseURL},
		{name: "given relative URL, then invalid", baseURL: "/api", wantErr: ErrInvalidBaseURL},
		{name: "given ftp URL, then invalid", baseURL: "ftp://files.example.com", wantErr: ErrInvalidBaseURL},
		{name: "given unparsable URL, then invalid", baseURL: "http://[::1", wantErr: ErrInvalidBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := (&Config{BaseURL: tt.baseURL}).Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfig_NewClient(t *testing.T) {
	t.Parallel()

	t.Run("given a valid config, then the client carries it", func(t *testing.T) {
		t.Parallel()

		mock := httpclient.NewMockTransport().StubResponse(http.StatusOK, `{}`)
		cfg := &Config{
			BaseURL:       "https://api.example.com/v1/",
			Authorization: "Bearer abc",
			Headers:       map[string]string{"x-tenant": "acme"},
			Endpoints:     []string{"users", "auth/login"},
			ServiceName:   "billing",
		}

		client, err := cfg.NewClient(
			grest.WithLogger(zerolog.Nop()),
			grest.WithHTTPClientOptions(httpclient.WithMockTransport(mock)),
		)
		require.NoError(t, err)

		assert.Equal(t, "https://api.example.com/v1/", client.BaseURL())
		assert.Equal(t, []string{"users", "auth/login"}, client.Endpoints())
		assert.Equal(t, map[string]string{"X-Tenant": "acme"}, client.Headers())

		ctx := context.Background()
		_, err = client.MustEndpoint("authLogin").Post(ctx, map[string]string{"u": "ada"}).Wait(ctx)
		require.NoError(t, err)

		req := mock.LastRequest()
		assert.Equal(t, "/v1/auth/login/", req.URL.Path)
		assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))
		assert.Equal(t, "acme", req.Header.Get("X-Tenant"))
	})

	t.Run("given an invalid config, then returns the validation error", func(t *testing.T) {
		t.Parallel()

		_, err := (&Config{}).NewClient()
		assert.ErrorIs(t, err, ErrMissingBaseURL)
	})

	t.Run("given conflicting endpoints, then returns the conflict", func(t *testing.T) {
		t.Parallel()

		cfg := &Config{
			BaseURL:   "https://api.example.com",
			Endpoints: []string{"support-tickets", "support/tickets"},
		}

		_, err := cfg.NewClient(grest.WithLogger(zerolog.Nop()))
		assert.ErrorIs(t, err, grest.ErrAccessorConflict)
	})
}
