package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.False(t, cfg.Deployed)
	assert.Equal(t, DefaultLocalRedirectURL, cfg.RedirectURL())
	assert.Equal(t, DefaultTokenFile, cfg.TokenFile)
	assert.Equal(t, 24*time.Hour, cfg.SessionTimeout)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.False(t, cfg.SecureCookies())
	assert.False(t, cfg.Ephemeral)
	assert.Empty(t, cfg.ConfigFile)

	assert.Equal(t, Telemetry{
		Enabled:           true,
		MetricsExporter:   "prometheus",
		TracingExporter:   "none",
		ServiceName:       DefaultServiceName,
		TraceSamplingRate: DefaultTraceSamplingRate,
	}, cfg.Telemetry)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8080")
	t.Setenv("DEPLOYED", "true")
	t.Setenv("DEPLOYED_REDIRECT_URL", "https://tablero.example.com/oauth2callback")
	t.Setenv("SESSION_TIMEOUT", "2h")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Deployed)
	assert.Equal(t, "https://tablero.example.com/oauth2callback", cfg.RedirectURL())
	assert.Equal(t, 2*time.Hour, cfg.SessionTimeout)
	assert.True(t, cfg.SecureCookies())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tablero.yaml"), []byte("port: 6000\ntoken_file: /tmp/tok.json\n"), 0o600))

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, "/tmp/tok.json", cfg.TokenFile)
	assert.Equal(t, "tablero.yaml", filepath.Base(cfg.ConfigFile))
}

func TestLoad_TelemetryFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("METRICS_EXPORTER", "otlp")
	t.Setenv("TRACING_EXPORTER", "otlp")
	t.Setenv("OTEL_SERVICE_NAME", "tablero-staging")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")
	t.Setenv("EPHEMERAL", "true")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.True(t, cfg.Ephemeral)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "otlp", cfg.Telemetry.MetricsExporter)
	assert.Equal(t, "otlp", cfg.Telemetry.TracingExporter)
	assert.Equal(t, "tablero-staging", cfg.Telemetry.ServiceName)
	assert.Equal(t, "collector:4318", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.OTLPInsecure)
	assert.InDelta(t, 0.5, cfg.Telemetry.TraceSamplingRate, 1e-9)
}

func TestLoad_TelemetryFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := "tracing_exporter: stdout\notel_traces_sampler_arg: 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tablero.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "stdout", cfg.Telemetry.TracingExporter)
	assert.Equal(t, "prometheus", cfg.Telemetry.MetricsExporter)
	assert.InDelta(t, 1.0, cfg.Telemetry.TraceSamplingRate, 1e-9)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:             5000,
			LocalRedirectURL: DefaultLocalRedirectURL,
			TokenFile:        DefaultTokenFile,
			SessionTimeout:   time.Hour,
		}
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		errContains string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "port too low", mutate: func(c *Config) { c.Port = 0 }, errContains: "invalid port"},
		{name: "port too high", mutate: func(c *Config) { c.Port = 70000 }, errContains: "invalid port"},
		{name: "deployed without redirect", mutate: func(c *Config) { c.Deployed = true }, errContains: "DEPLOYED_REDIRECT_URL"},
		{name: "empty token file", mutate: func(c *Config) { c.TokenFile = "" }, errContains: "TOKEN_FILE"},
		{name: "zero session timeout", mutate: func(c *Config) { c.SessionTimeout = 0 }, errContains: "session timeout"},
		{name: "sampling above one", mutate: func(c *Config) { c.Telemetry.TraceSamplingRate = 2 }, errContains: "OTEL_TRACES_SAMPLER_ARG"},
		{name: "negative sampling", mutate: func(c *Config) { c.Telemetry.TraceSamplingRate = -0.5 }, errContains: "OTEL_TRACES_SAMPLER_ARG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestClientConfigJSON(t *testing.T) {
	t.Run("inline wins over file", func(t *testing.T) {
		cfg := Config{GoogleCredentials: `{"web":{}}`, GoogleCredentialsFile: "does-not-exist.json"}
		data, err := cfg.ClientConfigJSON()
		require.NoError(t, err)
		assert.Equal(t, `{"web":{}}`, string(data))
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"installed":{}}`), 0o600))

		cfg := Config{GoogleCredentialsFile: path}
		data, err := cfg.ClientConfigJSON()
		require.NoError(t, err)
		assert.Equal(t, `{"installed":{}}`, string(data))
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := Config{GoogleCredentialsFile: filepath.Join(t.TempDir(), "missing.json")}
		_, err := cfg.ClientConfigJSON()
		assert.ErrorIs(t, err, ErrNoClientConfig)
	})

	t.Run("nothing configured", func(t *testing.T) {
		cfg := Config{}
		_, err := cfg.ClientConfigJSON()
		assert.ErrorIs(t, err, ErrNoClientConfig)
	})
}
