package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/tablero/internal/config"
	"github.com/teemow/tablero/internal/google"
	"github.com/teemow/tablero/internal/instrumentation"
)

// isolate runs the test in an empty directory with no config file and no
// inherited settings.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, key := range []string{
		"PORT", "DEPLOYED", "GOOGLE_CREDENTIALS", "GOOGLE_CREDENTIALS_FILE", "TOKEN_FILE",
		"METRICS_ENABLED", "EPHEMERAL", "INSTRUMENTATION_ENABLED", "METRICS_EXPORTER",
		"TRACING_EXPORTER", "OTEL_SERVICE_NAME", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_TRACES_SAMPLER_ARG",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func TestServeFlags_OverrideDefaults(t *testing.T) {
	isolate(t)
	v := config.NewViper()
	root := newRootCmd(v)

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	require.NoError(t, serve.Flags().Set("port", "8081"))
	require.NoError(t, serve.Flags().Set("deployed", "true"))
	require.NoError(t, root.PersistentFlags().Set("token-file", "/tmp/tok.json"))
	v.Set(config.KeyDeployedRedirectURL, "https://tablero.example/oauth2callback")

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Port)
	assert.True(t, cfg.Deployed)
	assert.Equal(t, "/tmp/tok.json", cfg.TokenFile)
	assert.Equal(t, "https://tablero.example/oauth2callback", cfg.RedirectURL())
}

func TestServeFlags_EnvWithoutFlag(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "6000")

	v := config.NewViper()
	newRootCmd(v)

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Port)
}

func TestServeFlags_EphemeralSelectsMemoryStore(t *testing.T) {
	isolate(t)
	v := config.NewViper()
	root := newRootCmd(v)

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	require.NotNil(t, serve.Flags().Lookup("ephemeral"))

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.IsType(t, &google.FileStore{}, credentialStore(cfg))

	require.NoError(t, serve.Flags().Set("ephemeral", "true"))
	cfg, err = config.Load(v)
	require.NoError(t, err)
	assert.True(t, cfg.Ephemeral)

	store := credentialStore(cfg)
	require.IsType(t, &google.MemoryStore{}, store)
	require.NoError(t, store.Save(&google.Credential{AccessToken: "abc"}))
	_, err = os.Stat(cfg.TokenFile)
	assert.ErrorIs(t, err, os.ErrNotExist, "an ephemeral run never writes the token file")
}

func TestTelemetryConfig_FromFlagsAndEnv(t *testing.T) {
	isolate(t)
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	previous := version
	t.Cleanup(func() { SetVersion(previous) })
	SetVersion("2.0.0")

	v := config.NewViper()
	root := newRootCmd(v)
	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	require.NoError(t, serve.Flags().Set("tracing-exporter", "otlp"))
	require.NoError(t, serve.Flags().Set("metrics-exporter", "stdout"))

	cfg, err := config.Load(v)
	require.NoError(t, err)

	tc := telemetryConfig(cfg)
	assert.Equal(t, instrumentation.Config{
		ServiceName:       config.DefaultServiceName,
		ServiceVersion:    "2.0.0",
		Enabled:           true,
		MetricsExporter:   instrumentation.ExporterStdout,
		TracingExporter:   instrumentation.ExporterOTLP,
		OTLPEndpoint:      "collector:4318",
		TraceSamplingRate: 0.25,
	}, tc)
	assert.NoError(t, tc.Validate())
}

func TestBindFlags_UnknownFlag(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	err := bindFlags(config.NewViper(), fs, map[string]string{config.KeyPort: "port"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `flag "port" is not defined`)
}

func TestRunServe_RequiresClientConfig(t *testing.T) {
	isolate(t)
	t.Setenv("INSTRUMENTATION_ENABLED", "false")

	err := runServe(t.Context(), config.NewViper())
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrNoClientConfig)
}

func TestRunServe_InvalidConfig(t *testing.T) {
	isolate(t)
	t.Setenv("DEPLOYED", "true")

	err := runServe(t.Context(), config.NewViper())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEPLOYED_REDIRECT_URL")
}

func TestLogoutCmd_RemovesCredential(t *testing.T) {
	dir := isolate(t)
	tokenFile := filepath.Join(dir, "credentials", "token.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(tokenFile), 0o700))
	require.NoError(t, os.WriteFile(tokenFile, []byte(`{"token":"abc"}`), 0o600))

	root := newRootCmd(config.NewViper())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"logout"})
	require.NoError(t, root.Execute())

	_, err := os.Stat(tokenFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, out.String(), "Removed credential credentials/token.json")

	// A second logout has nothing to remove and still succeeds.
	root = newRootCmd(config.NewViper())
	root.SetOut(&out)
	root.SetArgs([]string{"logout"})
	assert.NoError(t, root.Execute())
}

func TestVersionCmd(t *testing.T) {
	previous := version
	t.Cleanup(func() { SetVersion(previous) })
	SetVersion("1.2.3")

	root := newRootCmd(config.NewViper())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "tablero version 1.2.3\n", out.String())
}
