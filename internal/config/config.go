package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys. Each key is also bound to the upper-cased environment
// variable of the same name.
const (
	KeyPort                  = "port"
	KeyDeployed              = "deployed"
	KeyLocalRedirectURL      = "local_redirect_url"
	KeyDeployedRedirectURL   = "deployed_redirect_url"
	KeyGoogleCredentials     = "google_credentials"
	KeyGoogleCredentialsFile = "google_credentials_file"
	KeyTokenFile             = "token_file"
	KeySessionTimeout        = "session_timeout"
	KeyLogLevel              = "log_level"
	KeyLogFormat             = "log_format"
	KeyMetricsEnabled        = "metrics_enabled"
	KeyMetricsAddr           = "metrics_addr"
	KeyEphemeral             = "ephemeral"

	KeyInstrumentationEnabled = "instrumentation_enabled"
	KeyMetricsExporter        = "metrics_exporter"
	KeyTracingExporter        = "tracing_exporter"
	KeyServiceName            = "otel_service_name"
	KeyServiceInstanceID      = "otel_service_instance_id"
	KeyOTLPEndpoint           = "otel_exporter_otlp_endpoint"
	KeyOTLPInsecure           = "otel_exporter_otlp_insecure"
	KeyTraceSamplingRate      = "otel_traces_sampler_arg"
)

var envKeys = []string{
	KeyPort, KeyDeployed, KeyLocalRedirectURL, KeyDeployedRedirectURL,
	KeyGoogleCredentials, KeyGoogleCredentialsFile, KeyTokenFile,
	KeySessionTimeout, KeyLogLevel, KeyLogFormat, KeyMetricsEnabled,
	KeyMetricsAddr, KeyEphemeral, KeyInstrumentationEnabled, KeyMetricsExporter,
	KeyTracingExporter, KeyServiceName, KeyServiceInstanceID, KeyOTLPEndpoint,
	KeyOTLPInsecure, KeyTraceSamplingRate,
}

const (
	// DefaultPort is the listen port used when PORT is unset.
	DefaultPort = 5000

	// DefaultLocalRedirectURL is the OAuth redirect URI for local runs.
	DefaultLocalRedirectURL = "http://localhost:5000/oauth2callback"

	// DefaultTokenFile is the relative path of the persisted credential.
	DefaultTokenFile = "credentials/token.json"

	// DefaultCredentialsFile is the OAuth client configuration downloaded
	// from the Google Cloud console.
	DefaultCredentialsFile = "credentials.json"

	DefaultServiceName       = "tablero"
	DefaultTraceSamplingRate = 0.1
)

// ErrNoClientConfig is returned when neither inline nor file based OAuth
// client configuration is available.
var ErrNoClientConfig = errors.New("no OAuth client configuration: set GOOGLE_CREDENTIALS or provide a credentials file")

// Config holds the process-wide settings resolved at startup.
type Config struct {
	Port                  int           `mapstructure:"port"`
	Deployed              bool          `mapstructure:"deployed"`
	LocalRedirectURL      string        `mapstructure:"local_redirect_url"`
	DeployedRedirectURL   string        `mapstructure:"deployed_redirect_url"`
	GoogleCredentials     string        `mapstructure:"google_credentials"`
	GoogleCredentialsFile string        `mapstructure:"google_credentials_file"`
	TokenFile             string        `mapstructure:"token_file"`
	SessionTimeout        time.Duration `mapstructure:"session_timeout"`
	LogLevel              string        `mapstructure:"log_level"`
	LogFormat             string        `mapstructure:"log_format"`
	MetricsEnabled        bool          `mapstructure:"metrics_enabled"`
	MetricsAddr           string        `mapstructure:"metrics_addr"`

	// Ephemeral keeps the credential in memory only; nothing is written to
	// TokenFile.
	Ephemeral bool `mapstructure:"ephemeral"`

	Telemetry Telemetry `mapstructure:",squash"`

	// ConfigFile is the config file that was read, empty when none was found.
	ConfigFile string `mapstructure:"-"`
}

// Telemetry holds the OpenTelemetry exporter settings.
type Telemetry struct {
	Enabled           bool    `mapstructure:"instrumentation_enabled"`
	MetricsExporter   string  `mapstructure:"metrics_exporter"`
	TracingExporter   string  `mapstructure:"tracing_exporter"`
	ServiceName       string  `mapstructure:"otel_service_name"`
	ServiceInstanceID string  `mapstructure:"otel_service_instance_id"`
	OTLPEndpoint      string  `mapstructure:"otel_exporter_otlp_endpoint"`
	OTLPInsecure      bool    `mapstructure:"otel_exporter_otlp_insecure"`
	TraceSamplingRate float64 `mapstructure:"otel_traces_sampler_arg"`
}

// NewViper returns a viper instance with defaults, environment bindings and
// config file search paths registered. Callers may bind flags on it before
// calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	for _, key := range envKeys {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	v.SetConfigName("tablero")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/tablero")

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyDeployed, false)
	v.SetDefault(KeyLocalRedirectURL, DefaultLocalRedirectURL)
	v.SetDefault(KeyDeployedRedirectURL, "")
	v.SetDefault(KeyGoogleCredentials, "")
	v.SetDefault(KeyGoogleCredentialsFile, DefaultCredentialsFile)
	v.SetDefault(KeyTokenFile, DefaultTokenFile)
	v.SetDefault(KeySessionTimeout, 24*time.Hour)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyMetricsEnabled, true)
	v.SetDefault(KeyMetricsAddr, ":9090")
	v.SetDefault(KeyEphemeral, false)

	v.SetDefault(KeyInstrumentationEnabled, true)
	v.SetDefault(KeyMetricsExporter, "prometheus")
	v.SetDefault(KeyTracingExporter, "none")
	v.SetDefault(KeyServiceName, DefaultServiceName)
	v.SetDefault(KeyServiceInstanceID, "")
	v.SetDefault(KeyOTLPEndpoint, "")
	v.SetDefault(KeyOTLPInsecure, false)
	v.SetDefault(KeyTraceSamplingRate, DefaultTraceSamplingRate)
}

// Load reads the optional config file and decodes every source into a
// validated Config.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values that would make the server
// unusable.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	if c.Deployed && c.DeployedRedirectURL == "" {
		return fmt.Errorf("DEPLOYED_REDIRECT_URL is required when DEPLOYED is set")
	}
	if !c.Deployed && c.LocalRedirectURL == "" {
		return fmt.Errorf("LOCAL_REDIRECT_URL must not be empty")
	}
	if c.TokenFile == "" {
		return fmt.Errorf("TOKEN_FILE must not be empty")
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("invalid session timeout %s", c.SessionTimeout)
	}
	if c.Telemetry.TraceSamplingRate < 0 || c.Telemetry.TraceSamplingRate > 1 {
		return fmt.Errorf("OTEL_TRACES_SAMPLER_ARG must be between 0 and 1, got %g", c.Telemetry.TraceSamplingRate)
	}
	return nil
}

// Addr returns the listen address for the dashboard server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// RedirectURL returns the OAuth redirect URI for the current environment.
func (c *Config) RedirectURL() string {
	if c.Deployed {
		return c.DeployedRedirectURL
	}
	return c.LocalRedirectURL
}

// SecureCookies reports whether session cookies must carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return c.Deployed
}

// ClientConfigJSON returns the OAuth client configuration, preferring the
// inline GOOGLE_CREDENTIALS value over the credentials file.
func (c *Config) ClientConfigJSON() ([]byte, error) {
	if strings.TrimSpace(c.GoogleCredentials) != "" {
		return []byte(c.GoogleCredentials), nil
	}
	if c.GoogleCredentialsFile == "" {
		return nil, ErrNoClientConfig
	}

	data, err := os.ReadFile(c.GoogleCredentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w (looked for %s)", ErrNoClientConfig, c.GoogleCredentialsFile)
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return data, nil
}
