package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teemow/tablero/internal/config"
	"github.com/teemow/tablero/internal/google"
	"github.com/teemow/tablero/internal/instrumentation"
	"github.com/teemow/tablero/internal/logging"
	"github.com/teemow/tablero/internal/server"
	"github.com/teemow/tablero/internal/view"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runServe(ctx, v)
		},
	}

	cmd.Flags().Int("port", config.DefaultPort, "Listen port. Env: PORT")
	cmd.Flags().Bool("deployed", false, "Use the deployed OAuth redirect URL and secure cookies. Env: DEPLOYED")
	cmd.Flags().String("credentials-file", config.DefaultCredentialsFile, "OAuth client configuration file, used when GOOGLE_CREDENTIALS is unset. Env: GOOGLE_CREDENTIALS_FILE")
	cmd.Flags().Bool("metrics-enabled", true, "Serve Prometheus metrics on a dedicated port. Env: METRICS_ENABLED")
	cmd.Flags().String("metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Env: METRICS_ADDR")
	cmd.Flags().String("metrics-exporter", instrumentation.ExporterPrometheus, "Metrics exporter: prometheus, otlp or stdout. Env: METRICS_EXPORTER")
	cmd.Flags().String("tracing-exporter", instrumentation.ExporterNone, "Tracing exporter: otlp, stdout or none. Env: TRACING_EXPORTER")
	cmd.Flags().Bool("ephemeral", false, "Keep the Google credential in memory only; sign-in is lost on restart. Env: EPHEMERAL")

	if err := bindFlags(v, cmd.Flags(), map[string]string{
		config.KeyPort:                  "port",
		config.KeyDeployed:              "deployed",
		config.KeyGoogleCredentialsFile: "credentials-file",
		config.KeyMetricsEnabled:        "metrics-enabled",
		config.KeyMetricsAddr:           "metrics-addr",
		config.KeyMetricsExporter:       "metrics-exporter",
		config.KeyTracingExporter:       "tracing-exporter",
		config.KeyEphemeral:             "ephemeral",
	}); err != nil {
		panic(err)
	}

	return cmd
}

func runServe(ctx context.Context, v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.SetupDefault(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	if cfg.ConfigFile != "" {
		logger.Info("using config file", slog.String("path", cfg.ConfigFile))
	}

	clientJSON, err := cfg.ClientConfigJSON()
	if err != nil {
		return err
	}
	oauthConfig, err := google.LoadClientConfig(clientJSON, cfg.RedirectURL())
	if err != nil {
		return err
	}

	provider, err := instrumentation.NewProvider(ctx, telemetryConfig(cfg), logger)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	var metricsServer *server.MetricsServer
	if cfg.MetricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			Logger:                  logger,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("metrics server stopped", logging.Err(err))
			}
		}()
	}

	store := credentialStore(cfg)
	flow := google.NewFlow(oauthConfig, store, google.WithLogger(logger))

	renderer, err := view.NewTemplateRenderer()
	if err != nil {
		return err
	}

	sessions := server.NewSessionManager(cfg.SessionTimeout, logger, provider.Metrics())
	defer sessions.Stop()

	srv, err := server.New(server.Options{
		Auth:          flow,
		Providers:     server.GoogleProviders{Logger: logger},
		Renderer:      renderer,
		Sessions:      sessions,
		Health:        server.NewHealthChecker(storeChecker(store)),
		Metrics:       provider.Metrics(),
		Logger:        logger,
		SecureCookies: cfg.SecureCookies(),
	})
	if err != nil {
		return err
	}

	logger.Info("dashboard configured",
		slog.String("addr", cfg.Addr()),
		slog.Bool("deployed", cfg.Deployed),
		slog.String("redirect_url", cfg.RedirectURL()),
		slog.Bool("ephemeral", cfg.Ephemeral),
	)

	serveErr := srv.ListenAndServe(ctx, cfg.Addr())

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), server.DefaultShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			serveErr = errors.Join(serveErr, fmt.Errorf("failed to shut down metrics server: %w", err))
		}
	}
	return serveErr
}

// telemetryConfig maps the telemetry settings onto the exporter config.
func telemetryConfig(cfg *config.Config) instrumentation.Config {
	return instrumentation.Config{
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		ServiceInstanceID: cfg.Telemetry.ServiceInstanceID,
		Enabled:           cfg.Telemetry.Enabled,
		MetricsExporter:   cfg.Telemetry.MetricsExporter,
		TracingExporter:   cfg.Telemetry.TracingExporter,
		OTLPEndpoint:      cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:      cfg.Telemetry.OTLPInsecure,
		TraceSamplingRate: cfg.Telemetry.TraceSamplingRate,
	}
}

// credentialStore keeps the credential in TOKEN_FILE unless the run is
// ephemeral.
func credentialStore(cfg *config.Config) google.CredentialStore {
	if cfg.Ephemeral {
		return google.NewMemoryStore()
	}
	return google.NewFileStore(cfg.TokenFile)
}

// storeChecker reports a credential file that exists but cannot be read.
func storeChecker(store google.CredentialStore) server.StoreChecker {
	return func() error {
		_, err := store.Load()
		return err
	}
}
