package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"authgate/core"
	"authgate/core/providers"
	"authgate/internal/obs"
	"authgate/storage"
)

func main() {
	config, err := core.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(config.LogLevel)
	obs.Init()

	repo := initRepository(config)
	provider := initProvider(config)

	authService := core.NewAuthService(repo, provider, config)
	server := core.NewServer(authService, config)

	mux := server.Routes()
	mux.Handle("/metrics", obs.Handler())

	handler := obs.Instrument(
		core.Logging(
			core.SecurityHeaders(
				core.CORS(config.CORSOrigins)(mux))))

	httpServer := &http.Server{
		Addr:              config.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", config.ListenAddr).Msg("authgate listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	waitForStopSignal()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("server stopped")
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

func initRepository(config *core.Config) core.Repository {
	switch strings.ToLower(config.DBType) {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(config.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize SQLite repository")
		}
		log.Info().Str("path", config.SQLitePath).Msg("using SQLite user directory")
		return repo

	case "mock":
		log.Info().Msg("using in-memory user directory")
		return storage.NewMockRepository()

	default:
		log.Fatal().Str("type", config.DBType).Msg("unsupported DB type (supported: sqlite, mock)")
		return nil
	}
}

func initProvider(config *core.Config) core.IdentityProvider {
	// The context is retained by the OIDC client for later JWKS fetches,
	// so it must outlive startup. Per-request deadlines come from the
	// provider's HTTP client timeout.
	provider, err := providers.NewGoogleProvider(context.Background(), &providers.GoogleConfig{
		ClientID:     config.GoogleClientID,
		ClientSecret: config.GoogleClientSecret,
		RedirectURI:  config.GoogleRedirectURI,
		IssuerURL:    config.GoogleIssuerURL,
		Timeout:      config.ProviderTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Google provider")
	}
	log.Info().Msg("Google OAuth provider initialized")
	return provider
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}
