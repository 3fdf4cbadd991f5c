package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"hairfit/internal/adapter/repo"
	"hairfit/internal/domain"
	"hairfit/internal/http/handlers"
	"hairfit/internal/http/httpapi"
	"hairfit/internal/infra"
	"hairfit/internal/infra/credentials"
	"hairfit/internal/infra/geoip"
	"hairfit/internal/middleware"
	"hairfit/internal/providers/synth"
	"hairfit/internal/storage"
	"hairfit/internal/styles"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()
	runner := infra.NewSQLRunner(dbpool, logger)

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open asset storage")
	}

	catalog, err := styles.NewCatalog(cfg.StylesDir, &logger)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.StylesDir).Msg("failed to load style catalog")
	}
	logger.Info().Int("styles", len(catalog.List())).Str("dir", cfg.StylesDir).Msg("style catalog loaded")

	cred, source, err := credentials.Resolve(ctx, credentials.NewStore(runner), credentials.ProviderGemini, credentials.Credential{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("stored gemini credential unavailable")
	}

	var synthesizer domain.Synthesizer = synth.Disabled{}
	gemini, err := synth.NewGemini(ctx, synth.Options{
		APIKey: cred.APIKey,
		Model:  cred.Model,
		Styles: catalog,
		Logger: &logger,
	})
	switch {
	case err == nil:
		defer gemini.Close()
		synthesizer = gemini
		logger.Info().Str("key_source", source).Str("key", credentials.Mask(cred.APIKey)).Msg("gemini synthesis enabled")
	case errors.Is(err, synth.ErrMissingAPIKey):
		logger.Warn().Msg("no gemini api key in env or database, synthesis endpoint disabled")
	default:
		logger.Fatal().Err(err).Msg("failed to create gemini client")
	}

	var lookup middleware.CountryLookup
	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = resolver.Lookup()
	}

	app := &handlers.App{
		Members:          repo.NewMemberRepository(runner),
		History:          repo.NewHistoryRepository(runner),
		Styles:           catalog,
		Store:            store,
		Synth:            synthesizer,
		Logger:           &logger,
		SynthesisTimeout: cfg.SynthesisTimeout,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:                logger,
		DefaultLocale:         cfg.DefaultLocale,
		CountryLookup:         lookup,
		CORSOrigins:           cfg.CORSOrigins,
		UploadLimitPerHour:    cfg.UploadLimitPerHour,
		SynthesisLimitPerHour: cfg.SynthesisLimitPerHour,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("storage", cfg.StorageDriver).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg *infra.Config) (storage.Store, error) {
	if cfg.StorageDriver == "s3" {
		return storage.NewS3Store(ctx, cfg.S3Bucket, cfg.AWSRegion, cfg.S3Prefix)
	}
	return storage.NewFileStore(cfg.StoragePath)
}
