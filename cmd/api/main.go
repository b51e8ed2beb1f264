package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"artify/internal/generate"
	"artify/internal/http/handlers"
	httpapi "artify/internal/http/httpapi"
	"artify/internal/imaging"
	"artify/internal/infra"
	"artify/internal/infra/credentials"
	"artify/internal/infra/geoip"
	"artify/internal/providers/image"
	"artify/internal/providers/prompt"
	"artify/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	credOpts := credentials.Options{Files: cfg.SecretsFiles, Logger: &logger}
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	if dbpool != nil {
		defer dbpool.Close()
		credOpts.SQL = infra.NewSQLRunner(dbpool, logger)
	}
	store := credentials.NewStore(credOpts)

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
		resolver = &geoip.Resolver{}
	}
	defer resolver.Close()

	chain := image.NewChain(image.ChainOptions{
		Providers:       cfg.Providers,
		Fallbacks:       cfg.Fallbacks,
		Credentials:     store,
		ProviderTimeout: cfg.ProviderTimeout,
		FallbackTimeout: cfg.FallbackTimeout,
		Logger:          &logger,
	})
	pipeline := imaging.NewPipeline(
		imaging.WithLogger(logger),
		imaging.WithRegionPatch(cfg.PatchWatermarkRegion),
	)
	service := generate.NewService(chain, pipeline, &logger)

	sessions := session.NewStore(cfg.SessionTTL)
	go sessions.Run(ctx, time.Minute)

	app := handlers.NewApp(service, prompt.NewStaticEnhancer(), sessions, &logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   resolver.CountryCode,
		SecureCookies:   cfg.AppEnv == "production",
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Int("credentialed_providers", len(cfg.Providers)).
			Int("fallback_providers", len(cfg.Fallbacks)).
			Bool("database", dbpool != nil).
			Bool("geoip", resolver.Enabled()).
			Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
