package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"stockservice/internal/app"
	"stockservice/internal/config"
	"stockservice/internal/logging"
	"stockservice/internal/provider/cache"
	"stockservice/internal/service"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config.yaml (optional, CONFIG_FILE)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("config")
	}
	logger := logging.NewLogger(app.LogConfig(cfg.Log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup")
	}
	defer a.Close()

	janitor, err := startJanitor(cfg.Cache.SweepSpec, a.Service.Cache(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("cache janitor")
	}
	defer janitor.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newHandler(a.Service, cfg.Server.RequestTimeout(), logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server")
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("server stopped")
}

func newHandler(svc *service.Service, timeout time.Duration, logger zerolog.Logger) http.Handler {
	mux := newMux(&handler{svc: svc, timeout: timeout})
	return withRequestLog(logger)(withJSONHeaders(withGzip(recoverPanic(limitBody(mux)))))
}

// startJanitor drops expired cache entries on spec so idle symbols do not
// hold memory until the next lookup.
func startJanitor(spec string, c *cache.Cache, logger zerolog.Logger) (*cron.Cron, error) {
	cr := cron.New()
	if spec != "" {
		if _, err := cr.AddFunc(spec, func() {
			if n := c.Sweep(); n > 0 {
				logger.Debug().Int("removed", n).Int("remaining", c.Len()).Msg("cache sweep")
			}
		}); err != nil {
			return nil, err
		}
	}
	cr.Start()
	return cr, nil
}
