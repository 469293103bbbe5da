package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Airpyk-98/Python-Image-Gen/internal/config"
	internalhttp "github.com/Airpyk-98/Python-Image-Gen/internal/http"
	"github.com/Airpyk-98/Python-Image-Gen/internal/images"
	"github.com/Airpyk-98/Python-Image-Gen/internal/metrics"
	"github.com/Airpyk-98/Python-Image-Gen/internal/runner"
	"github.com/Airpyk-98/Python-Image-Gen/internal/store"
	"github.com/Airpyk-98/Python-Image-Gen/internal/sweeper"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	diskStore, err := store.NewDiskStore(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	log.Info().Str("path", diskStore.Root()).Msg("storage de imagens pronto")

	var codeRunner runner.Runner = runner.NoopRunner{}
	if cfg.RunnerURL != "" {
		remote, err := runner.NewRemote(runner.Config{
			BaseURL: cfg.RunnerURL,
			Timeout: cfg.RunnerTimeout,
		})
		if err != nil {
			return fmt.Errorf("runner: %w", err)
		}
		codeRunner = remote
	} else {
		log.Warn().Msg("RUNNER_URL ausente: geração de imagens desativada")
	}

	collector := metrics.NewCollector("plotimg")

	sweep := sweeper.New(diskStore, cfg.Retention, cfg.SweepInterval, log.Logger, collector)
	sweep.Start(context.Background())
	defer sweep.Stop()

	service := images.NewService(codeRunner, diskStore, cfg.MaxImageBytes, cfg.PublicBaseURL, collector)
	handler := internalhttp.NewRouter(cfg, images.NewHandler(service), collector)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
