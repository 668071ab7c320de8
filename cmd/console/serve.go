package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/99minutos/client-console/internal/api"
	"github.com/99minutos/client-console/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct {
	Port string `short:"p" long:"port" description:"listen port, overrides PORT"`

	root *Options
}

func (c *ServeCmd) Execute(_ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := c.root.env.loadConfig(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{
		Level:     cfg.LogLevel,
		Pretty:    cfg.IsDevelopment(),
		Component: "api",
	})

	s, err := c.root.open(ctx, &log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open client storage")
		return err
	}
	defer s.Close(context.Background())

	port := s.cfg.Port
	if c.Port != "" {
		port = c.Port
	}

	e := api.NewRouter(s.console, s.repo, log, nil)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", port).Str("backend", s.cfg.Storage.Backend).Msg("client console listening")
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
