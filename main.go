package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mlegall/strum/internal/config"
	"github.com/mlegall/strum/internal/coverart"
	"github.com/mlegall/strum/internal/errmsg"
	"github.com/mlegall/strum/internal/ingest"
	"github.com/mlegall/strum/internal/mpris"
	"github.com/mlegall/strum/internal/playback"
	"github.com/mlegall/strum/internal/player"
	"github.com/mlegall/strum/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpConfigLoad, err))
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	engine := player.New()
	defer engine.Close()
	engine.SetVolume(cfg.Playback.InitialVolume)

	ctrl := playback.New(engine)
	defer ctrl.Close()

	extractor := coverart.New(uint(cfg.Artwork.MaxEdge))
	ingester, err := ingest.New(cfg.SpoolDir, extractor)
	if err != nil {
		return err
	}

	mprisAdapter, err := mpris.New(ctrl)
	if err != nil {
		logrus.WithError(err).Warn("desktop media controls unavailable")
	} else {
		defer mprisAdapter.Close()
	}

	srv := server.New(cfg.Listen, ctrl, ingester)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s", errmsg.Format(errmsg.OpServerStart, err))
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpServerStop, err))
	}
	return <-errCh
}
