package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/symbiote-h2020/Administration-sub000/internal/config"
	httpinfra "github.com/symbiote-h2020/Administration-sub000/internal/infra/http"
	"github.com/symbiote-h2020/Administration-sub000/internal/log"
)

const drainTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the administration HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}
		log.Init(log.Config{Level: cfg.LogLevel, JSONOutput: cfg.LogJSON})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := buildApplication(ctx, cfg)
		if err != nil {
			return err
		}

		srv := httpinfra.NewServerWithDeps(cfg, httpinfra.ServerDeps{
			Federations: app.federations,
			Joined:      app.joined,
			StoreMode:   app.store.mode,
			Health:      app.store.health,
		})
		runErr := srv.Run(ctx)

		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		logger := log.WithComponent("serve")
		if err := app.shutdown(drainCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown incomplete")
		}
		logger.Info().Msg("stopped")
		return runErr
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides HTTP_ADDR)")
}
