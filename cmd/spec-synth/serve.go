package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"spec-synth/internal/logger"
	"spec-synth/internal/pipeline"
	"spec-synth/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves generation, enrichment and request preview over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(os.Stdout, false)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		describer := pipeline.NewDescriber(cfg)
		srv := server.New(cfg, describer)

		fmt.Printf("Starting Spec Synth on %s\n", cfg.Server.Addr)
		fmt.Printf("  Health:    http://%s/health\n", cfg.Server.Addr)
		fmt.Printf("  Docs API:  http://%s/api/docs\n", cfg.Server.Addr)
		fmt.Printf("  NLP:       %v\n", describer != nil)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe(cfg.Server.Addr) }()

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		logger.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
