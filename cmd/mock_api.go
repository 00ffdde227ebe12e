package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/hr-portal/internal/mockapi"
	"github.com/frahmantamala/hr-portal/internal/transport/rest"
)

var mockAPIPort int

var mockAPICmd = &cobra.Command{
	Use:   "mock-api",
	Short: "Run the in-memory mock backend",
	Long:  `Serve the REST surface from memory, with seeded accounts, for local development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startMockAPI(cmd.Context())
	},
}

func init() {
	mockAPICmd.Flags().IntVarP(&mockAPIPort, "port", "p", 0, "listen port (overrides mock_api.port)")
}

func startMockAPI(ctx context.Context) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log := initLogger(cfg)

	if mockAPIPort > 0 {
		cfg.MockAPI.Port = mockAPIPort
	}

	mock, err := mockapi.New(cfg.MockAPI, log)
	if err != nil {
		return fmt.Errorf("failed to build mock api: %w", err)
	}
	handler, err := rest.NewRouter(mock, log)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.MockAPI.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	log.Info("mock api listening", "address", server.Addr, "seeded", cfg.MockAPI.SeedUsers)
	if cfg.MockAPI.SeedUsers {
		log.Info("seeded accounts", "emails", "admin@example.com, editor@example.com, viewer@example.com", "password", mockapi.SeedPassword)
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down mock api")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
			return err
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("mock api failed: %w", err)
		}
	}

	log.Info("mock api stopped")
	return nil
}
