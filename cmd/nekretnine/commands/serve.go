package commands

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nyka2002/nekretnine-search/internal/httpapi"
	"github.com/nyka2002/nekretnine-search/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat/listings/admin HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (overrides config http.addr)")
	_ = viper.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		logError("failed to load config: %v", err)
		return err
	}
	logger.Init(logger.Options{Debug: cfg.Debug, Quiet: cfg.Quiet})

	a, err := build(cfg)
	if err != nil {
		logError("failed to build application: %v", err)
		return err
	}

	server := &httpapi.Server{
		Extractor:   a.Extractor,
		ChatManager: a.ChatManager,
		Search:      a.Search,
		Store:       a.Store,
		Queue:       a.Queue,
		AdminToken:  cfg.HTTP.AdminToken,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("http server listening", "addr", cfg.HTTP.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logError("server error: %v", err)
		return err
	}
	return nil
}
