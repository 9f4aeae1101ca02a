package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/kayz/codeloom/internal/catalog"
	"github.com/kayz/codeloom/internal/config"
	"github.com/kayz/codeloom/internal/llm"
	"github.com/kayz/codeloom/internal/logger"
	"github.com/kayz/codeloom/internal/persist"
	"github.com/kayz/codeloom/internal/webapi"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the codeloom HTTP API and web UI",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	provider, err := llm.NewProvider(cfg.AI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating provider: %v\n", err)
		os.Exit(1)
	}

	cat, err := catalog.Load(catalog.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	store, err := persist.NewStore(filepath.Join(config.DataDir(), "runs.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening run store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	sweeper := startRetentionSweeper(store, cfg.Retention.Days)
	if sweeper != nil {
		defer sweeper.Stop()
	}

	server := webapi.NewServer(cat, provider, store, cfg.Output.Dir)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("codeloom listening on http://127.0.0.1:%d (provider %s)", cfg.Port, provider.Name())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
}

// startRetentionSweeper prunes old run history once a day. Returns nil
// when retention is disabled.
func startRetentionSweeper(store *persist.Store, days int) *cron.Cron {
	if days <= 0 {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc("@daily", func() {
		cutoff := time.Now().AddDate(0, 0, -days)
		pruned, err := store.DeleteRunsBefore(cutoff)
		if err != nil {
			logger.Errorf("retention sweep failed: %v", err)
			return
		}
		if pruned > 0 {
			logger.Infof("retention sweep pruned %d run(s) older than %d days", pruned, days)
		}
	})
	if err != nil {
		logger.Errorf("retention sweeper not started: %v", err)
		return nil
	}
	c.Start()
	return c
}
