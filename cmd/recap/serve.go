package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"recap/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the slash command HTTP server",
	Long: `Run the HTTP server that backs the /summarize slash command.

The server verifies request signatures with SLACK_SIGNING_SECRET, answers
within Slack's three second deadline, and delivers the finished summary
through the command's response URL.

Endpoints:
  POST /slack/summarize   Slash command handler
  GET  /health            Health check

The listen address comes from --addr, then PORT, then defaults to :3000.`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

var (
	serveAddr    string
	serveVerbose bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from PORT or :3000)")
	serveCmd.Flags().BoolVar(&serveVerbose, "verbose", false, "Enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	if err := cfg.ValidateServer(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Addr
	}

	log := server.NewLogger(serveVerbose)
	srv := server.New(mustService(cfg), cfg.SlackSigningSecret, server.WithLogger(log))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "addr", addr, "endpoint", "/slack/summarize")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(ExitError)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	// Stop accepting requests, then wait for in-flight summaries to post
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	srv.Wait()
	log.Info("server stopped")
}
