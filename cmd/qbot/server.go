package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/sreejagatab/linkedin-qbot/internal/api"
	"github.com/sreejagatab/linkedin-qbot/internal/config"
	"github.com/sreejagatab/linkedin-qbot/internal/ner"
	"github.com/sreejagatab/linkedin-qbot/internal/pipeline"
	"github.com/sreejagatab/linkedin-qbot/internal/profile"
	"github.com/sreejagatab/linkedin-qbot/internal/refine"
	"github.com/sreejagatab/linkedin-qbot/internal/resolve"
	"github.com/sreejagatab/linkedin-qbot/internal/storage"
	"github.com/sreejagatab/linkedin-qbot/internal/wati"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the qbot server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running qbot server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show qbot system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "qbot.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func logLevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "qbot version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevelFromString(cfg.Log.Level),
	})))

	apiToken, err := config.GetAPIToken(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://%s:%d/health", cfg.Server.Host, cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("qbot is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("qbot is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load profiles.
	profiles, err := profile.NewStore(cfg.Storage.ProfilesDir)
	if err != nil {
		return fmt.Errorf("opening profile store: %w", err)
	}
	if err := profiles.Reload(); err != nil {
		return fmt.Errorf("loading profiles: %w", err)
	}

	// Open query history storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Named-entity recognition is optional: without a model the resolver
	// still matches on names, patterns, and identifiers.
	var recognizer ner.Recognizer
	if cfg.NER.ModelPath != "" {
		hugotRec, err := ner.NewHugotRecognizer(cfg.NER.ModelPath)
		if err != nil {
			slog.Warn("could not load NER model, continuing without entity recognition",
				"model_path", cfg.NER.ModelPath, "error", err)
		} else {
			defer hugotRec.Close()
			recognizer = hugotRec
			slog.Info("NER model loaded", "model_path", cfg.NER.ModelPath)
		}
	}

	processor := pipeline.New(
		profiles,
		resolve.New(profiles, recognizer),
		refine.New(recognizer),
		store,
	)

	// Wati integration is optional.
	var sender api.ReplySender
	if cfg.Wati.APIKey != "" {
		watiClient := wati.New(cfg.Wati.APIKey, cfg.Wati.APIURL)
		sender = watiClient
		if cfg.Wati.WebhookURL != "" {
			if err := watiClient.CreateWebhook(ctx, cfg.Wati.WebhookURL, []string{"message"}); err != nil {
				slog.Warn("could not register Wati webhook", "url", cfg.Wati.WebhookURL, "error", err)
			} else {
				slog.Info("Wati webhook registered", "url", cfg.Wati.WebhookURL)
			}
		}
	}

	handler := api.NewHandler(api.Deps{
		Processor: processor,
		Profiles:  profiles,
		History:   store,
		Sender:    sender,
		Token:     apiToken,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Processor: processor,
		Profiles:  profiles,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "qbot listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("qbot is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop qbot (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to qbot (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	running := false
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			running = true
			printStatus("Server", "running on %s:%d", cfg.Server.Host, cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if cfg.NER.ModelPath != "" {
		printStatus("NER model", "%s", cfg.NER.ModelPath)
	} else {
		printStatus("NER model", "not configured (pattern matching only)")
	}

	if cfg.Wati.APIKey != "" {
		printStatus("Wati", "configured")
	} else {
		printStatus("Wati", "not configured")
	}

	if running {
		if summaries, err := fetchProfileSummaries(client, serverURL); err == nil {
			printStatus("Profiles", "%d loaded", len(summaries))
		}
	}

	printStatus("Profiles dir", "%s", cfg.Storage.ProfilesDir)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func fetchProfileSummaries(client *http.Client, serverURL string) ([]profileSummary, error) {
	resp, err := client.Get(serverURL + "/profiles")
	if err != nil {
		return nil, err
	}
	var summaries []profileSummary
	if err := decodeJSON(resp, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}
