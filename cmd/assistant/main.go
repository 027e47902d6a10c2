package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kradenko/rag-assistant/internal/bootstrap"
	"github.com/kradenko/rag-assistant/internal/config"
	"github.com/kradenko/rag-assistant/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.NewJSONLogger("rag-assistant", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		log.Fatalf("sources error: %v", err)
	}
	if err := app.IngestSources(ctx, sources); err != nil {
		log.Fatalf("ingest error: %v", err)
	}

	if cfg.MetricsPort != "" {
		go serveMetrics(cfg.MetricsPort, app, logger)
	}

	fmt.Println("Ask a question (Ctrl-D to quit).")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}

		answer, err := app.Ask(ctx, query)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(answer)
	}
	if ctx.Err() != nil {
		logger.Info("shutting down")
	}
}

func serveMetrics(port string, app *bootstrap.App, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.Metrics().Handler())
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", "error", err)
	}
}
