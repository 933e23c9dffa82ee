// File path: cmd/billscope/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/veyra/billscope/internal/advisor"
	"github.com/veyra/billscope/internal/api"
	"github.com/veyra/billscope/internal/catalog"
	"github.com/veyra/billscope/internal/common"
	"github.com/veyra/billscope/internal/dataset"
	"github.com/veyra/billscope/internal/scan"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug("billscope: .env file not loaded", "error", err)
	} else {
		logger.Info("billscope: environment loaded from .env")
	}

	input := flag.String("input", "", "path to the billing CSV dataset")
	output := flag.String("output", "anomalies_report.json", "path of the JSON report to write")
	catalogPath := flag.String("catalog", strings.TrimSpace(os.Getenv("BILLSCOPE_DB_PATH")), "path to the SQLite scan catalog (empty disables persistence)")
	lenient := flag.Bool("lenient", false, "skip rows with malformed values instead of aborting")
	advise := flag.Bool("advise", false, "attach LLM-generated criteria and narrative to the report")
	serve := flag.Bool("serve", false, "run the HTTP API instead of a one-shot scan")
	addr := flag.String("addr", ":8084", "listen address in serve mode")
	allowPaths := flag.Bool("allow-paths", false, "let API clients scan server-local file paths")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *catalog.Store
	if trimmed := strings.TrimSpace(*catalogPath); trimmed != "" {
		var err error
		store, err = catalog.Open(trimmed)
		if err != nil {
			logger.Error("billscope: catalog unavailable", "path", trimmed, "error", err)
			fmt.Println("catalog error:", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	service := &scan.Service{
		Catalog: store,
		Advisor: advisor.New(advisor.NewProvider()),
	}

	if *serve {
		if err := runServer(ctx, service, *addr, *allowPaths); err != nil {
			logger.Error("billscope: server failed", "error", err)
			fmt.Println("server error:", err)
			os.Exit(1)
		}
		return
	}

	if strings.TrimSpace(*input) == "" {
		fmt.Println("usage: billscope -input dataset.csv [-output report.json]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if err := runScan(ctx, service, *input, *output, *lenient, *advise); err != nil {
		logger.Error("billscope: scan failed", "input", *input, "error", err)
		fmt.Println("scan error:", err)
		os.Exit(1)
	}
}

func runScan(ctx context.Context, service *scan.Service, input, output string, lenient, advise bool) error {
	logger := common.Logger()
	ds, err := dataset.ReadFile(input)
	if err != nil {
		return err
	}
	logger.Info("billscope: dataset loaded", "path", input, "rows", ds.Len())

	result, err := service.Scan(ctx, ds, scan.Options{Source: input, Lenient: lenient, Advise: advise})
	if err != nil {
		return err
	}
	doc := result.Document
	if doc.Criteria != "" {
		fmt.Printf("Anomaly Detection Criteria:\n%s\n", doc.Criteria)
	}
	if err := doc.WriteFile(output); err != nil {
		return err
	}
	for category, count := range doc.Counts() {
		logger.Info("billscope: category result", "category", category, "flagged", count)
	}
	if result.RunID != "" {
		logger.Info("billscope: run catalogued", "run", result.RunID)
	}
	fmt.Printf("Report generated: %s\n", output)
	return nil
}

func runServer(ctx context.Context, service *scan.Service, addr string, allowPaths bool) error {
	logger := common.Logger()
	cfg := api.DefaultConfig()
	cfg.AllowPaths = allowPaths
	server, err := api.NewServer(service, &cfg)
	if err != nil {
		return err
	}
	httpServer := &http.Server{Addr: addr, Handler: server}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("billscope: http server listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("billscope: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
