// gaiachat-mcp serves the Gaia catalog searches as MCP tools over stdio.
//
// Logs go to stderr so they never interleave with the protocol on stdout.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gaiachat/internal/app"
	"github.com/kailas-cloud/gaiachat/internal/config"
	logpkg "github.com/kailas-cloud/gaiachat/internal/logger"
	"github.com/kailas-cloud/gaiachat/internal/metrics"
	"github.com/kailas-cloud/gaiachat/internal/transport/mcptools"
	"github.com/kailas-cloud/gaiachat/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.RegisterCatalogMetrics()

	archive := app.NewArchive(&cfg, logger)
	svc := app.NewCatalog(&cfg, archive, logger)

	logger.Info("Starting gaiachat MCP server",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("tap_url", cfg.Archive.TAPURL),
	)
	return server.ServeStdio(mcptools.NewServer(svc))
}
