// gaiactl runs GaiaChat catalog searches from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/kailas-cloud/gaiachat/internal/app"
	"github.com/kailas-cloud/gaiachat/internal/cli"
	"github.com/kailas-cloud/gaiachat/internal/config"
	logpkg "github.com/kailas-cloud/gaiachat/internal/logger"
)

func main() {
	cmd := cli.NewRootCommand(newCatalog)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}

func newCatalog(opts *cli.RootOptions) (cli.Catalog, error) {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.TAPURL != "" {
		cfg.Archive.TAPURL = opts.TAPURL
	}

	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return app.NewCatalog(&cfg, app.NewArchive(&cfg, logger), logger), nil
}
