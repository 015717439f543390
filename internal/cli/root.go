// Package cli implements the gaiactl command line for one-off catalog searches.
package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/gaiachat/internal/domain"
	"github.com/kailas-cloud/gaiachat/internal/domain/population"
	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	"github.com/kailas-cloud/gaiachat/internal/export"
	"github.com/kailas-cloud/gaiachat/internal/usecase/catalog"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // archive or runtime failure
	ExitCommandError = 2 // bad flags or arguments
)

// ValidFormats lists the allowed --format values.
var ValidFormats = []string{export.FormatText, export.FormatJSON, export.FormatCSV}

// Catalog is the catalog surface the commands drive.
type Catalog interface {
	SearchCone(ctx context.Context, p catalog.ConeParams) (result.Result, error)
	SearchSolarNeighborhood(ctx context.Context, p catalog.SolarParams) (result.Result, error)
	SearchHypervelocity(ctx context.Context, p catalog.HypervelocityParams) (result.Result, error)
	SearchStream(ctx context.Context, p catalog.StreamParams) (result.Result, error)
	SearchAccretedHalo(ctx context.Context, p catalog.HaloParams) (result.Result, error)
	ExecuteRaw(ctx context.Context, query string) (result.Result, error)
	BuildQuery(p catalog.BuildParams) (string, error)
	Populations() []population.Criterion
}

// Factory builds the catalog once flags are parsed.
type Factory func(opts *RootOptions) (Catalog, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format  string
	TAPURL  string
	Verbose bool
}

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps err to a process exit code. Commands wrap their own failures
// in ExitError, so anything else came from cobra's flag and argument checks.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitCommandError
}

// classify wraps a command error with its exit code. Caller mistakes exit 2.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrUnknownPopulation) {
		return &ExitError{Code: ExitCommandError, Err: err}
	}
	return &ExitError{Code: ExitFailure, Err: err}
}

// NewRootCommand creates the gaiactl root command.
func NewRootCommand(factory Factory) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gaiactl",
		Short: "Query the Gaia DR3 catalog",
		Long: `gaiactl runs the GaiaChat catalog searches from the command line.

Stream and halo searches derive Galactocentric velocities (V_phi positive
along disk rotation) and keep only the stars matching the population.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return &ExitError{
					Code: ExitCommandError,
					Err:  fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats),
				}
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", export.FormatText, "output format (text|json|csv)")
	cmd.PersistentFlags().StringVar(&opts.TAPURL, "tap-url", "", "TAP service URL (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging to stderr")

	cmd.AddCommand(
		newConeCommand(opts, factory),
		newSolarCommand(opts, factory),
		newHypervelocityCommand(opts, factory),
		newStreamCommand(opts, factory),
		newHaloCommand(opts, factory),
		newQueryCommand(opts, factory),
		newBuildCommand(opts, factory),
		newPopulationsCommand(opts, factory),
		newVersionCommand(),
	)
	return cmd
}

// searchFunc runs one search against the catalog.
type searchFunc func(ctx context.Context, c Catalog) (result.Result, error)

// runSearch builds the catalog, runs search and writes the result in the chosen format.
func runSearch(cmd *cobra.Command, opts *RootOptions, factory Factory, search searchFunc) error {
	c, err := factory(opts)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	r, err := search(cmd.Context(), c)
	if err != nil {
		return classify(err)
	}
	if err := export.Write(cmd.OutOrStdout(), r, opts.Format); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	if r.RowCount() == 0 && opts.Format == export.FormatText {
		fmt.Fprintln(cmd.ErrOrStderr(), "No stars matched. Try a larger distance, radius or limit.")
	}
	return nil
}
