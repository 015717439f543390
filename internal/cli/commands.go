package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/gaiachat/internal/domain"
	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	"github.com/kailas-cloud/gaiachat/internal/export"
	"github.com/kailas-cloud/gaiachat/internal/usecase/catalog"
	"github.com/kailas-cloud/gaiachat/internal/version"
)

func newConeCommand(opts *RootOptions, factory Factory) *cobra.Command {
	var p catalog.ConeParams
	cmd := &cobra.Command{
		Use:   "cone",
		Short: "Stars with positive parallax within a circle on the sky",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd, opts, factory, func(ctx context.Context, c Catalog) (result.Result, error) {
				return c.SearchCone(ctx, p)
			})
		},
	}
	cmd.Flags().Float64Var(&p.RA, "ra", 0, "right ascension of the centre in degrees")
	cmd.Flags().Float64Var(&p.Dec, "dec", 0, "declination of the centre in degrees")
	cmd.Flags().Float64Var(&p.RadiusDeg, "radius", catalog.DefaultConeRadiusDeg, "radius in degrees")
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "maximum rows (0 uses the configured default)")
	_ = cmd.MarkFlagRequired("ra")
	_ = cmd.MarkFlagRequired("dec")
	return cmd
}

func newSolarCommand(opts *RootOptions, factory Factory) *cobra.Command {
	var p catalog.SolarParams
	cmd := &cobra.Command{
		Use:   "solar",
		Short: "Well-measured stars near the Sun",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd, opts, factory, func(ctx context.Context, c Catalog) (result.Result, error) {
				return c.SearchSolarNeighborhood(ctx, p)
			})
		},
	}
	cmd.Flags().Float64Var(&p.DistancePc, "distance-pc", catalog.DefaultSolarDistancePc, "maximum distance in parsecs")
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "maximum rows (0 uses the configured default)")
	return cmd
}

func newHypervelocityCommand(opts *RootOptions, factory Factory) *cobra.Command {
	var p catalog.HypervelocityParams
	cmd := &cobra.Command{
		Use:     "hypervelocity",
		Aliases: []string{"hvs"},
		Short:   "Stars faster than a Galactocentric speed threshold",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd, opts, factory, func(ctx context.Context, c Catalog) (result.Result, error) {
				return c.SearchHypervelocity(ctx, p)
			})
		},
	}
	cmd.Flags().Float64Var(&p.DistanceKpc, "distance-kpc", catalog.DefaultHVSDistanceKpc, "maximum distance in kiloparsecs")
	cmd.Flags().Float64Var(&p.MinVelocityKms, "min-velocity", catalog.DefaultHVSMinVelocity, "minimum total velocity in km/s")
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "maximum rows (0 uses min(500, default))")
	return cmd
}

func newStreamCommand(opts *RootOptions, factory Factory) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "stream <name>",
		Short: "Kinematic candidates of a stellar stream (Nyx, GSE, Helmi, Sequoia)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, factory, func(ctx context.Context, c Catalog) (result.Result, error) {
				return c.SearchStream(ctx, catalog.StreamParams{Name: args[0], Limit: limit})
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 uses the configured default)")
	return cmd
}

func newHaloCommand(opts *RootOptions, factory Factory) *cobra.Command {
	var p catalog.HaloParams
	cmd := &cobra.Command{
		Use:   "halo",
		Short: "Accreted halo candidates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd, opts, factory, func(ctx context.Context, c Catalog) (result.Result, error) {
				return c.SearchAccretedHalo(ctx, p)
			})
		},
	}
	cmd.Flags().BoolVar(&p.RetrogradeOnly, "retrograde", false, "only stars on retrograde orbits")
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "maximum rows (0 uses the configured default)")
	return cmd
}

func newQueryCommand(opts *RootOptions, factory Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "query <adql|->",
		Short: "Run ADQL as written; '-' reads the query from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := args[0]
			if q == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return &ExitError{Code: ExitFailure, Err: fmt.Errorf("read stdin: %w", err)}
				}
				q = string(b)
			}
			return runSearch(cmd, opts, factory, func(ctx context.Context, c Catalog) (result.Result, error) {
				return c.ExecuteRaw(ctx, q)
			})
		},
	}
}

func newBuildCommand(opts *RootOptions, factory Factory) *cobra.Command {
	var p catalog.BuildParams
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Print an assembled ADQL query without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := factory(opts)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}
			q, err := c.BuildQuery(p)
			if err != nil {
				return classify(err)
			}
			if opts.Format == export.FormatJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"query": q})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), q)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&p.Columns, "column", nil, "column to select (repeatable; default all)")
	cmd.Flags().StringArrayVar(&p.Conditions, "where", nil, "WHERE condition (repeatable, joined with AND)")
	cmd.Flags().StringVar(&p.OrderBy, "order-by", "", "column with optional ASC/DESC")
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "TOP row count (0 uses the configured default)")
	return cmd
}

// populationView is the JSON shape of one population.
type populationView struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Aliases     []string `json:"aliases,omitempty"`
	PreFilter   []string `json:"pre_filter,omitempty"`
	Description string   `json:"description"`
}

func newPopulationsCommand(opts *RootOptions, factory Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "populations",
		Short: "List the known streams and halo selections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := factory(opts)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}
			pops := c.Populations()
			if opts.Format == export.FormatJSON {
				out := make([]populationView, 0, len(pops))
				for _, p := range pops {
					out = append(out, populationView{
						Key: p.Key, Name: p.Name, Kind: string(p.Kind),
						Aliases: p.Aliases, PreFilter: p.PreFilter, Description: p.Description,
					})
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			if opts.Format == export.FormatCSV {
				return &ExitError{Code: ExitCommandError, Err: domain.Invalidf("populations support text and json output only")}
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tKIND\tALIASES\tDESCRIPTION")
			for _, p := range pops {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Key, p.Kind, strings.Join(p.Aliases, ","), p.Description)
			}
			return tw.Flush()
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "gaiactl", version.String())
			return err
		},
	}
}
