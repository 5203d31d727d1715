package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/calegray/taxidrill/internal/dataset"
)

// SetupOptions holds flags for the setup command.
type SetupOptions struct {
	*RootOptions
	Database string
	Trips    int
	Seed     int64
	Days     int
	Start    string
	Zones    string
}

// setupResult is the setup command's success payload.
type setupResult struct {
	Database string `json:"database"`
	Zones    int    `json:"zones"`
	Trips    int    `json:"trips"`
}

func (r setupResult) String() string {
	return fmt.Sprintf("Database ready at %s: %d zones, %d trips", r.Database, r.Zones, r.Trips)
}

// NewSetupCommand creates the setup command.
func NewSetupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create and fill the practice database",
		Long: `Create the practice SQLite database, seed the zone lookup, and
generate a deterministic synthetic trip log.

The same --seed and --trips always produce the same database, so two
learners with the same flags see identical query results.

Example:
  taxidrill setup --db ./taxi.db
  taxidrill setup --db ./taxi.db --trips 50000 --seed 7
  taxidrill setup --db ./taxi.db --zones ./taxi_zone_lookup.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Trips, "trips", 10000, "number of synthetic trips to generate")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "random seed for trip generation")
	cmd.Flags().IntVar(&opts.Days, "days", 90, "span of pickup days")
	cmd.Flags().StringVar(&opts.Start, "start", "", "first pickup day (YYYY-MM-DD, default 2024-01-01)")
	cmd.Flags().StringVar(&opts.Zones, "zones", "", "zone lookup CSV to import (default: built-in zones)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSetup(opts *SetupOptions, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var start time.Time
	if opts.Start != "" {
		var err error
		start, err = time.Parse("2006-01-02", opts.Start)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --start date", err)
		}
	}

	slog.Info("opening database", "path", opts.Database)
	db, err := dataset.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var zones int
	if opts.Zones != "" {
		slog.Info("importing zone lookup", "path", opts.Zones)
		zones, err = db.ImportZonesCSV(ctx, opts.Zones)
	} else {
		slog.Info("seeding built-in zone lookup")
		zones, err = db.SeedZones(ctx)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load zones", err)
	}

	slog.Info("generating trips", "trips", opts.Trips, "seed", opts.Seed)
	trips, err := db.GenerateTrips(ctx, dataset.GenerateOptions{
		Trips: opts.Trips,
		Seed:  opts.Seed,
		Start: start,
		Days:  opts.Days,
	})
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to generate trips", err)
	}

	return formatter.Success(setupResult{
		Database: opts.Database,
		Zones:    zones,
		Trips:    trips,
	})
}

// configureLogging sets the default slog handler per the verbose flag.
func configureLogging(opts *RootOptions) {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
