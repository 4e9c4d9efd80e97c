package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joshua-takyi/mycalendar/internal/config"
	"github.com/joshua-takyi/mycalendar/internal/container"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	GeorefPath string
	CitiesPath string
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. Without a subcommand it serves
// the API.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mycalendar",
		Short: "Australian event calendar API",
		Long: `Event calendar REST service that refuses overlapping events and
decorates each event with weather and public holiday information.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "config.yaml", "YAML config file (optional)")
	cmd.PersistentFlags().StringVar(&opts.GeorefPath, "georef", "", "suburb georef CSV (overrides GEOREF_PATH)")
	cmd.PersistentFlags().StringVar(&opts.CitiesPath, "cities", "", "city coordinates CSV (overrides CITIES_PATH)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// loadConfig reads .env.local, the config file and the environment, then
// applies the path flags.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.GeorefPath != "" {
		cfg.GeorefPath = opts.GeorefPath
	}
	if opts.CitiesPath != "" {
		cfg.CitiesPath = opts.CitiesPath
	}
	return cfg, nil
}

func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

// bootstrap opens the store and wires every service. Callers own Close.
func bootstrap(ctx context.Context, opts *RootOptions, logOut io.Writer) (*container.Container, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := setupLogger(cfg, logOut)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	repo, err := container.OpenStore(ctx, cfg, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}
	logger.Info("event store ready", "driver", cfg.StoreDriver)

	c, err := container.NewContainer(cfg, logger, repo)
	if err != nil {
		_ = repo.Close(ctx)
		return nil, err
	}
	return c, nil
}
