package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshua-takyi/mycalendar/internal/services"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.ics>",
		Short: "Create events from an iCalendar file",
		Long: `Create one event per VEVENT in an iCalendar file. Events that overlap
an existing event, span more than one day or lack a valid state are skipped
and reported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, args[0])
		},
	}
}

func runImport(cmd *cobra.Command, opts *RootOptions, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ctx := commandContext(cmd)
	app, err := bootstrap(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	report, err := app.CalendarService.ImportICS(ctx, f)
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), opts.Format, report)
}

func writeReport(w io.Writer, format string, report services.ImportReport) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(w, "imported %d event(s)\n", len(report.Imported))
	for _, id := range report.Imported {
		fmt.Fprintf(w, "  + /events/%d\n", id)
	}
	if len(report.Skipped) > 0 {
		fmt.Fprintf(w, "skipped %d event(s)\n", len(report.Skipped))
		for _, s := range report.Skipped {
			fmt.Fprintf(w, "  - %s (%s): %s\n", s.UID, s.Summary, s.Reason)
		}
	}
	return nil
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:           "export",
		Short:         "Write all events as an iCalendar file",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, rootOpts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, opts *RootOptions, output string) error {
	ctx := commandContext(cmd)
	app, err := bootstrap(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	if output == "" {
		return app.CalendarService.ExportICS(ctx, cmd.OutOrStdout())
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := app.CalendarService.ExportICS(ctx, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
