package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bomgraph/internal/manifest"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	SkipExisting bool
	KeepGoing    bool
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <manifest.yaml>",
		Short: "Add the edges listed in a manifest",
		Long: `Add every component listed in a YAML manifest, in document order.

Each edge goes through the same checks as add. The manifest may name its
tenant; --tenant must match it when both are given.

  tenant: acme
  sets:
    - product: Kit
      components:
        - product: Widget
          quantity: 2

Example:
  bomgraph import kit.yaml --skip-existing
  bomgraph import --tenant acme kit.yaml --keep-going --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.SkipExisting, "skip-existing", false, "skip edges that already exist")
	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "record rejected edges and continue")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	m, err := manifest.Load(path)
	if err != nil {
		var schemaErr *manifest.SchemaError
		if errors.As(err, &schemaErr) {
			_ = formatter.Error(ErrCodeInvalidManifest, "manifest does not match schema", schemaErr.Problems)
		} else {
			_ = formatter.Error(ErrCodeInvalidManifest, err.Error(), nil)
		}
		return WrapExitError(ExitCommandError, "failed to load manifest", err)
	}
	formatter.VerboseLog("loaded %d edge(s) from %s", m.Edges(), path)

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	report, err := manifest.Apply(ctx, sess.svc, sess.cfg.Tenant, m, manifest.Options{
		SkipExisting: opts.SkipExisting,
		KeepGoing:    opts.KeepGoing,
		Logger:       sess.logger,
	})
	if err != nil {
		if report.Tenant == "" {
			// Tenant could not be resolved; nothing was attempted.
			_ = formatter.Error(ErrCodeCommand, err.Error(), nil)
			return WrapExitError(ExitCommandError, "import failed", err)
		}
		return outputError(formatter, err, report)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		outputImportText(formatter, report)
	}

	if len(report.Failures) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d edge(s) rejected", len(report.Failures)))
	}
	return nil
}

func outputImportText(formatter *OutputFormatter, report manifest.Report) {
	mark := "✓"
	if len(report.Failures) > 0 {
		mark = "✗"
	}
	fmt.Fprintf(formatter.Writer, "%s Imported into %s: %d added, %d skipped, %d failed\n",
		mark, report.Tenant, len(report.Added), report.Skipped, len(report.Failures))

	for _, f := range report.Failures {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", arrow(f.Parent, f.Component), f.Code)
		if len(f.Path) > 0 {
			fmt.Fprintf(formatter.Writer, "    path: %s\n", strings.Join(f.Path, " -> "))
		}
	}
}
