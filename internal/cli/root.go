package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bomgraph/internal/model"
)

// RootOptions holds global flags for all commands.
//
// Backend, Database and Tenant override the config file when non-empty.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Backend    string
	Database   string
	Tenant     string
	MetricsOut string

	// IDGenerator overrides edge ID generation (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator model.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the bomgraph CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bomgraph",
		Short: "bomgraph - product composition graph",
		Long: `Maintain which products contain which other products, per tenant.

Every edge is checked before it is stored so that no product ever ends up
inside itself, directly or through any chain of sub-assemblies.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "edge store backend (sqlite|badger)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "SQLite file or Badger directory")
	cmd.PersistentFlags().StringVar(&opts.Tenant, "tenant", "", "tenant to operate on")
	cmd.PersistentFlags().StringVar(&opts.MetricsOut, "metrics-out", "", "write Prometheus metrics to this file on exit")

	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewReorderCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewContainersCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
