package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewReorderCommand creates the reorder command.
func NewReorderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder <parent> <edge-id>...",
		Short: "Set the display order of a product's components",
		Long: `Set the display order of a product's components.

Listed edges take the first positions in the order given. Edges that are not
listed keep their relative order after them. IDs that do not belong to the
parent are ignored. Prints the resulting order.

Example:
  bomgraph reorder --tenant acme Kit 0192f6c2-... 0192f6c1-...`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReorder(rootOpts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runReorder(opts *RootOptions, parentID string, edgeIDs []string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts, cmd)

	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	tenant, err := sess.tenant()
	if err != nil {
		return err
	}

	if err := sess.svc.ReorderComponents(ctx, tenant, parentID, edgeIDs); err != nil {
		return outputError(formatter, err, nil)
	}

	edges, err := sess.svc.GetComponents(ctx, tenant, parentID)
	if err != nil {
		return outputError(formatter, err, nil)
	}
	return outputComponents(formatter, ListResult{Tenant: tenant, Parent: parentID, Components: edges})
}
