package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <edge-id>",
		Short: "Delete an edge",
		Long: `Delete an edge. The remaining siblings are renumbered so positions
stay contiguous.

Example:
  bomgraph remove --tenant acme 0192f6c1-...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runRemove(opts *RootOptions, edgeID string, cmd *cobra.Command) error {
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

	if err := sess.svc.RemoveComponent(ctx, tenant, edgeID); err != nil {
		return outputError(formatter, err, nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"edge_id": edgeID})
	}
	fmt.Fprintf(formatter.Writer, "✓ Removed edge %s\n", edgeID)
	return nil
}
