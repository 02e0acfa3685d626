package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bomgraph/internal/model"
)

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	Quantity int
	Order    int
	Notes    string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <edge-id>",
		Short: "Change quantity, notes or position of an edge",
		Long: `Change the quantity, notes or display position of an existing edge.

Only flags that are given are changed. A new position moves the edge among
its siblings; the others shift so positions stay 0..n-1.

Example:
  bomgraph update --tenant acme 0192f6c1-... --qty 4
  bomgraph update --tenant acme 0192f6c1-... --order 0`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Quantity, "qty", 0, "new quantity")
	cmd.Flags().IntVar(&opts.Order, "order", 0, "new position among siblings")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "new notes (empty clears them)")

	return cmd
}

func runUpdate(opts *UpdateOptions, edgeID string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	var patch model.EdgePatch
	if cmd.Flags().Changed("qty") {
		patch.Quantity = &opts.Quantity
	}
	if cmd.Flags().Changed("order") {
		patch.SortOrder = &opts.Order
	}
	if cmd.Flags().Changed("notes") {
		patch.Notes = &opts.Notes
	}
	if patch.Empty() {
		return NewExitError(ExitCommandError, "nothing to update: pass --qty, --order or --notes")
	}

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	tenant, err := sess.tenant()
	if err != nil {
		return err
	}

	if err := sess.svc.UpdateComponent(ctx, tenant, edgeID, patch); err != nil {
		return outputError(formatter, err, nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"edge_id": edgeID})
	}
	fmt.Fprintf(formatter.Writer, "✓ Updated edge %s\n", edgeID)
	return nil
}
