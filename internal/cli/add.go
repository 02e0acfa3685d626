package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bomgraph/internal/composition"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Quantity int
	Notes    string
}

// AddResult is the JSON payload of a successful add.
type AddResult struct {
	EdgeID      string `json:"edge_id"`
	ParentID    string `json:"parent_id"`
	ComponentID string `json:"component_id"`
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <parent> <component>",
		Short: "Place a component directly under a parent",
		Long: `Place a component product directly under a parent product.

The edge is rejected if the component is the parent itself, if the parent
already contains the component, or if the edge would close a cycle. A cycle
rejection prints the loop the edge would have created.

Example:
  bomgraph add --tenant acme Kit Widget --qty 2
  bomgraph add --tenant acme Kit Gadget --notes "boxed"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Quantity, "qty", 1, "quantity of the component per parent")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "free-form notes")

	return cmd
}

func runAdd(opts *AddOptions, parentID, componentID string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	tenant, err := sess.tenant()
	if err != nil {
		return err
	}

	edgeID, err := sess.svc.AddComponent(ctx, tenant, composition.AddRequest{
		ParentID:    parentID,
		ComponentID: componentID,
		Quantity:    opts.Quantity,
		Notes:       opts.Notes,
	})
	if err != nil {
		return outputError(formatter, err, nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(AddResult{EdgeID: edgeID, ParentID: parentID, ComponentID: componentID})
	}
	fmt.Fprintf(formatter.Writer, "✓ Added %s (edge %s)\n", arrow(parentID, componentID), edgeID)
	return nil
}
