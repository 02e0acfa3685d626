package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bomgraph/internal/model"
)

// ListResult is the JSON payload of list and reorder.
type ListResult struct {
	Tenant     string                `json:"tenant"`
	Parent     string                `json:"parent"`
	Components []model.ComponentEdge `json:"components"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <parent>",
		Short: "List the direct components of a product",
		Long: `List the direct components of a product in display order.

Example:
  bomgraph list --tenant acme Kit
  bomgraph list --tenant acme Kit --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runList(opts *RootOptions, parentID string, cmd *cobra.Command) error {
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

	edges, err := sess.svc.GetComponents(ctx, tenant, parentID)
	if err != nil {
		return outputError(formatter, err, nil)
	}
	return outputComponents(formatter, ListResult{Tenant: tenant, Parent: parentID, Components: edges})
}

func outputComponents(formatter *OutputFormatter, result ListResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if len(result.Components) == 0 {
		fmt.Fprintf(formatter.Writer, "%s has no components\n", result.Parent)
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%s (%d component(s))\n", result.Parent, len(result.Components))
	for _, e := range result.Components {
		fmt.Fprintf(formatter.Writer, "  %d. %s x%d [%s]", e.SortOrder, e.ComponentProductID, e.Quantity, e.ID)
		if e.Notes != "" {
			fmt.Fprintf(formatter.Writer, " %q", e.Notes)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}
