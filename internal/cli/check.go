package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bomgraph/internal/graph"
)

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	Parent    string `json:"parent"`
	Component string `json:"component"`
	graph.Result
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <parent> <component>",
		Short: "Report whether adding an edge would create a cycle",
		Long: `Report whether placing component under parent would create a cycle,
without changing anything. Exits 1 when it would.

Duplicates are not checked; add reports those.

Example:
  bomgraph check --tenant acme Bolt Kit`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, parentID, componentID string, cmd *cobra.Command) error {
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

	r, err := sess.svc.PreviewComponent(ctx, tenant, parentID, componentID)
	if err != nil {
		return outputError(formatter, err, nil)
	}
	formatter.VerboseLog("visited %d product(s)", r.Visited)

	if formatter.Format == "json" {
		if err := formatter.Success(CheckResult{Parent: parentID, Component: componentID, Result: r}); err != nil {
			return err
		}
	} else if r.Cycle {
		fmt.Fprintf(formatter.Writer, "✗ %s would create a cycle: %s\n", arrow(parentID, componentID), strings.Join(r.Path, " -> "))
	} else {
		fmt.Fprintf(formatter.Writer, "✓ %s is acyclic\n", arrow(parentID, componentID))
	}

	if r.Cycle {
		return NewExitError(ExitFailure, fmt.Sprintf("%s would create a cycle", arrow(parentID, componentID)))
	}
	return nil
}
