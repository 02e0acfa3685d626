package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ContainersResult is the JSON payload of the containers command.
type ContainersResult struct {
	Tenant     string   `json:"tenant"`
	Component  string   `json:"component"`
	Containers []string `json:"containers"`
}

// NewContainersCommand creates the containers command.
func NewContainersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "containers <component>",
		Short: "List products that directly contain a component",
		Long: `List the products that directly contain a component.

Only direct parents are listed; a product that contains the component
through a sub-assembly is not.

Example:
  bomgraph containers --tenant acme Bolt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContainers(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runContainers(opts *RootOptions, componentID string, cmd *cobra.Command) error {
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

	parents, err := sess.svc.Containers(ctx, tenant, componentID)
	if err != nil {
		return outputError(formatter, err, nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(ContainersResult{Tenant: tenant, Component: componentID, Containers: parents})
	}
	if len(parents) == 0 {
		fmt.Fprintf(formatter.Writer, "%s is not used by any product\n", componentID)
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%s is used by:\n", componentID)
	for _, p := range parents {
		fmt.Fprintf(formatter.Writer, "  %s\n", p)
	}
	return nil
}
