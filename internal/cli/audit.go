package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bomgraph/internal/composition"
)

// AuditOptions holds flags for the audit command.
type AuditOptions struct {
	*RootOptions
	AllTenants bool
	Repair     bool
}

// AuditResult is the JSON payload of the audit command.
type AuditResult struct {
	Healthy  bool                      `json:"healthy"`
	Repaired int                       `json:"repaired"`
	Reports  []composition.AuditReport `json:"reports"`
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check stored edges for cycles and position gaps",
		Long: `Scan a tenant's stored edges for cycles and for parents whose component
positions are not 0..n-1. Exits 1 when a problem remains.

Edges written through bomgraph never contain these problems; audit finds
damage from imports or manual edits that bypassed it. --repair renumbers
positions; cycles must be broken by hand with remove.

Example:
  bomgraph audit --tenant acme
  bomgraph audit --all-tenants --repair`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.AllTenants, "all-tenants", false, "audit every tenant in the database")
	cmd.Flags().BoolVar(&opts.Repair, "repair", false, "renumber parents with position gaps")

	return cmd
}

func runAudit(opts *AuditOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	var reports []composition.AuditReport
	if opts.AllTenants {
		reports, err = sess.svc.AuditAll(ctx)
	} else {
		tenant, terr := sess.tenant()
		if terr != nil {
			return terr
		}
		var r composition.AuditReport
		r, err = sess.svc.Audit(ctx, tenant)
		reports = []composition.AuditReport{r}
	}
	if err != nil {
		return outputError(formatter, err, nil)
	}

	result := AuditResult{Healthy: true, Reports: reports}
	for i, r := range reports {
		if opts.Repair && len(r.OrderGaps) > 0 {
			n, err := repairTenant(ctx, sess.svc, r)
			if err != nil {
				return outputError(formatter, err, nil)
			}
			formatter.VerboseLog("repaired %d edge(s) in %s", n, r.TenantID)
			result.Repaired += n

			if r, err = sess.svc.Audit(ctx, r.TenantID); err != nil {
				return outputError(formatter, err, nil)
			}
			result.Reports[i] = r
		}
		if !r.Healthy() {
			result.Healthy = false
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputAuditText(formatter, result)
	}

	if !result.Healthy {
		return NewExitError(ExitFailure, "audit found problems")
	}
	return nil
}

func repairTenant(ctx context.Context, svc *composition.Service, r composition.AuditReport) (int, error) {
	total := 0
	for _, gap := range r.OrderGaps {
		n, err := svc.RepairOrder(ctx, r.TenantID, gap.ParentID)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func outputAuditText(formatter *OutputFormatter, result AuditResult) {
	for _, r := range result.Reports {
		if r.Healthy() {
			fmt.Fprintf(formatter.Writer, "✓ %s: %d edge(s), %d product(s)\n", r.TenantID, r.Edges, r.Products)
			continue
		}
		fmt.Fprintf(formatter.Writer, "✗ %s: %d edge(s), %d product(s)\n", r.TenantID, r.Edges, r.Products)
		for _, c := range r.Cycles {
			fmt.Fprintf(formatter.Writer, "  cycle: %s\n", c)
		}
		for _, g := range r.OrderGaps {
			fmt.Fprintf(formatter.Writer, "  position gap under %s: %v\n", g.ParentID, g.Orders)
		}
	}
	if result.Repaired > 0 {
		fmt.Fprintf(formatter.Writer, "Repaired %d edge position(s)\n", result.Repaired)
	}
	if len(result.Reports) == 0 {
		fmt.Fprintln(formatter.Writer, "No tenants found")
	}
}
