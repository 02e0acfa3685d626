package manifest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/bomgraph/internal/composition"
	"github.com/roach88/bomgraph/internal/model"
)

// Adder is the part of composition.Service that imports need.
type Adder interface {
	AddComponent(ctx context.Context, tenantID string, req composition.AddRequest) (string, error)
}

// Options controls how Apply reacts to rejected edges.
type Options struct {
	// SkipExisting counts DUPLICATE_EDGE as skipped instead of failed.
	SkipExisting bool

	// KeepGoing records rejections and continues with the next edge.
	// Storage failures always stop the import.
	KeepGoing bool

	Logger *slog.Logger
}

// Failure is one edge the import could not add.
type Failure struct {
	Parent    string                `json:"parent"`
	Component string                `json:"component"`
	Code      composition.ErrorCode `json:"code"`
	Message   string                `json:"message"`
	Path      []string              `json:"path,omitempty"`
}

// Report summarizes an import.
type Report struct {
	Tenant   string    `json:"tenant"`
	Added    []string  `json:"added"`
	Skipped  int       `json:"skipped"`
	Failures []Failure `json:"failures"`
}

// ResolveTenant picks the tenant for an import: the explicit tenant if set,
// otherwise the manifest's. Both set and different is an error.
func ResolveTenant(explicit string, m *Manifest) (string, error) {
	explicit = model.NormalizeID(explicit)
	fromFile := model.NormalizeID(m.Tenant)
	switch {
	case explicit == "" && fromFile == "":
		return "", errors.New("no tenant given and manifest has none")
	case explicit == "":
		return fromFile, nil
	case fromFile != "" && fromFile != explicit:
		return "", fmt.Errorf("manifest tenant %q does not match %q", fromFile, explicit)
	default:
		return explicit, nil
	}
}

// Apply adds every component of m in document order, so each set's
// components get positions in the order they are listed.
//
// Without KeepGoing the first rejection stops the import and is returned
// along with the partial report; edges already added stay added.
func Apply(ctx context.Context, svc Adder, tenantID string, m *Manifest, opts Options) (Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tenantID, err := ResolveTenant(tenantID, m)
	if err != nil {
		return Report{}, err
	}

	report := Report{Tenant: tenantID, Added: []string{}, Failures: []Failure{}}
	for _, set := range m.Sets {
		for _, c := range set.Components {
			id, err := svc.AddComponent(ctx, tenantID, composition.AddRequest{
				ParentID:    set.Product,
				ComponentID: c.Product,
				Quantity:    c.Quantity,
				Notes:       c.Notes,
			})
			switch {
			case err == nil:
				report.Added = append(report.Added, id)
				continue
			case opts.SkipExisting && composition.IsDuplicate(err):
				report.Skipped++
				logger.Debug("import skipped existing edge", "parent", set.Product, "component", c.Product)
				continue
			case composition.IsStorage(err) || !opts.KeepGoing:
				return report, fmt.Errorf("import %s -> %s: %w", set.Product, c.Product, err)
			}

			f := Failure{
				Parent:    set.Product,
				Component: c.Product,
				Code:      composition.Code(err),
				Message:   err.Error(),
			}
			var ce *composition.Error
			if errors.As(err, &ce) {
				f.Path = ce.Path
			}
			report.Failures = append(report.Failures, f)
			logger.Warn("import edge rejected", "parent", set.Product, "component", c.Product, "code", f.Code)
		}
	}

	logger.Info("import finished",
		"tenant", tenantID,
		"added", len(report.Added),
		"skipped", report.Skipped,
		"failed", len(report.Failures),
	)
	return report, nil
}
