package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bomgraph/internal/model"
	"github.com/roach88/bomgraph/internal/store"
)

func TestAddAndList_Text(t *testing.T) {
	c := newTestCLI(t)

	out := c.mustRun("add", "Kit", "Widget", "--qty", "2")
	assert.Contains(t, out, "✓ Added Kit -> Widget (edge edge-000001)")
	c.mustRun("add", "Kit", "Gadget", "--notes", "boxed")

	out = c.mustRun("list", "Kit")
	assert.Contains(t, out, "Kit (2 component(s))")
	assert.Contains(t, out, "0. Widget x2 [edge-000001]")
	assert.Contains(t, out, `1. Gadget x1 [edge-000002] "boxed"`)

	out = c.mustRun("list", "Widget")
	assert.Contains(t, out, "Widget has no components")
}

func TestAdd_CycleRejected(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("add", "Kit", "Widget")
	c.mustRun("add", "Kit", "Gadget")
	c.mustRun("add", "Gadget", "Bolt")

	out, err := c.run("add", "Bolt", "Kit", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	status, _, cliErr := decode[any](t, out)
	assert.Equal(t, "error", status)
	require.NotNil(t, cliErr)
	assert.Equal(t, "CYCLE_DETECTED", cliErr.Code)
	assert.Equal(t, map[string]any{"path": []any{"Bolt", "Kit", "Gadget", "Bolt"}}, cliErr.Details)

	// Nothing was written.
	out = c.mustRun("list", "Bolt")
	assert.Contains(t, out, "Bolt has no components")
}

func TestAdd_Rejections(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("add", "Kit", "Widget")

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"self_reference", []string{"add", "Kit", "Kit"}, "SELF_REFERENCE"},
		{"duplicate", []string{"add", "Kit", "Widget"}, "DUPLICATE_EDGE"},
		{"negative_quantity", []string{"add", "Kit", "Bolt", "--qty=-1"}, "INVALID_ARGUMENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}

func TestAdd_RequiresTenant(t *testing.T) {
	c := newTestCLI(t)

	_, err := c.exec("add", "Kit", "Widget")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "tenant is required")
}

func TestCommand_BadBackend(t *testing.T) {
	c := newTestCLI(t)

	_, err := c.run("list", "Kit", "--backend", "postgres")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestUpdate_MovesAndEdits(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("add", "Kit", "A")
	c.mustRun("add", "Kit", "B")
	c.mustRun("add", "Kit", "C")

	out := c.mustRun("update", "edge-000003", "--order", "0", "--qty", "5")
	assert.Contains(t, out, "✓ Updated edge edge-000003")

	out = c.mustRun("list", "Kit", "--format", "json")
	_, result, _ := decode[ListResult](t, out)
	assert.Equal(t, []string{"C", "A", "B"}, componentIDs(result.Components))
	assert.Equal(t, 5, result.Components[0].Quantity)
	for i, e := range result.Components {
		assert.Equal(t, i, e.SortOrder)
	}
}

func TestUpdate_NothingToUpdate(t *testing.T) {
	c := newTestCLI(t)

	_, err := c.run("update", "edge-000001")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "nothing to update")
}

func TestUpdate_ClearNotes(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("add", "Kit", "A", "--notes", "fragile")

	c.mustRun("update", "edge-000001", "--notes", "")

	out := c.mustRun("list", "Kit", "--format", "json")
	_, result, _ := decode[ListResult](t, out)
	require.Len(t, result.Components, 1)
	assert.Empty(t, result.Components[0].Notes)
}

func TestRemove(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("add", "Kit", "A")
	c.mustRun("add", "Kit", "B")

	out := c.mustRun("remove", "edge-000001")
	assert.Contains(t, out, "✓ Removed edge edge-000001")

	out = c.mustRun("list", "Kit", "--format", "json")
	_, result, _ := decode[ListResult](t, out)
	require.Len(t, result.Components, 1)
	assert.Equal(t, "B", result.Components[0].ComponentProductID)
	assert.Equal(t, 0, result.Components[0].SortOrder)

	out, err := c.run("remove", "edge-000001", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	_, _, cliErr := decode[any](t, out)
	require.NotNil(t, cliErr)
	assert.Equal(t, "NOT_FOUND", cliErr.Code)
}

func TestReorder(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("add", "Kit", "A")
	c.mustRun("add", "Kit", "B")
	c.mustRun("add", "Kit", "C")

	out := c.mustRun("reorder", "Kit", "edge-000002", "unknown", "--format", "json")
	_, result, _ := decode[ListResult](t, out)
	assert.Equal(t, []string{"B", "A", "C"}, componentIDs(result.Components))

	// Same order again changes nothing.
	again := c.mustRun("reorder", "Kit", "edge-000002", "--format", "json")
	assert.Equal(t, out, again)
}

func TestContainers(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("add", "Kit", "Bolt")
	c.mustRun("add", "Gadget", "Bolt")
	c.mustRun("add", "Kit", "Gadget")

	out := c.mustRun("containers", "Bolt", "--format", "json")
	_, result, _ := decode[ContainersResult](t, out)
	assert.Equal(t, []string{"Gadget", "Kit"}, result.Containers)

	out = c.mustRun("containers", "Kit")
	assert.Contains(t, out, "Kit is not used by any product")
}

func TestCheck(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("add", "Kit", "Gadget")
	c.mustRun("add", "Gadget", "Bolt")

	out := c.mustRun("check", "Kit", "Bolt")
	assert.Contains(t, out, "✓ Kit -> Bolt is acyclic")

	out, err := c.run("check", "Bolt", "Kit")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Bolt -> Kit would create a cycle: Bolt -> Kit -> Gadget -> Bolt")

	out, err = c.run("check", "Bolt", "Kit", "--format", "json")
	require.Error(t, err)
	_, result, _ := decode[CheckResult](t, out)
	assert.True(t, result.Cycle)
	assert.Equal(t, []string{"Bolt", "Kit", "Gadget", "Bolt"}, result.Path)

	// check never writes.
	out = c.mustRun("list", "Bolt")
	assert.Contains(t, out, "Bolt has no components")
}

func TestImport(t *testing.T) {
	c := newTestCLI(t)

	out, err := c.exec("import", "testdata/kit.yaml")
	require.NoError(t, err, c.stderr)
	assert.Contains(t, out, "✓ Imported into acme: 3 added, 0 skipped, 0 failed")

	out, err = c.exec("import", "testdata/kit.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [DUPLICATE_EDGE]")

	out, err = c.exec("import", "testdata/kit.yaml", "--skip-existing", "--format", "json")
	require.NoError(t, err, c.stderr)
	_, report, _ := decode[struct {
		Added   []string `json:"added"`
		Skipped int      `json:"skipped"`
	}](t, out)
	assert.Empty(t, report.Added)
	assert.Equal(t, 3, report.Skipped)
}

func TestImport_KeepGoingReportsCycles(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("add", "Bolt", "Kit")

	out, err := c.exec("import", "testdata/kit.yaml", "--keep-going")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Imported into acme: 2 added, 0 skipped, 1 failed")
	assert.Contains(t, out, "Gadget -> Bolt: CYCLE_DETECTED")
	assert.Contains(t, out, "path: Gadget -> Bolt -> Kit -> Gadget")
}

func TestImport_TenantMismatch(t *testing.T) {
	c := newTestCLI(t)

	_, err := c.exec("import", "testdata/kit.yaml", "--tenant", "globex")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "does not match")
}

func TestImport_InvalidManifest(t *testing.T) {
	c := newTestCLI(t)

	out, err := c.run("import", "testdata/bad.yaml", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	_, _, cliErr := decode[any](t, out)
	require.NotNil(t, cliErr)
	assert.Equal(t, ErrCodeInvalidManifest, cliErr.Code)
}

func TestAudit_RepairsGaps(t *testing.T) {
	c := newTestCLI(t)

	// Positions 0 and 2 can only come from writes that bypassed the service.
	st, err := store.Open(c.db)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, st.Update(ctx, "acme", func(tx model.EdgeTx) error {
		for _, e := range []model.ComponentEdge{
			{ID: "e1", ParentProductID: "Kit", ComponentProductID: "A", Quantity: 1, SortOrder: 0},
			{ID: "e2", ParentProductID: "Kit", ComponentProductID: "B", Quantity: 1, SortOrder: 2},
		} {
			if err := tx.Insert(ctx, e); err != nil {
				return err
			}
		}
		return nil
	}))
	require.NoError(t, st.Close())

	out, err := c.run("audit")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ acme: 2 edge(s), 3 product(s)")
	assert.Contains(t, out, "position gap under Kit: [0 2]")

	out = c.mustRun("audit", "--repair")
	assert.Contains(t, out, "✓ acme")
	assert.Contains(t, out, "Repaired 1 edge position(s)")

	out = c.mustRun("audit")
	assert.Contains(t, out, "✓ acme: 2 edge(s), 3 product(s)")
}

func TestAudit_AllTenants(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("add", "Kit", "Widget")
	_, err := c.exec("add", "Crate", "Box", "--tenant", "globex")
	require.NoError(t, err)

	out, err := c.exec("audit", "--all-tenants", "--format", "json")
	require.NoError(t, err, c.stderr)
	_, result, _ := decode[AuditResult](t, out)
	assert.True(t, result.Healthy)
	require.Len(t, result.Reports, 2)
	assert.Equal(t, "acme", result.Reports[0].TenantID)
	assert.Equal(t, "globex", result.Reports[1].TenantID)
}

func TestBadgerBackend(t *testing.T) {
	c := newTestCLI(t)
	c.db = filepath.Join(t.TempDir(), "kv")

	c.mustRun("add", "Kit", "Widget", "--backend", "badger")
	c.mustRun("add", "Widget", "Bolt", "--backend", "badger")

	// A second process sees what the first wrote.
	_, err := c.run("add", "Bolt", "Kit", "--backend", "badger")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out := c.mustRun("list", "Kit", "--backend", "badger")
	assert.Contains(t, out, "0. Widget x1 [edge-000001]")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "from-config.db")
	cfgPath := filepath.Join(dir, "bomgraph.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database: "+db+"\ntenant: acme\n"), 0o600))

	c := newTestCLI(t)
	run := func(args ...string) (string, error) {
		cmd := newRootCommand(&RootOptions{IDGenerator: c.ids})
		out := &strings.Builder{}
		cmd.SetOut(out)
		cmd.SetErr(&strings.Builder{})
		cmd.SetArgs(append(args, "--config", cfgPath))
		err := cmd.Execute()
		return out.String(), err
	}

	_, err := run("add", "Kit", "Widget")
	require.NoError(t, err)
	_, err = os.Stat(db)
	require.NoError(t, err, "database comes from the config file")

	out, err := run("list", "Kit")
	require.NoError(t, err)
	assert.Contains(t, out, "Widget")

	// Flags win over the file.
	out, err = run("list", "Kit", "--tenant", "globex")
	require.NoError(t, err)
	assert.Contains(t, out, "Kit has no components")
}

func TestMetricsOut(t *testing.T) {
	c := newTestCLI(t)
	path := filepath.Join(t.TempDir(), "bomgraph.prom")

	c.mustRun("add", "Kit", "Widget", "--metrics-out", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `bomgraph_cycle_checks_total{result="acyclic"} 1`)
	assert.Contains(t, string(data), `bomgraph_operations_total{operation="add_component",result="ok"} 1`)

	// Each run replaces the file with its own counters.
	_, err = c.run("add", "Widget", "Kit", "--metrics-out", path)
	require.Error(t, err)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `bomgraph_cycle_checks_total{result="cycle"} 1`)
	assert.Contains(t, string(data), `bomgraph_operations_total{operation="add_component",result="rejected"} 1`)
	assert.NotContains(t, string(data), `result="ok"`)
}
