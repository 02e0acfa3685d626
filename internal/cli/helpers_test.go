package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bomgraph/internal/model"
)

// testCLI runs bomgraph commands against one database with deterministic
// edge IDs (edge-000001, edge-000002, ...).
type testCLI struct {
	t      *testing.T
	db     string
	ids    model.IDGenerator
	stderr string
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	return &testCLI{
		t:   t,
		db:  filepath.Join(t.TempDir(), "bom.db"),
		ids: model.NewSequenceGenerator("edge"),
	}
}

// exec runs args with only --db added.
func (c *testCLI) exec(args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCommand(&RootOptions{IDGenerator: c.ids})
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append(args, "--db", c.db))

	err := cmd.Execute()
	c.stderr = errOut.String()
	return out.String(), err
}

// run runs args as tenant acme.
func (c *testCLI) run(args ...string) (string, error) {
	c.t.Helper()
	return c.exec(append(args, "--tenant", "acme")...)
}

func (c *testCLI) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "bomgraph %v\nstdout: %s\nstderr: %s", args, out, c.stderr)
	return out
}

// decode unmarshals a JSON envelope, failing the test if it is malformed.
func decode[T any](t *testing.T, out string) (status string, data T, cliErr *CLIError) {
	t.Helper()
	var resp struct {
		Status string    `json:"status"`
		Data   T         `json:"data"`
		Error  *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp.Status, resp.Data, resp.Error
}

func componentIDs(edges []model.ComponentEdge) []string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ComponentProductID
	}
	return ids
}
