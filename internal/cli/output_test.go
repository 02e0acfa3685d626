package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bomgraph/internal/composition"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"edge_id": "e1"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("NOT_FOUND", "component edge e9 not found", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "component edge e9 not found", resp.Error.Message)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("DUPLICATE_EDGE", "Kit already contains Widget", map[string]string{"edge": "e1"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [DUPLICATE_EDGE]")
	assert.Contains(t, buf.String(), "Kit already contains Widget")
	assert.NotContains(t, buf.String(), "Details:")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("STORAGE", "add component failed", "disk I/O error")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [STORAGE]")
	assert.Contains(t, buf.String(), "Details: disk I/O error")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("visited %d product(s)", 3)

			assert.Empty(t, out.String(), "verbose output must not corrupt JSON")
			if tt.wantLog {
				assert.Contains(t, errOut.String(), "visited 3 product(s)")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestOutputError_Cycle(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	cause := fmt.Errorf("import Bolt -> Kit: %w", &composition.Error{
		Code:    composition.ErrCodeCycleDetected,
		Message: "adding Kit to Bolt would create a cycle",
		Path:    []string{"Bolt", "Kit", "Gadget", "Bolt"},
	})
	err := outputError(formatter, cause, nil)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, composition.IsCycle(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string              `json:"code"`
			Message string              `json:"message"`
			Details map[string][]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "CYCLE_DETECTED", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "path: Bolt -> Kit -> Gadget -> Bolt")
	assert.Equal(t, []string{"Bolt", "Kit", "Gadget", "Bolt"}, resp.Error.Details["path"])
}

func TestOutputError_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rejection", &composition.Error{Code: composition.ErrCodeDuplicateEdge, Message: "dup"}, ExitFailure},
		{"not_found", &composition.Error{Code: composition.ErrCodeNotFound, Message: "missing"}, ExitFailure},
		{"invalid", &composition.Error{Code: composition.ErrCodeInvalidArgument, Message: "bad"}, ExitFailure},
		{"storage", &composition.Error{Code: composition.ErrCodeStorage, Message: "failed", Err: errors.New("disk full")}, ExitCommandError},
		{"other", errors.New("boom"), ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf}

			err := outputError(formatter, tt.err, nil)
			assert.Equal(t, tt.want, GetExitCode(err))
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, buf.String(), "Error [")
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitFailure, "rejected"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}
