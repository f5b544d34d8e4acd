package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var arcsDir = filepath.Join("..", "catalog", "testdata", "arcs")

// unsuppliedOutput compiles cleanly but declares an output its
// implementation never produces.
const unsuppliedOutput = `
package test

operator: {
	id: {inputs: a: primitive: name: "T", outputs: b: primitive: name: "T"}
	wrap: {
		inputs: x: primitive: name: "T"
		outputs: y: primitive: name: "T"
		implementation: operations: call: {operator: "id", inputs: a: argument: "x"}
	}
}
`

func writeCatalog(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.cue"), []byte(src), 0644))
	return dir
}

func executeCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--format", format}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestCheckValidCatalog(t *testing.T) {
	output, err := executeCommand(t, "text", "check", arcsDir)
	require.NoError(t, err)

	assert.Contains(t, output, "✓ Catalog valid")
	assert.Contains(t, output, "5 operator(s)")
	assert.Contains(t, output, "2 storage(s)")
	assert.Contains(t, output, "1 recipe(s)")
}

func TestCheckValidCatalogJSON(t *testing.T) {
	output, err := executeCommand(t, "json", "check", arcsDir)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 5, resp.Data.Operators)
	assert.Equal(t, 4, resp.Data.Operations)
	assert.Empty(t, resp.Data.Errors)
}

func TestCheckFindings(t *testing.T) {
	dir := writeCatalog(t, unsuppliedOutput)

	output, err := executeCommand(t, "text", "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "✗ Check failed")
	assert.Contains(t, output, "E306")
}

func TestCheckFindingsJSON(t *testing.T) {
	dir := writeCatalog(t, unsuppliedOutput)

	output, err := executeCommand(t, "json", "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
		Error  *CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E306", resp.Error.Code)
}

func TestCheckConstructionError(t *testing.T) {
	dir := writeCatalog(t, `
package test

operator: {
	id: {inputs: a: primitive: name: "T", outputs: b: primitive: name: "T"}
	r: implementation: operations: call: {operator: "id", inputs: {}}
}
`)

	output, err := executeCommand(t, "json", "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E203", resp.Error.Code)
	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "operator.r.implementation.operations.call", details["field"])
}

func TestCheckNonExistentDirectory(t *testing.T) {
	output, err := executeCommand(t, "text", "check", "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, output, "not found")
}

func TestCheckEmptyDirectory(t *testing.T) {
	output, err := executeCommand(t, "text", "check", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, output, "no CUE files found")
}
