package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestYAMLEnvelope(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "yaml", Writer: buf}
		require.NoError(t, f.Success(map[string]int{"operators": 5}))

		var resp struct {
			Status string         `yaml:"status"`
			Data   map[string]int `yaml:"data"`
			Error  *CLIError      `yaml:"error"`
		}
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, 5, resp.Data["operators"])
		assert.Nil(t, resp.Error)
	})

	t.Run("error with details", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "yaml", Writer: buf}
		details := []string{"operators[p].results.foo: E306"}
		require.NoError(t, f.Error("E306", "graph has 1 finding", details))

		var resp CLIResponse
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.Nil(t, resp.Data)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "E306", resp.Error.Code)
		assert.Equal(t, []any{"operators[p].results.foo: E306"}, resp.Error.Details)
	})

	t.Run("error without details", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "yaml", Writer: buf}
		require.NoError(t, f.Error("E203", "input count mismatch", nil))
		assert.NotContains(t, buf.String(), "details")
	})
}

func TestTextErrorDetailsOnlyWhenVerbose(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf, Verbose: verbose}
		require.NoError(t, f.Error("E001", "catalog failed to load", "recipe.cue:3"))

		assert.Contains(t, buf.String(), "Error [E001]: catalog failed to load")
		if verbose {
			assert.Contains(t, buf.String(), "Details: recipe.cue:3")
		} else {
			assert.NotContains(t, buf.String(), "Details:")
		}
	}
}

func TestVerboseLogKeepsStructuredOutputClean(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	f := &OutputFormatter{Format: "yaml", Writer: out, ErrWriter: diag, Verbose: true}

	f.VerboseLog("loaded %d files", 2)
	require.NoError(t, f.Success("done"))

	assert.Equal(t, "loaded 2 files\n", diag.String())
	assert.NotContains(t, out.String(), "loaded")
	assert.Same(t, diag, f.GetErrWriter())
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"command error", NewExitError(ExitCommandError, "bad path"), ExitCommandError},
		{"check failure", NewExitError(ExitFailure, "findings"), ExitFailure},
		{"plain error", errors.New("plain"), ExitFailure},
		{"wrapped", fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "open store", errors.New("locked"))), ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}

	wrapped := WrapExitError(ExitFailure, "check failed", errors.New("inner"))
	assert.Equal(t, "check failed: inner", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "inner")
}
