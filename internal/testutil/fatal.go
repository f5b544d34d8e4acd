// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/flowir/internal/fatal"
)

// RequireFatal asserts that fn aborts construction with the given code.
func RequireFatal(t testing.TB, code fatal.Code, fn func()) *fatal.Error {
	t.Helper()

	err := fatal.Catch(fn)
	require.Error(t, err, "expected construction to fail with %s", code)

	got, ok := fatal.CodeOf(err)
	require.True(t, ok, "expected *fatal.Error, got %T: %v", err, err)
	require.Equal(t, code, got, "unexpected construction error: %v", err)

	fe, _ := err.(*fatal.Error)
	return fe
}

// RequireNotFatal asserts that fn completes without a construction error.
func RequireNotFatal(t testing.TB, fn func()) {
	t.Helper()
	require.NoError(t, fatal.Catch(fn))
}
