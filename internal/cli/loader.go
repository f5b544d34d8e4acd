package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/flowir/internal/catalog"
	"github.com/roach88/flowir/internal/fatal"
	"github.com/roach88/flowir/internal/ir"
)

// CLI error codes. Catalog load errors keep the catalog package codes
// (E001-E006) and construction errors keep their fatal code (E2xx).
const (
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeCompileFailed = "E010" // Catalog compile error without a construction code
	ErrCodeStoreFailed   = "E011" // Snapshot store error
	ErrCodeSnapshot      = "E012" // Snapshot encoding error
)

// loadCatalog loads the catalog in dir. Failures are reported through
// formatter and returned as command errors (exit code 2).
func loadCatalog(opts *RootOptions, dir string, cmd *cobra.Command, formatter *OutputFormatter) (*catalog.Result, error) {
	res, err := catalog.Load(dir, ir.WithLogger(newLogger(opts, cmd.ErrOrStderr())))
	if err != nil {
		return nil, outputCommandError(formatter, errorCode(err), err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", res.FileCount, dir)
	return res, nil
}

// errorCode maps a loader error to its CLI error code.
func errorCode(err error) string {
	var loadErr *catalog.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	if code, ok := fatal.CodeOf(err); ok {
		return string(code)
	}
	if catalog.IsCompileError(err) {
		return ErrCodeCompileFailed
	}
	return catalog.ErrCodeGeneric
}

// errorDetails extracts the CUE position of a compile error, if any.
func errorDetails(err error) any {
	var ce *catalog.CompileError
	if !errors.As(err, &ce) {
		return nil
	}
	details := map[string]any{"field": ce.Field}
	if ce.Pos.IsValid() {
		details["file"] = ce.Pos.Filename()
		details["line"] = ce.Pos.Line()
		details["column"] = ce.Pos.Column()
	}
	return details
}

// outputCommandError reports err and returns it as a command error.
func outputCommandError(formatter *OutputFormatter, code string, err error) error {
	_ = formatter.Error(code, err.Error(), errorDetails(err))
	return WrapExitError(ExitCommandError, code, err)
}
