package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/flowir/internal/ir"
)

// CheckResult holds the outcome of a catalog check.
type CheckResult struct {
	Valid      bool                 `json:"valid" yaml:"valid"`
	Operators  int                  `json:"operators" yaml:"operators"`
	Operations int                  `json:"operations" yaml:"operations"`
	Storages   int                  `json:"storages" yaml:"storages"`
	Recipes    int                  `json:"recipes" yaml:"recipes"`
	Errors     []ir.ValidationError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <catalog-dir>",
		Short: "Load a catalog and check the graph for consistency",
		Long: `Load a CUE operator catalog into the graph IR and run the graph-wide
structural checks.

Construction errors (unknown operators, mismatched inputs, unsupported types)
exit with code 2. Graph check findings exit with code 1.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	res, err := loadCatalog(opts, dir, cmd, formatter)
	if err != nil {
		return err
	}

	findings := ir.Validate(res.Context)
	result := CheckResult{
		Valid:      len(findings) == 0,
		Operators:  len(res.Context.Operators()),
		Operations: res.Context.NumOperations(),
		Storages:   len(res.Context.Storages()),
		Recipes:    len(res.Context.Recipes()),
		Errors:     findings,
	}

	if len(findings) > 0 {
		return outputCheckFindings(formatter, result)
	}
	return outputCheckSuccess(formatter, result)
}

// outputCheckSuccess outputs a clean check result.
func outputCheckSuccess(formatter *OutputFormatter, result CheckResult) error {
	if formatter.structured() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Catalog valid: %d operator(s), %d operation(s), %d storage(s), %d recipe(s)\n",
		result.Operators, result.Operations, result.Storages, result.Recipes)
	return nil
}

// outputCheckFindings outputs graph check findings.
func outputCheckFindings(formatter *OutputFormatter, result CheckResult) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("check failed with %d finding(s)", len(result.Errors)))

	if formatter.structured() {
		first := result.Errors[0]
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: first.Code, Message: first.Message},
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Check failed")
	fmt.Fprintln(formatter.Writer)
	for _, finding := range result.Errors {
		fmt.Fprintf(formatter.Writer, "%s\n  %s: %s\n\n", finding.Field, finding.Code, finding.Message)
	}
	return failure
}
