package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/flowir/internal/ir"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Output string // output file path
}

// DumpResult describes a snapshot written to a file.
type DumpResult struct {
	Hash   string `json:"hash" yaml:"hash"`
	Output string `json:"output" yaml:"output"`
	Bytes  int    `json:"bytes" yaml:"bytes"`
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump <catalog-dir>",
		Short: "Write the canonical snapshot of a catalog",
		Long: `Load a CUE operator catalog and write the snapshot of the resulting graph.

With --format json the snapshot is canonical JSON, byte-identical across runs,
whose domain-separated SHA-256 is the snapshot hash. With --format yaml it is
the same document as YAML, and with --format text a readable listing.

Without --output the snapshot goes to stdout. With --output it is written to
the file and a summary is printed instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runDump(opts *DumpOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	res, err := loadCatalog(opts.RootOptions, dir, cmd, formatter)
	if err != nil {
		return err
	}

	data, err := encodeSnapshot(opts.Format, res.Context)
	if err != nil {
		return outputCommandError(formatter, ErrCodeSnapshot, err)
	}

	if opts.Output == "" {
		if _, err := formatter.Writer.Write(data); err != nil {
			return err
		}
		if opts.Format == "json" {
			fmt.Fprintln(formatter.Writer)
		}
		return nil
	}

	if err := os.WriteFile(opts.Output, data, 0644); err != nil {
		return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Errorf("writing output file: %w", err))
	}
	formatter.VerboseLog("Wrote %d byte(s) to %s", len(data), opts.Output)

	hash, err := ir.SnapshotHash(res.Context)
	if err != nil {
		return outputCommandError(formatter, ErrCodeSnapshot, err)
	}
	result := DumpResult{Hash: hash, Output: opts.Output, Bytes: len(data)}
	if formatter.structured() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Wrote snapshot %s to %s\n", hash, opts.Output)
	return nil
}

// encodeSnapshot renders the graph snapshot in the given format.
// The JSON form is canonical and carries no trailing newline.
func encodeSnapshot(format string, c *ir.Context) ([]byte, error) {
	switch format {
	case "json":
		return ir.MarshalCanonical(ir.Snapshot(c))
	case "yaml":
		data, err := yaml.Marshal(ir.Snapshot(c))
		if err != nil {
			return nil, fmt.Errorf("marshaling snapshot: %w", err)
		}
		return data, nil
	default:
		var buf bytes.Buffer
		renderGraph(&buf, c)
		return buf.Bytes(), nil
	}
}
