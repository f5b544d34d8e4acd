package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/flowir/internal/store"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	DBPath string
	Name   string
}

// SaveResult describes a persisted snapshot.
type SaveResult struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Inserted bool   `json:"inserted" yaml:"inserted"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <catalog-dir>",
		Short: "Persist the catalog snapshot to a SQLite store",
		Long: `Load a CUE operator catalog and persist its canonical snapshot.

Snapshots are content-addressed by their hash: saving an unchanged catalog
again is a no-op that reports the existing snapshot ID.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "snapshot name (default: catalog directory name)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSave(ctx context.Context, opts *SaveOptions, dir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	res, err := loadCatalog(opts.RootOptions, dir, cmd, formatter)
	if err != nil {
		return err
	}

	name := opts.Name
	if name == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}
		name = filepath.Base(abs)
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, err)
	}
	defer st.Close()

	id, inserted, err := st.SaveSnapshot(ctx, name, res.Context)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, err)
	}
	formatter.VerboseLog("Snapshot %s (inserted=%t) in %s", id, inserted, opts.DBPath)

	result := SaveResult{ID: id, Name: name, Inserted: inserted}
	if formatter.structured() {
		return formatter.Success(result)
	}
	if inserted {
		fmt.Fprintf(formatter.Writer, "✓ Saved snapshot %s as %q\n", id, name)
	} else {
		fmt.Fprintf(formatter.Writer, "✓ Snapshot %s already stored\n", id)
	}
	return nil
}
