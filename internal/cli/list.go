package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/flowir/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	DBPath   string
	Operator string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persisted snapshots",
		Long: `List the snapshots persisted in a SQLite store, in save order.

With --operator, list every stored operator with that name instead, together
with its structural fingerprint and the snapshot it belongs to.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Operator, "operator", "", "list stored operators with this name")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runList(ctx context.Context, opts *ListOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	// Listing never creates a database.
	if _, err := os.Stat(opts.DBPath); os.IsNotExist(err) {
		return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Errorf("database not found: %s", opts.DBPath))
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, err)
	}
	defer st.Close()

	if opts.Operator != "" {
		return listOperators(ctx, st, opts.Operator, formatter)
	}

	snapshots, err := st.ListSnapshots(ctx)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, err)
	}
	if formatter.structured() {
		return formatter.Success(snapshots)
	}
	if len(snapshots) == 0 {
		fmt.Fprintln(formatter.Writer, "No snapshots stored")
		return nil
	}
	for _, snap := range snapshots {
		fmt.Fprintf(formatter.Writer, "%4d  %s  %s (ir v%s)\n", snap.Seq, snap.ID, snap.Name, snap.IRVersion)
	}
	return nil
}

func listOperators(ctx context.Context, st *store.Store, name string, formatter *OutputFormatter) error {
	records, err := st.FindOperators(ctx, name)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, err)
	}
	if formatter.structured() {
		return formatter.Success(records)
	}
	if len(records) == 0 {
		fmt.Fprintf(formatter.Writer, "No stored operator named %q\n", name)
		return nil
	}
	for _, rec := range records {
		kind := "composite"
		if rec.Primitive {
			kind = "primitive"
		}
		fmt.Fprintf(formatter.Writer, "%s  %s  %s in %s (%s)\n", rec.Fingerprint, rec.Name, kind, rec.SnapshotName, rec.SnapshotID)
	}
	return nil
}
