package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/lakewatch/lakeview/pkg/aggregate"
	"github.com/lakewatch/lakeview/pkg/deltalog"
	"github.com/lakewatch/lakeview/pkg/history"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	summaryRecursive bool
	summaryLimit     int
)

//nolint:gochecknoglobals // Cobra commands are typically global
var summaryCmd = &cobra.Command{
	Use:   "summary <path>",
	Short: "Print a summary of the Delta tables under a path",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().BoolVarP(&summaryRecursive, "recursive", "r", false, "scan nested directories")
	summaryCmd.Flags().IntVarP(&summaryLimit, "limit", "l", 0, "max tables to scan (0 = unlimited)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	provider := deltalog.NewProvider(logger)
	histories, err := provider.Fetch(cmd.Context(), args[0], summaryRecursive, 0)
	if err != nil {
		return err
	}
	if summaryLimit > 0 && len(histories) > summaryLimit {
		histories = histories[:summaryLimit]
	}

	var records []history.VersionRecord
	paths := make([]string, 0, len(histories))
	for _, h := range histories {
		paths = append(paths, h.Path)
		records = append(records, h.Records...)
	}

	identities, err := history.Normalize(paths)
	if err != nil {
		return err
	}
	ds, err := history.FromRecords(records)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tVERSION\tRECORDS\tSIZE\tLAST UPDATED")
	for _, row := range aggregate.Summary(ds, history.DisplayNames(identities)) {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			row.Table,
			row.Version,
			aggregate.FormatCount(row.Records),
			row.Size,
			row.LastUpdated.Format("2006-01-02 15:04:05 UTC"),
		)
	}
	return w.Flush()
}
