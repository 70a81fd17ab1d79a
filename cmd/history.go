package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/lakewatch/lakeview/pkg/aggregate"
	"github.com/lakewatch/lakeview/pkg/deltalog"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	historyRecursive bool
	historyLimit     int
)

//nolint:gochecknoglobals // Cobra commands are typically global
var historyCmd = &cobra.Command{
	Use:   "history <path>",
	Short: "Print recent operations for the Delta tables under a path",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolVarP(&historyRecursive, "recursive", "r", false, "scan nested directories")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 10, "versions to show per table (0 = all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	provider := deltalog.NewProvider(logger)
	histories, err := provider.Fetch(cmd.Context(), args[0], historyRecursive, historyLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	for _, h := range histories {
		fmt.Fprintf(w, "%s\n", h.Path)
		fmt.Fprintln(w, "  VERSION\tTIMESTAMP\tOPERATION\tROWS\tSIZE")
		// Most recent first for display.
		for i := len(h.Records) - 1; i >= 0; i-- {
			rec := h.Records[i]
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n",
				rec.Version,
				rec.Timestamp.Format("2006-01-02 15:04:05"),
				rec.Operation,
				aggregate.FormatCount(rec.TotalRows),
				aggregate.FormatBytes(rec.TotalBytes),
			)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
