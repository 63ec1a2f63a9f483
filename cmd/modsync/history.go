package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/voidworks/modsync/internal/state"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [pack]",
	Short: "Show recent sync runs",
	Long:  `Without arguments, shows recent runs across all packs. With a pack name, shows only that pack's runs.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := setup()
		if err != nil {
			return err
		}
		defer eng.Close()

		var runs []state.RunRecord
		if len(args) == 1 {
			runs, err = eng.Runs(args[0], historyLimit)
		} else {
			runs, err = eng.AllRuns(historyLimit)
		}
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No recorded runs.")
			return nil
		}

		for _, run := range runs {
			fmt.Printf("%s  %-12s  %-8s  %d copied, %d updated, %d removed, %d skipped",
				run.StartTime.Format(time.DateTime), run.PackName, run.Status,
				run.FilesCopied, run.FilesUpdated, run.FilesRemoved, run.FilesSkipped)
			if run.FilesFailed > 0 {
				fmt.Printf(", %d failed", run.FilesFailed)
			}
			if run.Error != "" {
				fmt.Printf("  (%s)", run.Error)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to show")
}
