package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voidworks/modsync/internal/domain"
)

var planCmd = &cobra.Command{
	Use:   "plan <pack>",
	Short: "Show what a sync would do without touching anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := setup()
		if err != nil {
			return err
		}
		defer eng.Close()

		pack, err := eng.FindPack(args[0])
		if err != nil {
			return err
		}

		plan, _, err := eng.Plan(cmd.Context(), pack)
		if err != nil {
			return err
		}

		printPlan(plan)
		return nil
	},
}

func printPlan(plan *domain.SyncPlan) {
	if plan.IsEmpty() {
		fmt.Printf("%s is up to date (%d files unchanged).\n", plan.PackName, len(plan.Skipped))
		return
	}

	printChangeGroup("New files", plan.Adds)
	printChangeGroup("Updates", plan.Updates)
	printChangeGroup("Removals", plan.Removals)

	fmt.Printf("\n%d to copy, %d to update, %d to remove, %d unchanged\n",
		len(plan.Adds), len(plan.Updates), len(plan.Removals), len(plan.Skipped))
}

func printChangeGroup(title string, changes []domain.FileChange) {
	if len(changes) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, change := range changes {
		fmt.Printf("  %-50s %s\n", change.RelativePath, change.Reason)
	}
}
