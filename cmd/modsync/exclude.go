package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var excludeCmd = &cobra.Command{
	Use:   "exclude",
	Short: "Manage per-pack exclusion patterns",
}

var excludeAddCmd = &cobra.Command{
	Use:   "add <pack> <relative-path>",
	Short: "Exclude a file from syncing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := setup()
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.AddExclusion(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Excluded %s from %s\n", args[1], args[0])
		return nil
	},
}

var excludeRemoveCmd = &cobra.Command{
	Use:   "remove <pack> <relative-path>",
	Short: "Stop excluding a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := setup()
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.RemoveExclusion(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("No longer excluding %s from %s\n", args[1], args[0])
		return nil
	},
}

var excludeListCmd = &cobra.Command{
	Use:   "list <pack>",
	Short: "List the pack's exclusions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := setup()
		if err != nil {
			return err
		}
		defer eng.Close()

		hist := eng.History(args[0])
		if len(hist.Exclusions) == 0 {
			fmt.Printf("No exclusions for %s.\n", args[0])
			return nil
		}
		for _, pattern := range hist.Exclusions {
			fmt.Println(pattern)
		}
		return nil
	},
}

func init() {
	excludeCmd.AddCommand(excludeAddCmd)
	excludeCmd.AddCommand(excludeRemoveCmd)
	excludeCmd.AddCommand(excludeListCmd)
}
