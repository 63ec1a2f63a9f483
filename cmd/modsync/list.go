package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List modpacks found under the instances directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := setup()
		if err != nil {
			return err
		}
		defer eng.Close()

		packs, err := eng.Discover()
		if err != nil {
			return err
		}
		if len(packs) == 0 {
			fmt.Println("No modpacks found.")
			return nil
		}

		for _, pack := range packs {
			line := pack.Name
			if hist := eng.History(pack.Name); hist.LastSynced != nil {
				synced := time.Unix(int64(*hist.LastSynced), 0)
				line += fmt.Sprintf("  (last synced %s)", synced.Format("2006-01-02 15:04"))
			} else {
				line += "  (never synced)"
			}
			fmt.Println(line)
		}
		return nil
	},
}
