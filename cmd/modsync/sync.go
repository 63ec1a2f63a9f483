package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voidworks/modsync/internal/confirm"
	"github.com/voidworks/modsync/internal/core/executor"
	"github.com/voidworks/modsync/internal/engine"
	"github.com/voidworks/modsync/internal/progress"
)

var (
	syncYes      bool
	syncNoBackup bool
)

var syncCmd = &cobra.Command{
	Use:   "sync <pack>",
	Short: "Sync a modpack into the game installation",
	Long: `Sync builds a plan for the named modpack and applies it. New files
are copied, changed files are updated, and files removed from the pack
are deleted from the installation. Updates and removals prompt per file
unless auto-confirmation is enabled in the config or with --yes.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "apply every change without prompting")
	syncCmd.Flags().BoolVar(&syncNoBackup, "no-backup", false, "skip pre-overwrite backups")
}

func runSync(cmd *cobra.Command, args []string) error {
	eng, cfg, err := setup()
	if err != nil {
		return err
	}
	defer eng.Close()

	if syncYes {
		cfg.AutoConfirmNewFiles = true
		cfg.AutoConfirmUpdates = true
		cfg.AutoConfirmRemovals = true
	}
	if syncNoBackup {
		cfg.CreateBackups = false
	}

	pack, err := eng.FindPack(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	stdin := bufio.NewReader(os.Stdin)

	// Preview first so the user sees the whole plan before any prompt.
	// The authoritative plan is rebuilt under the pack lock inside Sync.
	preview, _, err := eng.Plan(ctx, pack)
	if err != nil {
		return err
	}
	printPlan(preview)
	if preview.IsEmpty() {
		return nil
	}

	if len(preview.Adds) > 0 && !cfg.AutoConfirmNewFiles {
		question := fmt.Sprintf("Copy %d new file(s)?", len(preview.Adds))
		if !promptYesNo(stdin, question) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Per-file prompts arrive from the sync goroutine over the bridge
	// and are answered here, on the goroutine that owns the terminal.
	bridge := confirm.NewBridge(1)
	reporter := progress.NewCallbackReporter(func(message string, current, total int) {
		fmt.Printf("[%d/%d] %s\n", current, total, message)
	})

	hooks := engine.Hooks{
		ConfirmUpdate:  bridge.Func(ctx, confirm.KindUpdate),
		ConfirmRemoval: bridge.Func(ctx, confirm.KindRemoval),
		Reporter:       reporter,
	}

	type outcome struct {
		result *executor.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := eng.Sync(ctx, pack, hooks)
		done <- outcome{result, err}
	}()

	for {
		select {
		case req := <-bridge.Requests():
			req.Answer(promptYesNo(stdin, describeRequest(req)))
		case o := <-done:
			if o.err != nil {
				return o.err
			}
			printResult(o.result)
			return nil
		}
	}
}

func promptYesNo(reader *bufio.Reader, question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func describeRequest(req *confirm.Request) string {
	switch req.Kind {
	case confirm.KindRemoval:
		return fmt.Sprintf("Delete %s (%s)?", req.Change.RelativePath, req.Change.Reason)
	default:
		return fmt.Sprintf("Overwrite %s (%s)?", req.Change.RelativePath, req.Change.Reason)
	}
}

func printResult(result *executor.Result) {
	fmt.Printf("\nDone: %d copied, %d updated, %d removed, %d skipped",
		result.Copied, result.Updated, result.Removed, result.Skipped)
	if result.Failed > 0 {
		fmt.Printf(", %d failed", result.Failed)
	}
	fmt.Println()
}
