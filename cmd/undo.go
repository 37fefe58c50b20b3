package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"davtidy/pkg/usecase"
)

var undoSafeMode bool

func buildUndoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo [journal-file]",
		Short: "Revert the renames recorded in a journal file",
		Long: `Replays a sanitize journal in reverse, moving every confirmed rename
back to its original name. Children of a renamed folder are restored
before the folder itself, so every move targets a path that exists.

Only confirmed renames are reverted; intent entries without a
confirmation (from an interrupted run) are ignored because the move may
never have happened.

Examples:
  davtidy undo run.journal                # Revert a run
  davtidy undo --safe-mode run.journal    # Preview the reverts`,
		Args: cobra.ExactArgs(1),
		RunE: runUndo,
	}

	cmd.Flags().BoolVarP(&undoSafeMode, "safe-mode", "s", false, "Log intended reverts without performing any")

	return cmd
}

func runUndo(cmd *cobra.Command, args []string) error {
	logger, closer, err := buildLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	service, _, err := buildService(logger)
	if err != nil {
		return err
	}

	printSafeModeBanner(undoSafeMode)

	execution, err := service.RunUndo(cmd.Context(), usecase.UndoRequest{
		JournalPath: args[0],
		SafeMode:    undoSafeMode,
	})
	if err != nil {
		return err
	}

	printSummary(
		fmt.Sprintf("Journaled renames: %d", execution.Total),
		fmt.Sprintf("Reverted:          %d", execution.Reverted),
		fmt.Sprintf("Errors:            %d", execution.Failed),
		fmt.Sprintf("Duration:          %s", execution.Duration.Round(time.Millisecond)),
	)
	printSafeModeHint(undoSafeMode)

	return nil
}
