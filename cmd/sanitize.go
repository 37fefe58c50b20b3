package main

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"davtidy/pkg/planner"
	"davtidy/pkg/usecase"
)

var (
	safeMode        bool
	overwrite       bool
	replaceWith     string
	journalFlag     string
	skipOnListError bool
)

func buildSanitizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sanitize [remote-directory]",
		Short: "Rename non-compliant files and folders under a remote directory",
		Long: `Walks the remote directory tree and renames every file or folder whose
name is not Windows-compatible:
  - Reserved characters (< > : " / \ | ? *) and control characters are
    replaced with the substitute character
  - Trailing dots and spaces are stripped
  - Reserved device names (CON, PRN, AUX, NUL, COM1-9, LPT1-9) get the
    substitute appended
  - Names longer than 255 characters are truncated

A folder is renamed before its contents are listed, so children are
always found under their current path. Name conflicts within a directory
are resolved by appending _1, _2, ... unless --overwrite is set.

Examples:
  davtidy sanitize --safe-mode /Documents     # Preview changes
  davtidy sanitize /Documents                 # Apply changes
  davtidy sanitize -r - /Documents            # Replace with '-' instead of '_'

Before: "My:Docs/report?.pdf"
After:  "My_Docs/report_.pdf"`,
		Args: cobra.ExactArgs(1),
		RunE: runSanitize,
	}

	cmd.Flags().BoolVarP(&safeMode, "safe-mode", "s", false, "Log intended renames without performing any")
	cmd.Flags().BoolVarP(&overwrite, "overwrite", "o", false, "Overwrite existing files on conflict (destroys the loser)")
	cmd.Flags().StringVarP(&replaceWith, "replace-with", "r", "", "Replacement for invalid characters (default from config, usually '_')")
	cmd.Flags().StringVar(&journalFlag, "journal", "", "Record applied renames to this journal file (enables undo)")
	cmd.Flags().BoolVar(&skipOnListError, "skip-unlistable", false, "Skip subtrees that fail to list instead of aborting")

	return cmd
}

func runSanitize(cmd *cobra.Command, args []string) error {
	logger, closer, err := buildLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	service, cfg, err := buildService(logger)
	if err != nil {
		return err
	}

	substitute := cfg.Substitute()
	if replaceWith != "" {
		if utf8.RuneCountInString(replaceWith) != 1 {
			return fmt.Errorf("--replace-with must be exactly one character, got %q", replaceWith)
		}
		substitute, _ = utf8.DecodeRuneInString(replaceWith)
	}

	journalPath := journalFlag
	if journalPath == "" {
		journalPath = cfg.Journal
	}

	printSafeModeBanner(safeMode)
	fmt.Printf("Target directory: %s\n\n", args[0])

	execution, err := service.RunSanitize(cmd.Context(), usecase.SanitizeRequest{
		Root:            args[0],
		SafeMode:        safeMode,
		Overwrite:       overwrite,
		Substitute:      substitute,
		JournalPath:     journalPath,
		SkipOnListError: skipOnListError,
	})
	if err != nil {
		return err
	}

	printDecisions(execution.Result.Decisions)

	renamedLabel := "Renamed:"
	if safeMode {
		renamedLabel = "Planned:"
	}
	printSummary(
		fmt.Sprintf("Total entries:    %d", execution.Result.TotalEntries),
		fmt.Sprintf("%s          %d", renamedLabel, execution.Result.RenamedCount),
		fmt.Sprintf("Already OK:       %d", execution.Result.CompliantCount),
		fmt.Sprintf("Conflicts:        %d", execution.Result.ConflictCount),
		fmt.Sprintf("Errors:           %d", execution.Result.ErrorCount),
		fmt.Sprintf("Duration:         %s", execution.Duration.Round(time.Millisecond)),
	)
	if execution.JournalPath != "" {
		fmt.Printf("Journal:          %s\n", execution.JournalPath)
	}
	printSafeModeHint(safeMode)

	return nil
}

func printDecisions(decisions []planner.Decision) {
	if !verbose {
		return
	}

	for _, d := range decisions {
		switch {
		case d.Outcome == planner.OutcomeFailed:
			fmt.Printf("ERROR:  %s -> %s: %v\n", d.OriginalPath, d.NewPath, d.Err)
		case d.Action == planner.ActionSkip:
			fmt.Printf("OK:     %s\n", d.OriginalPath)
		case d.Outcome == planner.OutcomeSkipped:
			fmt.Printf("PLAN:   %s\n", d.OriginalPath)
			fmt.Printf("    TO: %s\n", d.NewPath)
		default:
			fmt.Printf("RENAME: %s\n", d.OriginalPath)
			fmt.Printf("    TO: %s\n", d.NewPath)
		}
	}
	fmt.Println()
}
