package main

import (
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	logFile    string
	configPath string
)

func buildRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "davtidy",
		Short: "Make remote file and folder names Windows-compatible over WebDAV",
		Long: `davtidy renames files and folders on a WebDAV file host (for example
a Nextcloud instance) so their names comply with Windows naming
restrictions. Renames go through WebDAV, so the server stays aware of
every change and no rescan is needed.

Commands:
  init      Store the WebDAV password in the OS keyring and test the connection
  sanitize  Walk a remote directory tree and rename non-compliant entries
  undo      Revert the renames recorded in a journal file

Examples:
  # One-time setup (asks for the password interactively)
  davtidy init

  # Preview what sanitize would do (recommended first step)
  davtidy sanitize --safe-mode /Documents

  # Actually rename, keeping a journal for undo
  davtidy sanitize --journal run.journal /Documents

  # Rename and overwrite colliding targets (USE WITH CAUTION)
  davtidy sanitize --overwrite /Documents

  # Revert a run
  davtidy undo run.journal

Safety:
  Conflicts are resolved by appending _1, _2, ... unless --overwrite is
  set. Safe mode logs every intended rename and performs none of them.
  A failed rename never aborts the run; it is logged and the walk
  continues.`,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVarP(&logFile, "logfile", "l", "", "Also append log lines to this file")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: user config dir)")

	return cmd
}
