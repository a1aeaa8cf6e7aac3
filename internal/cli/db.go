/*
PURPOSE:
  Defines the 'db' subcommand group.
  Manual database backups and a listing of existing backups.

REQUIREMENTS:
  User-specified:
  - Backups of the results database.

  Implementation-discovered:
  - A manual backup must not race a running sweep, so it takes the lock.

ARCHITECTURE INTEGRATION:
  - Calls: internal/store (Backup, ListBackups)

ERROR HANDLING:
  - Returns error if the lock is held or the database is missing.

IMPLEMENTATION RULES:
  - Subcommands registered in init().

USAGE:
  codec-bench db backup
  codec-bench db backups

RELATED FILES:
  - internal/store/backup.go
*/

package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/daryltucker/codec-bench/internal/output"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the results database",
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the database into the backup directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := openStore()
		if err := st.Lock(); err != nil {
			return err
		}
		defer st.Unlock()

		path, err := st.Backup()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List database backups, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		backups, err := openStore().ListBackups()
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			output.Logger.Info("No backups found", "dir", cfg.BackupDir)
			return nil
		}

		rows := make([][]string, 0, len(backups))
		for _, b := range backups {
			rows = append(rows, []string{
				b.Path,
				humanize.Bytes(uint64(b.Size)),
				b.ModTime.Format("2006-01-02 15:04:05"),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), output.RenderTable(
			[]string{"Backup", "Size", "Modified"},
			rows,
			[]output.Alignment{output.AlignLeft, output.AlignRight, output.AlignLeft},
		))
		return nil
	},
}

func init() {
	dbCmd.AddCommand(backupCmd, backupsCmd)
	rootCmd.AddCommand(dbCmd)
}
