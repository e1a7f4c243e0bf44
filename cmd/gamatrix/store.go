package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	ingestUser    int
	rebuildForce  bool
	restoreNumber int
	removeUserID  int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Re-read one user's Galaxy database into the data store",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := tooling()
		if err != nil {
			return err
		}
		defer t.Logger.Close()

		ctx, cancel := newContext()
		defer cancel()

		user, err := t.Catalog.IngestUser(ctx, ingestUser)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %s: %d games, %d installed\n", user.Username, user.TotalGames, user.InstalledGames)
		return nil
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Build the data store from every configured user's database",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := tooling()
		if err != nil {
			return err
		}
		defer t.Logger.Close()

		ctx, cancel := newContext()
		defer cancel()

		report, err := t.Catalog.Rebuild(ctx, rebuildForce)
		ids := make([]int, 0, len(report.Failed))
		for id := range report.Failed {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			fmt.Printf("User %d skipped: %v\n", id, report.Failed[id])
		}
		if err != nil {
			return err
		}
		fmt.Printf("Data store rebuilt: %d users, %d games\n", report.Users, report.Games)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the data store for integrity problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := tooling()
		if err != nil {
			return err
		}
		defer t.Logger.Close()

		store, issues, err := t.Catalog.Verify()
		if err != nil {
			return err
		}
		fmt.Printf("Data store version %s, last updated %s\n", store.Version, store.LastUpdated)
		fmt.Printf("%d users, %d games\n", len(store.Users), len(store.Games))
		for _, id := range store.UserIDs() {
			u := store.Users[id]
			fmt.Printf("  %d %s: %d games, %d installed (%s)\n", u.UserID, u.Username, u.TotalGames, u.InstalledGames, u.SourceFilename)
		}

		errorCount := 0
		for _, issue := range issues {
			fmt.Printf("[%s] %s\n", issue.Severity, issue.Message)
			if issue.Severity == "error" {
				errorCount++
			}
		}
		if errorCount > 0 {
			return fmt.Errorf("data store has %d integrity errors", errorCount)
		}
		fmt.Println("No integrity errors found")
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Rotate the data store backups now",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := tooling()
		if err != nil {
			return err
		}
		defer t.Logger.Close()

		if !t.Files.Exists() {
			return fmt.Errorf("no data store at %s", t.Files.Path())
		}
		if err := t.Files.RotateBackups(); err != nil {
			return err
		}
		fmt.Printf("Backups present: %v\n", t.Files.Backups())
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the data store with one of its backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := tooling()
		if err != nil {
			return err
		}
		defer t.Logger.Close()

		if err := t.Files.Restore(restoreNumber); err != nil {
			return err
		}
		fmt.Printf("Restored %s from %s\n", t.Files.Path(), t.Files.BackupPath(restoreNumber))
		return nil
	},
}

var removeUserCmd = &cobra.Command{
	Use:   "remove-user",
	Short: "Delete a user and the games only they own",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := tooling()
		if err != nil {
			return err
		}
		defer t.Logger.Close()

		removed, err := t.Catalog.RemoveUser(removeUserID)
		if err != nil {
			return err
		}
		fmt.Printf("Removed user %d and %d games\n", removeUserID, removed)
		return nil
	},
}

func init() {
	ingestCmd.Flags().IntVarP(&ingestUser, "user", "u", 0, "User id to ingest")
	_ = ingestCmd.MarkFlagRequired("user")

	rebuildCmd.Flags().BoolVarP(&rebuildForce, "force", "f", false, "Overwrite an existing data store")

	restoreCmd.Flags().IntVarP(&restoreNumber, "backup-number", "n", 1, "Backup slot to restore")

	removeUserCmd.Flags().IntVarP(&removeUserID, "user", "u", 0, "User id to remove")
	_ = removeUserCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(ingestCmd, rebuildCmd, verifyCmd, backupCmd, restoreCmd, removeUserCmd)
}
