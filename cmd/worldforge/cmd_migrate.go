package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"worldforge/internal/store"
)

var (
	migrateRebuildQuality bool
	migrateNoBackup       bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Reconcile the database schema against the canonical registry",
	Long: `Compares every table against the canonical schema and repairs drift:
missing tables are created, missing columns are added with their
registered defaults, and columns whose declared type disagrees with the
registry are rebuilt through a transactional shadow-table copy (legacy
textual quality grades coerce to integers). Running migrate on an
up-to-date database performs zero DDL statements.

--rebuild-quality forces the quality rebuild on every item table even
when the declared types already match.

A file backup is written before anything changes unless --no-backup.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateRebuildQuality, "rebuild-quality", false,
		"force the quality TEXT-to-INTEGER rebuild on every item table")
	migrateCmd.Flags().BoolVar(&migrateNoBackup, "no-backup", false,
		"skip the pre-migration file backup")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	s, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	if !migrateNoBackup {
		backup, err := s.BackupFile()
		if err != nil {
			return err
		}
		if backup != "" {
			logger.Info("backup written", zap.String("path", backup))
		}
	}

	report, err := s.Reconcile()
	if err != nil {
		return err
	}

	if report.DDLCount == 0 {
		fmt.Println("Schema is up to date; no changes made.")
	} else {
		fmt.Printf("Schema reconciled with %d DDL statements.\n", report.DDLCount)
		if len(report.TablesCreated) > 0 {
			fmt.Printf("  tables created: %s\n", strings.Join(report.TablesCreated, ", "))
		}
		if len(report.ColumnsAdded) > 0 {
			fmt.Printf("  columns added:  %s\n", strings.Join(report.ColumnsAdded, ", "))
		}
		if len(report.TypesRebuilt) > 0 {
			fmt.Printf("  types rebuilt:  %s\n", strings.Join(report.TypesRebuilt, ", "))
		}
	}

	if migrateRebuildQuality {
		for _, table := range itemTableNames() {
			if err := s.RebuildColumnType(table, "quality", "INTEGER", store.CoerceQuality); err != nil {
				return fmt.Errorf("quality rebuild of %s failed: %w", table, err)
			}
			fmt.Printf("Rebuilt %s.quality as INTEGER.\n", table)
		}
	}

	if missing, err := s.VerifyWeakRefs(); err != nil {
		return err
	} else if len(missing) > 0 {
		fmt.Printf("Warning: %d dangling shop inventory references remain; run 'worldforge audit --fix'.\n",
			len(missing))
	}
	return nil
}

func itemTableNames() []string {
	names := make([]string, 0, len(store.ItemTables))
	for _, t := range store.ItemTables {
		names = append(names, t)
	}
	return names
}
