package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"worldforge/internal/audit"
	"worldforge/internal/store"
)

var (
	auditFix   bool
	auditLimit int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check shop inventory references and optionally repair them",
	Long: `Scans every shop inventory row and verifies that its (item_type,
item_id) pair resolves to a real item. Reports rows whose item table is
missing, whose item no longer exists, whose item_type needs upcasing, and
item types that map to no known table.

With --fix, missing tables are created, dangling ids gain a placeholder
item, and case mismatches are rewritten. Unknown types are only reported.`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().BoolVar(&auditFix, "fix", false, "repair the issues found")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 0, "stop after this many issues (0 = no limit)")
}

func runAudit(cmd *cobra.Command, args []string) error {
	s, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	a := &audit.Auditor{Store: s}
	report, err := a.Audit(cmd.Context(), auditLimit)
	if err != nil {
		return err
	}

	if report.Clean() {
		fmt.Printf("Audit clean: %d inventory rows verified.\n", report.Scanned)
		return nil
	}

	fmt.Printf("Audit found %d issues in %d rows:\n", len(report.Issues), report.Scanned)
	for _, issue := range report.Issues {
		fmt.Printf("  [%s] inventory %s: item_type=%q item_id=%s\n",
			issue.Kind, issue.InventoryID, issue.ItemType, issue.ItemID)
	}

	if !auditFix {
		fmt.Println("Run again with --fix to repair.")
		return nil
	}

	repaired, err := a.Repair(cmd.Context(), report)
	if err != nil {
		return err
	}
	fmt.Printf("Repaired %d of %d issues.\n", repaired, len(report.Issues))
	return nil
}
