// Package audit checks the weak (item_type, item_id) references in
// shop_inventory against the item tables and can repair what it finds.
// The references cannot be foreign keys because the target table is
// chosen by item_type at runtime, so external tools and older
// generators leave dangling rows behind.
package audit

import (
	"context"
	"fmt"
	"strings"

	"worldforge/internal/ident"
	"worldforge/internal/logging"
	"worldforge/internal/metadata"
	"worldforge/internal/store"
)

// Issue kinds.
const (
	KindMissingTable = "missing_table" // target item table does not exist
	KindMissingRow   = "missing_row"   // item_id not present in target table
	KindCaseMismatch = "case_mismatch" // item_type resolves only after upcasing
	KindUnknownType  = "unknown_type"  // item_type maps to no known table
)

// Issue is one finding for one shop_inventory row.
type Issue struct {
	Kind        string
	InventoryID string
	ShopID      string
	ItemType    string
	ItemID      string
	Table       string // resolved target table, possibly recovered from the id prefix
}

// Report is the result of one audit pass.
type Report struct {
	Scanned  int
	Issues   []Issue
	Repaired int
}

// Clean reports whether the audit found nothing wrong.
func (r *Report) Clean() bool {
	return len(r.Issues) == 0
}

// typeExceptions maps item_type values that do not follow the
// lowercase-plus-suffix rule onto their real tables. Clothing rows
// live in armor_items; food and drink rows live in consumable_items.
var typeExceptions = map[string]string{
	"CLOTHING": "armor_items",
	"FOOD":     "consumable_items",
	"DRINK":    "consumable_items",
}

// tableCategory maps item tables back to their metadata category for
// placeholder repair.
var tableCategory = map[string]string{
	"weapon_items":     metadata.CategoryWeapon,
	"armor_items":      metadata.CategoryArmor,
	"implant_items":    metadata.CategoryImplant,
	"hardware_items":   metadata.CategoryHardware,
	"software_items":   metadata.CategorySoftware,
	"consumable_items": metadata.CategoryConsumable,
}

// subtypeColumn is the per-table NOT NULL subtype column a placeholder
// row must fill.
var subtypeColumn = map[string]string{
	"weapon_items":     "weapon_type",
	"armor_items":      "armor_type",
	"implant_items":    "implant_type",
	"hardware_items":   "hardware_type",
	"software_items":   "software_type",
	"consumable_items": "consumable_type",
}

// ResolveTable maps an item_type value to its item table. The second
// return reports whether the raw value needed upcasing to resolve.
func ResolveTable(itemType string) (table string, caseFixed bool, ok bool) {
	canon := strings.ToUpper(strings.TrimSpace(itemType))
	caseFixed = canon != itemType

	if t, found := typeExceptions[canon]; found {
		return t, caseFixed, true
	}
	t := strings.ToLower(canon) + "_items"
	if _, found := tableCategory[t]; found {
		return t, caseFixed, true
	}
	return "", caseFixed, false
}

// Auditor runs consistency checks against one store.
type Auditor struct {
	Store *store.WorldStore
}

// Audit scans every shop_inventory row and reports unresolvable or
// dangling references. It never writes; Repair does that.
func (a *Auditor) Audit(ctx context.Context, limit int) (*Report, error) {
	timer := logging.StartTimer(logging.CategoryAudit, "audit")
	db := a.Store.DB()
	report := &Report{}

	rows, err := db.QueryContext(ctx, `
		SELECT id, shop_id, item_type, item_id FROM shop_inventory ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan shop_inventory: %w", err)
	}
	defer rows.Close()

	type invRow struct {
		id, shopID, itemType, itemID string
	}
	var all []invRow
	for rows.Next() {
		var r invRow
		if err := rows.Scan(&r.id, &r.shopID, &r.itemType, &r.itemID); err != nil {
			return nil, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tableSeen := make(map[string]bool)
	for _, r := range all {
		if limit > 0 && len(report.Issues) >= limit {
			break
		}
		report.Scanned++

		table, caseFixed, ok := ResolveTable(r.itemType)
		issue := Issue{
			InventoryID: r.id, ShopID: r.shopID,
			ItemType: r.itemType, ItemID: r.itemID, Table: table,
		}
		if !ok {
			// The id prefix often survives when the type tag is
			// garbage; a recoverable prefix lets Repair rewrite it.
			if cat := ident.Category(r.itemID); cat != "" {
				if t, found := store.ItemTables[cat]; found {
					issue.Table = t
				}
			}
			issue.Kind = KindUnknownType
			report.Issues = append(report.Issues, issue)
			continue
		}
		if caseFixed {
			mismatch := issue
			mismatch.Kind = KindCaseMismatch
			report.Issues = append(report.Issues, mismatch)
		}

		if _, checked := tableSeen[table]; !checked {
			exists, err := store.TableExists(db, table)
			if err != nil {
				return nil, err
			}
			tableSeen[table] = exists
		}
		if !tableSeen[table] {
			issue.Kind = KindMissingTable
			report.Issues = append(report.Issues, issue)
			continue
		}

		var n int
		err := db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", table), r.itemID).Scan(&n)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve item %s in %s: %w", r.itemID, table, err)
		}
		if n == 0 {
			issue.Kind = KindMissingRow
			report.Issues = append(report.Issues, issue)
		}
	}

	timer.StopWithInfo("%d rows scanned, %d issues", report.Scanned, len(report.Issues))
	return report, nil
}

// Repair fixes what Audit found: missing tables are created from the
// registry, missing rows gain a synthetic placeholder item, and
// case-mismatched item_type values are rewritten in canonical upper
// case. Unknown type tags are rewritten when the item id prefix
// identifies the table, otherwise left for a human.
func (a *Auditor) Repair(ctx context.Context, report *Report) (int, error) {
	db := a.Store.DB()
	repaired := 0

	for _, issue := range report.Issues {
		switch issue.Kind {
		case KindMissingTable:
			if err := a.Store.EnsureTable(issue.Table); err != nil {
				return repaired, err
			}
			if err := a.insertPlaceholder(ctx, issue); err != nil {
				return repaired, err
			}
			repaired++

		case KindMissingRow:
			if err := a.insertPlaceholder(ctx, issue); err != nil {
				return repaired, err
			}
			repaired++

		case KindCaseMismatch:
			canon := strings.ToUpper(strings.TrimSpace(issue.ItemType))
			if _, err := db.ExecContext(ctx,
				"UPDATE shop_inventory SET item_type = ? WHERE id = ?",
				canon, issue.InventoryID); err != nil {
				return repaired, fmt.Errorf("failed to fix item_type case: %w", err)
			}
			repaired++

		case KindUnknownType:
			if issue.Table == "" {
				logging.Audit("Leaving unknown item_type %q on inventory row %s",
					issue.ItemType, issue.InventoryID)
				continue
			}
			canon := strings.ToUpper(tableCategory[issue.Table])
			if _, err := db.ExecContext(ctx,
				"UPDATE shop_inventory SET item_type = ? WHERE id = ?",
				canon, issue.InventoryID); err != nil {
				return repaired, fmt.Errorf("failed to rewrite item_type: %w", err)
			}
			repaired++
		}
	}

	report.Repaired = repaired
	logging.Audit("Repaired %d of %d issues", repaired, len(report.Issues))
	return repaired, nil
}

// insertPlaceholder writes a recognizable synthetic item under the
// dangling id so the reference resolves again. The world is taken from
// the owning shop.
func (a *Auditor) insertPlaceholder(ctx context.Context, issue Issue) error {
	db := a.Store.DB()

	var worldID string
	err := db.QueryRowContext(ctx,
		"SELECT world_id FROM shops WHERE id = ?", issue.ShopID).Scan(&worldID)
	if err != nil {
		return fmt.Errorf("failed to find shop %s for placeholder: %w", issue.ShopID, err)
	}

	category := tableCategory[issue.Table]
	standardized, err := metadata.Standardize(category, nil)
	if err != nil {
		return err
	}
	md := metadata.ToJSON(standardized)
	id := issue.ItemID
	if id == "" {
		id = ident.New(category)
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		INSERT OR IGNORE INTO %s (id, world_id, name, description, %s,
			rarity, quality, price, required_level, is_legal, metadata)
		VALUES (?, ?, ?, ?, ?, 'COMMON', 1, 100, 1, 1, ?)`,
		issue.Table, subtypeColumn[issue.Table]),
		id, worldID,
		"Recovered "+strings.ToLower(category)+" item",
		"Placeholder restored by consistency repair",
		"UNKNOWN", md)
	if err != nil {
		return fmt.Errorf("failed to insert placeholder into %s: %w", issue.Table, err)
	}
	return nil
}
