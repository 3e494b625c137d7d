package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldforge/internal/store"
)

func seededAuditor(t *testing.T) (*Auditor, *store.WorldStore) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.DB().Exec(`
		INSERT INTO worlds (id, name) VALUES ('world_1', 'Audit Town');
		INSERT INTO shops (id, world_id, name, shop_type) VALUES
			('shop_1', 'world_1', 'Pawn', 'GENERAL');
		INSERT INTO weapon_items (id, world_id, name, weapon_type) VALUES
			('wpn_1', 'world_1', 'Blade', 'MELEE');
		INSERT INTO armor_items (id, world_id, name, armor_type) VALUES
			('arm_1', 'world_1', 'Jacket', 'BODY');`)
	require.NoError(t, err)

	return &Auditor{Store: s}, s
}

func TestResolveTable(t *testing.T) {
	tests := []struct {
		itemType  string
		table     string
		caseFixed bool
		ok        bool
	}{
		{"WEAPON", "weapon_items", false, true},
		{"weapon", "weapon_items", true, true},
		{"Armor", "armor_items", true, true},
		{"CLOTHING", "armor_items", false, true},
		{"FOOD", "consumable_items", false, true},
		{"DRINK", "consumable_items", false, true},
		{"GADGET", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.itemType, func(t *testing.T) {
			table, caseFixed, ok := ResolveTable(tt.itemType)
			assert.Equal(t, tt.table, table)
			assert.Equal(t, tt.caseFixed, caseFixed)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestAuditCleanDatabase(t *testing.T) {
	a, s := seededAuditor(t)

	_, err := s.DB().Exec(`
		INSERT INTO shop_inventory (id, shop_id, item_type, item_id) VALUES
			('inv_1', 'shop_1', 'WEAPON', 'wpn_1'),
			('inv_2', 'shop_1', 'CLOTHING', 'arm_1')`)
	require.NoError(t, err)

	report, err := a.Audit(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.True(t, report.Clean())
}

func TestAuditFindsIssues(t *testing.T) {
	a, s := seededAuditor(t)

	_, err := s.DB().Exec(`
		INSERT INTO shop_inventory (id, shop_id, item_type, item_id) VALUES
			('inv_ok',      'shop_1', 'WEAPON',  'wpn_1'),
			('inv_dangling','shop_1', 'WEAPON',  'wpn_gone'),
			('inv_case',    'shop_1', 'weapon',  'wpn_1'),
			('inv_unknown', 'shop_1', 'GADGET',  'gdt_1')`)
	require.NoError(t, err)

	report, err := a.Audit(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Scanned)

	kinds := make(map[string]int)
	for _, issue := range report.Issues {
		kinds[issue.Kind]++
	}
	assert.Equal(t, 1, kinds[KindMissingRow])
	assert.Equal(t, 1, kinds[KindCaseMismatch])
	assert.Equal(t, 1, kinds[KindUnknownType])

	t.Run("limit caps findings", func(t *testing.T) {
		report, err := a.Audit(context.Background(), 1)
		require.NoError(t, err)
		assert.Len(t, report.Issues, 1)
	})
}

func TestRepair(t *testing.T) {
	a, s := seededAuditor(t)
	ctx := context.Background()

	_, err := s.DB().Exec(`
		INSERT INTO shop_inventory (id, shop_id, item_type, item_id) VALUES
			('inv_dangling', 'shop_1', 'WEAPON', 'wpn_gone'),
			('inv_case',     'shop_1', 'armor',  'arm_1'),
			('inv_unknown',  'shop_1', 'GADGET', 'gdt_1')`)
	require.NoError(t, err)

	report, err := a.Audit(ctx, 0)
	require.NoError(t, err)
	require.False(t, report.Clean())

	repaired, err := a.Repair(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, 2, repaired)

	t.Run("placeholder resolves the dangling id", func(t *testing.T) {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM weapon_items WHERE id = 'wpn_gone'").Scan(&name)
		require.NoError(t, err)
		assert.Contains(t, name, "Recovered")
	})

	t.Run("item_type case is canonical", func(t *testing.T) {
		var itemType string
		err := s.DB().QueryRow(
			"SELECT item_type FROM shop_inventory WHERE id = 'inv_case'").Scan(&itemType)
		require.NoError(t, err)
		assert.Equal(t, "ARMOR", itemType)
	})

	t.Run("second audit only reports the unknown type", func(t *testing.T) {
		report, err := a.Audit(ctx, 0)
		require.NoError(t, err)
		require.Len(t, report.Issues, 1)
		assert.Equal(t, KindUnknownType, report.Issues[0].Kind)
	})
}

func TestRepairRecoversTypeFromIDPrefix(t *testing.T) {
	a, s := seededAuditor(t)
	ctx := context.Background()

	danglingID := "weapon_0b1f8a6e-0d3c-4f4a-9a1e-7f2d35c4e9aa"
	_, err := s.DB().Exec(`
		INSERT INTO shop_inventory (id, shop_id, item_type, item_id) VALUES
			('inv_1', 'shop_1', 'WPN??', ?)`, danglingID)
	require.NoError(t, err)

	report, err := a.Audit(ctx, 0)
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, KindUnknownType, report.Issues[0].Kind)
	assert.Equal(t, "weapon_items", report.Issues[0].Table)

	repaired, err := a.Repair(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	var itemType string
	err = s.DB().QueryRow(
		"SELECT item_type FROM shop_inventory WHERE id = 'inv_1'").Scan(&itemType)
	require.NoError(t, err)
	assert.Equal(t, "WEAPON", itemType)

	// The rewritten tag now resolves; the dangling id surfaces next pass.
	report, err = a.Audit(ctx, 0)
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, KindMissingRow, report.Issues[0].Kind)
}

func TestRepairMissingTable(t *testing.T) {
	a, s := seededAuditor(t)
	ctx := context.Background()

	_, err := s.DB().Exec(`
		DROP TABLE software_items;
		INSERT INTO shop_inventory (id, shop_id, item_type, item_id) VALUES
			('inv_1', 'shop_1', 'SOFTWARE', 'sw_1')`)
	require.NoError(t, err)

	report, err := a.Audit(ctx, 0)
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, KindMissingTable, report.Issues[0].Kind)

	_, err = a.Repair(ctx, report)
	require.NoError(t, err)

	exists, err := store.TableExists(s.DB(), "software_items")
	require.NoError(t, err)
	assert.True(t, exists)

	report, err = a.Audit(ctx, 0)
	require.NoError(t, err)
	assert.True(t, report.Clean())
}
