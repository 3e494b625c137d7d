package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedLegacyDB creates a database the way an older tool would have
// left it: a weapon_items table missing several columns and carrying
// quality as TEXT.
func seedLegacyDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE worlds (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE weapon_items (
			id TEXT PRIMARY KEY,
			world_id TEXT NOT NULL,
			name TEXT NOT NULL,
			weapon_type TEXT NOT NULL,
			damage INTEGER DEFAULT 10,
			quality TEXT
		);
		INSERT INTO worlds (id, name) VALUES ('world_1', 'Legacy');
		INSERT INTO weapon_items (id, world_id, name, weapon_type, damage, quality) VALUES
			('wpn_1', 'world_1', 'Rustblade', 'MELEE', 12, 'Excellent'),
			('wpn_2', 'world_1', 'Spitfire', 'RANGED', 9, '3'),
			('wpn_3', 'world_1', 'Mystery', 'EXOTIC', 20, 'weird');`)
	require.NoError(t, err)
	return path
}

func TestReconcileAddsMissingColumns(t *testing.T) {
	path := seedLegacyDB(t)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	report, err := s.Reconcile()
	require.NoError(t, err)
	assert.NotZero(t, report.DDLCount)
	assert.Contains(t, report.ColumnsAdded, "weapon_items.rarity")
	assert.Contains(t, report.ColumnsAdded, "weapon_items.is_legal")
	assert.Contains(t, report.ColumnsAdded, "worlds.complexity")

	t.Run("existing data survives", func(t *testing.T) {
		var damage int
		err := s.DB().QueryRow(
			"SELECT damage FROM weapon_items WHERE id = 'wpn_1'").Scan(&damage)
		require.NoError(t, err)
		assert.Equal(t, 12, damage)
	})

	t.Run("new columns carry defaults", func(t *testing.T) {
		var rarity string
		var legal int
		err := s.DB().QueryRow(
			"SELECT rarity, is_legal FROM weapon_items WHERE id = 'wpn_1'").Scan(&rarity, &legal)
		require.NoError(t, err)
		assert.Equal(t, "COMMON", rarity)
		assert.Equal(t, 1, legal)
	})

	t.Run("second run performs zero DDL", func(t *testing.T) {
		report, err := s.Reconcile()
		require.NoError(t, err)
		assert.Zero(t, report.DDLCount)
		assert.Empty(t, report.TablesCreated)
		assert.Empty(t, report.ColumnsAdded)
	})
}

func TestReconcileRebuildsDriftedTypes(t *testing.T) {
	path := seedLegacyDB(t)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	report, err := s.Reconcile()
	require.NoError(t, err)
	assert.Contains(t, report.TypesRebuilt, "weapon_items.quality")

	t.Run("declared type matches the registry", func(t *testing.T) {
		cols, err := TableColumns(s.DB(), "weapon_items")
		require.NoError(t, err)
		for _, c := range cols {
			if c.Name == "quality" {
				assert.Equal(t, "INTEGER", c.Type)
				return
			}
		}
		t.Fatal("quality column missing after reconcile")
	})

	t.Run("legacy grades are coerced", func(t *testing.T) {
		want := map[string]int{"wpn_1": 4, "wpn_2": 3, "wpn_3": 0}
		for id, q := range want {
			var got int
			err := s.DB().QueryRow(
				"SELECT quality FROM weapon_items WHERE id = ?", id).Scan(&got)
			require.NoError(t, err)
			assert.Equal(t, q, got, "quality of %s", id)
		}
	})

	t.Run("second run rebuilds nothing", func(t *testing.T) {
		report, err := s.Reconcile()
		require.NoError(t, err)
		assert.Empty(t, report.TypesRebuilt)
		assert.Zero(t, report.DDLCount)
	})
}

func TestReconcileOnFreshDatabase(t *testing.T) {
	s := newTestStore(t)

	report, err := s.Reconcile()
	require.NoError(t, err)
	assert.Zero(t, report.DDLCount)
}

func TestRebuildColumnType(t *testing.T) {
	path := seedLegacyDB(t)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Reconcile()
	require.NoError(t, err)

	require.NoError(t, s.RebuildColumnType("weapon_items", "quality", "INTEGER", CoerceQuality))

	t.Run("declared type is rebuilt", func(t *testing.T) {
		cols, err := TableColumns(s.DB(), "weapon_items")
		require.NoError(t, err)
		for _, c := range cols {
			if c.Name == "quality" {
				assert.Equal(t, "INTEGER", c.Type)
				return
			}
		}
		t.Fatal("quality column missing after rebuild")
	})

	t.Run("values are coerced", func(t *testing.T) {
		want := map[string]int{"wpn_1": 4, "wpn_2": 3, "wpn_3": 0}
		for id, q := range want {
			var got int
			err := s.DB().QueryRow(
				"SELECT quality FROM weapon_items WHERE id = ?", id).Scan(&got)
			require.NoError(t, err)
			assert.Equal(t, q, got, "quality of %s", id)
		}
	})

	t.Run("row count unchanged", func(t *testing.T) {
		var n int
		require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM weapon_items").Scan(&n))
		assert.Equal(t, 3, n)
	})

	t.Run("unknown column errors", func(t *testing.T) {
		err := s.RebuildColumnType("weapon_items", "no_such", "INTEGER", CoerceQuality)
		assert.Error(t, err)
	})
}

func TestCoerceQuality(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{"textual grade", "Excellent", 4},
		{"lowercase grade", "poor", 1},
		{"padded grade", "  Pristine ", 5},
		{"numeric string", "3", 3},
		{"unrecognized text", "weird", 0},
		{"nil", nil, 0},
		{"int64 passthrough", int64(2), 2},
		{"float", float64(4.0), 4},
		{"bytes", []byte("good"), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceQuality(tt.in))
		})
	}
}

func TestVerifyWeakRefs(t *testing.T) {
	s := newTestStore(t)

	_, err := s.DB().Exec(`
		INSERT INTO worlds (id, name) VALUES ('world_1', 'W');
		INSERT INTO shops (id, world_id, name, shop_type) VALUES ('shop_1', 'world_1', 'Pawn', 'GENERAL');
		INSERT INTO weapon_items (id, world_id, name, weapon_type) VALUES ('wpn_1', 'world_1', 'Blade', 'MELEE');
		INSERT INTO shop_inventory (id, shop_id, item_type, item_id) VALUES
			('inv_ok',   'shop_1', 'WEAPON', 'wpn_1'),
			('inv_gone', 'shop_1', 'WEAPON', 'wpn_missing');`)
	require.NoError(t, err)

	missing, err := s.VerifyWeakRefs()
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "inv_gone", missing[0].RowID)
	assert.Equal(t, "weapon_items", missing[0].RefTable)
	assert.Equal(t, "wpn_missing", missing[0].RefID)
}

func TestBackupFile(t *testing.T) {
	path := seedLegacyDB(t)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	backup, err := s.BackupFile()
	require.NoError(t, err)
	assert.FileExists(t, backup)
}
