package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *WorldStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesAllTables(t *testing.T) {
	s := newTestStore(t)

	for _, table := range Tables() {
		exists, err := TableExists(s.DB(), table)
		require.NoError(t, err)
		assert.True(t, exists, "table %s should exist after Open", table)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.db")

	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.CreateWorld(context.Background(), &World{Name: "Neo Shanghai"})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	worlds, err := s2.ListWorlds(context.Background())
	require.NoError(t, err)
	assert.Len(t, worlds, 1)
}

func TestWorldCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		id, err := s.CreateWorld(ctx, &World{
			Name:        "Night Harbor",
			Description: "Coastal sprawl",
			Author:      "forge",
			Tags:        []string{"cyberpunk", "coastal"},
			Complexity:  4,
		})
		require.NoError(t, err)
		assert.Contains(t, id, "world_")

		w, err := s.GetWorld(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Night Harbor", w.Name)
		assert.Equal(t, []string{"cyberpunk", "coastal"}, w.Tags)
		assert.Equal(t, 4, w.Complexity)
		assert.False(t, w.CreatedAt.IsZero())
	})

	t.Run("name is required", func(t *testing.T) {
		_, err := s.CreateWorld(ctx, &World{})
		assert.Error(t, err)
	})

	t.Run("get missing world", func(t *testing.T) {
		_, err := s.GetWorld(ctx, "world_nope")
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("delete missing world", func(t *testing.T) {
		err := s.DeleteWorld(ctx, "world_nope")
		assert.ErrorContains(t, err, "not found")
	})
}

func TestDeleteWorldCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateWorld(ctx, &World{Name: "Doomed"})
	require.NoError(t, err)

	_, err = s.DB().Exec(`
		INSERT INTO locations (id, world_id, name) VALUES ('loc_1', ?, 'Downtown')`, id)
	require.NoError(t, err)
	_, err = s.DB().Exec(`
		INSERT INTO shops (id, world_id, name, shop_type) VALUES ('shop_1', ?, 'Pawn', 'GENERAL')`, id)
	require.NoError(t, err)
	_, err = s.DB().Exec(`
		INSERT INTO shop_inventory (id, shop_id, item_type, item_id)
		VALUES ('inv_1', 'shop_1', 'WEAPON', 'item_x')`)
	require.NoError(t, err)

	require.NoError(t, s.DeleteWorld(ctx, id))

	for _, table := range []string{"locations", "shops", "shop_inventory"} {
		var n int
		require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Zero(t, n, "%s should cascade on world delete", table)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateWorld(ctx, &World{Name: "Stat City"})
	require.NoError(t, err)

	_, err = s.DB().Exec(`
		INSERT INTO locations (id, world_id, name) VALUES ('loc_1', ?, 'A'), ('loc_2', ?, 'B')`,
		id, id)
	require.NoError(t, err)
	_, err = s.DB().Exec(`
		INSERT INTO shops (id, world_id, name, shop_type) VALUES ('shop_1', ?, 'Pawn', 'GENERAL')`, id)
	require.NoError(t, err)
	_, err = s.DB().Exec(`
		INSERT INTO shop_inventory (id, shop_id, item_type, item_id)
		VALUES ('inv_1', 'shop_1', 'WEAPON', 'item_x')`)
	require.NoError(t, err)

	stats, err := s.Stats(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, stats["locations"])
	assert.Equal(t, 1, stats["shops"])
	assert.Equal(t, 1, stats["shop_inventory"])
	assert.Equal(t, 0, stats["characters"])
}

func TestColumnHelpers(t *testing.T) {
	s := newTestStore(t)

	ok, err := ColumnExists(s.DB(), "characters", "resistance_emp")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ColumnExists(s.DB(), "characters", "no_such_column")
	require.NoError(t, err)
	assert.False(t, ok)

	cols, err := TableColumns(s.DB(), "worlds")
	require.NoError(t, err)
	require.NotEmpty(t, cols)
	assert.Equal(t, "id", cols[0].Name)
	assert.True(t, cols[0].PK)
}

func TestRegistryCreateSQL(t *testing.T) {
	spec, ok := Spec("shop_inventory")
	require.True(t, ok)

	sql := spec.CreateSQL()
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS shop_inventory")
	assert.Contains(t, sql, "FOREIGN KEY (shop_id) REFERENCES shops (id) ON DELETE CASCADE")

	_, ok = Spec("no_such_table")
	assert.False(t, ok)
}
