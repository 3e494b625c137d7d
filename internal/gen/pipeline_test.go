package gen

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldforge/internal/audit"
	"worldforge/internal/config"
	"worldforge/internal/store"
)

func testPipeline(t *testing.T, seed int64) (*Pipeline, *store.WorldStore) {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cfg := config.DefaultConfig()
	cfg.Generation.NumCities = 3
	cfg.Generation.DistrictsPerCity = 2
	cfg.Generation.BuildingsPerLocation = 2
	cfg.Generation.NumCharacters = 10
	cfg.Generation.NumDevices = 8
	cfg.Generation.ItemsPerCategory = 20
	cfg.Generation.NumShops = 5

	worldID, err := s.CreateWorld(context.Background(), &store.World{Name: "Test World"})
	require.NoError(t, err)

	return &Pipeline{Store: s, Config: cfg, Seed: seed, WorldID: worldID}, s
}

func TestPipelineRun(t *testing.T) {
	p, s := testPipeline(t, 42)
	ctx := context.Background()

	result, err := p.Run(ctx)
	require.NoError(t, err)

	t.Run("counts match config", func(t *testing.T) {
		assert.Equal(t, 3*(1+2), result.Locations)
		assert.Equal(t, 3*2*2, result.Buildings)
		assert.Equal(t, 10, result.Characters)
		assert.Equal(t, 5, result.Shops)
		for _, cat := range itemCategoryOrder {
			assert.Equal(t, 20, result.Items[cat], "items in %s", cat)
		}
		assert.NotZero(t, result.Connections)
		assert.NotZero(t, result.Rooms)
	})

	t.Run("stats agree with result", func(t *testing.T) {
		stats, err := s.Stats(ctx, p.WorldID)
		require.NoError(t, err)
		assert.Equal(t, result.Locations, stats["locations"])
		assert.Equal(t, result.Buildings, stats["buildings"])
		assert.Equal(t, result.Characters, stats["characters"])
		assert.Equal(t, result.Inventory, stats["shop_inventory"])
		assert.Equal(t, result.Items["weapon"], stats["weapon_items"])
	})

	t.Run("every shop stocks 5 to 15 slots", func(t *testing.T) {
		rows, err := s.DB().Query(`
			SELECT shop_id, COUNT(*) FROM shop_inventory GROUP BY shop_id`)
		require.NoError(t, err)
		defer rows.Close()
		shops := 0
		for rows.Next() {
			var shopID string
			var n int
			require.NoError(t, rows.Scan(&shopID, &n))
			assert.GreaterOrEqual(t, n, 5, "shop %s", shopID)
			assert.LessOrEqual(t, n, 15, "shop %s", shopID)
			shops++
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, 5, shops)
	})

	t.Run("no dangling inventory references", func(t *testing.T) {
		missing, err := s.VerifyWeakRefs()
		require.NoError(t, err)
		assert.Empty(t, missing)
	})

	t.Run("auditor finds nothing to repair", func(t *testing.T) {
		a := &audit.Auditor{Store: s}
		report, err := a.Audit(ctx, 0)
		require.NoError(t, err)
		assert.True(t, report.Clean())
	})

	t.Run("characters stay in range", func(t *testing.T) {
		rows, err := s.DB().Query(`
			SELECT accuracy, initiative,
			       resistance_physical, resistance_emp, resistance_nanite
			FROM characters`)
		require.NoError(t, err)
		defer rows.Close()
		for rows.Next() {
			var acc float64
			var init, rp, re, rn int
			require.NoError(t, rows.Scan(&acc, &init, &rp, &re, &rn))
			assert.GreaterOrEqual(t, acc, 0.5)
			assert.LessOrEqual(t, acc, 0.9)
			assert.GreaterOrEqual(t, init, 3)
			assert.LessOrEqual(t, init, 10)
			for _, r := range []int{rp, re, rn} {
				assert.GreaterOrEqual(t, r, 0)
				assert.LessOrEqual(t, r, 100)
			}
		}
		require.NoError(t, rows.Err())
	})

	t.Run("items land on devices, buildings, characters and loot", func(t *testing.T) {
		rows, err := s.DB().Query(`
			SELECT location_type, location_id FROM weapon_items
			UNION ALL SELECT location_type, location_id FROM armor_items
			UNION ALL SELECT location_type, location_id FROM implant_items
			UNION ALL SELECT location_type, location_id FROM hardware_items
			UNION ALL SELECT location_type, location_id FROM software_items
			UNION ALL SELECT location_type, location_id FROM consumable_items`)
		require.NoError(t, err)
		defer rows.Close()

		kinds := make(map[string]int)
		for rows.Next() {
			var locType, locID string
			require.NoError(t, rows.Scan(&locType, &locID))
			assert.Contains(t, []string{"device", "building", "character", "shop", "loot"}, locType)
			assert.NotEmpty(t, locID)
			if locType == "loot" {
				assert.Equal(t, p.WorldID, locID)
			}
			kinds[locType]++
		}
		require.NoError(t, rows.Err())
		// 120 draws over five kinds leave every kind represented.
		assert.GreaterOrEqual(t, len(kinds), 4)

		var dangling int
		err = s.DB().QueryRow(`
			SELECT COUNT(*) FROM weapon_items w
			WHERE w.location_type = 'device'
			  AND NOT EXISTS (SELECT 1 FROM devices d WHERE d.id = w.location_id)`).Scan(&dangling)
		require.NoError(t, err)
		assert.Zero(t, dangling)
	})

	t.Run("item metadata is standardized", func(t *testing.T) {
		var md string
		err := s.DB().QueryRow("SELECT metadata FROM weapon_items LIMIT 1").Scan(&md)
		require.NoError(t, err)
		assert.Contains(t, md, "damage_type")
		assert.Contains(t, md, "critical_chance")
	})
}

func TestPipelineDeterminism(t *testing.T) {
	ctx := context.Background()

	p1, s1 := testPipeline(t, 99)
	r1, err := p1.Run(ctx)
	require.NoError(t, err)

	p2, s2 := testPipeline(t, 99)
	r2, err := p2.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, r1.Connections, r2.Connections)
	assert.Equal(t, r1.Rooms, r2.Rooms)
	assert.Equal(t, r1.Networks, r2.Networks)
	assert.Equal(t, r1.Files, r2.Files)
	assert.Equal(t, r1.Inventory, r2.Inventory)

	names := func(s *store.WorldStore) []string {
		rows, err := s.DB().Query("SELECT name FROM characters ORDER BY rowid")
		require.NoError(t, err)
		defer rows.Close()
		var out []string
		for rows.Next() {
			var n string
			require.NoError(t, rows.Scan(&n))
			out = append(out, n)
		}
		return out
	}
	assert.Equal(t, names(s1), names(s2))
}

func TestLegalShopsCarryLittleContraband(t *testing.T) {
	// ~100 shops at 5-15 slots each put over a thousand placements
	// behind the statistical bound.
	p, s := testPipeline(t, 7)
	p.Config.Generation.ItemsPerCategory = 60
	p.Config.Generation.NumShops = 100

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	var total, illegal int
	err = s.DB().QueryRow(`
		SELECT COUNT(*),
		       SUM(CASE WHEN it.is_legal = 0 THEN 1 ELSE 0 END)
		FROM shop_inventory si
		JOIN shops sh ON sh.id = si.shop_id
		JOIN (
			SELECT id, is_legal FROM weapon_items
			UNION ALL SELECT id, is_legal FROM armor_items
			UNION ALL SELECT id, is_legal FROM implant_items
			UNION ALL SELECT id, is_legal FROM hardware_items
			UNION ALL SELECT id, is_legal FROM software_items
			UNION ALL SELECT id, is_legal FROM consumable_items
		) it ON it.id = si.item_id
		WHERE sh.is_legal = 1`).Scan(&total, &illegal)
	require.NoError(t, err)
	require.NotZero(t, total)

	// The reroll keeps contraband in legitimate shops to a trickle.
	assert.Less(t, float64(illegal)/float64(total), 0.10)
}
