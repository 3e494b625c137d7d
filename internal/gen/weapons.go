package gen

import (
	"context"
	"database/sql"
	"math/rand/v2"
	"strings"

	"worldforge/internal/logging"
	"worldforge/internal/metadata"
)

// Weapon categories and their stat bases. EXOTIC weapons are always
// illegal regardless of rarity.
var weaponCategories = []string{"MELEE", "RANGED", "ENERGY", "SMART", "EXOTIC"}

var weaponDamageBase = map[string]int{
	"MELEE": 15, "RANGED": 10, "ENERGY": 12, "SMART": 8, "EXOTIC": 20,
}

var weaponAccuracyBase = map[string]int{
	"MELEE": 90, "RANGED": 70, "ENERGY": 80, "SMART": 95, "EXOTIC": 60,
}

var weaponRangeBase = map[string]int{
	"MELEE": 2, "RANGED": 20, "ENERGY": 15, "SMART": 25, "EXOTIC": 10,
}

var weaponDamageTypes = map[string][]string{
	"MELEE":  {"PHYSICAL"},
	"RANGED": {"PHYSICAL"},
	"ENERGY": {"ENERGY", "EMP"},
	"SMART":  {"PHYSICAL", "CYBER"},
	"EXOTIC": {"ENERGY", "BIOHAZARD", "NANITE", "VIRAL"},
}

func rollWeapon(rng *rand.Rand) (itemRow, string, int, string, int, int) {
	row := newItemRow(rng, "weapon")
	cat := pick(rng, weaponCategories)
	if cat == "EXOTIC" {
		row.IsLegal = false
	}

	damage := scaleStat(rng, weaponDamageBase[cat], row.Rarity)
	damageType := pick(rng, weaponDamageTypes[cat])
	accuracy := clampInt(weaponAccuracyBase[cat]+between(rng, -10, 10), 10, 100)
	wrange := weaponRangeBase[cat]

	maker, _, _ := strings.Cut(row.Name, " ")
	row.Description = cat + " weapon by " + maker
	row.Metadata = map[string]any{
		"damage":      damage,
		"damage_type": damageType,
		"accuracy":    accuracy,
		"range":       wrange,
	}
	return row, cat, damage, damageType, accuracy, wrange
}

func (p *Pipeline) generateWeapons(ctx context.Context, tx *sql.Tx, rng *rand.Rand, n int, pools placementPools) (int, error) {
	inserted := 0
	var lastErr error
	for i := 0; i < n; i++ {
		row, cat, damage, damageType, accuracy, wrange := rollWeapon(rng)
		row.LocationType, row.LocationID = rollPlacement(rng, pools, p.WorldID)
		err := insertItem(ctx, tx, "weapon_items", p.WorldID, row, metadata.CategoryWeapon,
			"weapon_type, damage, damage_type, accuracy, range",
			cat, damage, damageType, accuracy, wrange)
		if err != nil {
			lastErr = err
			logging.Generate("Skipping weapon row: %v", err)
			continue
		}
		inserted++
	}
	if inserted == 0 && n > 0 && lastErr != nil {
		return 0, lastErr
	}
	logging.Generate("Generated %d weapons for world %s", inserted, p.WorldID)
	return inserted, nil
}
