package gen

import (
	"context"
	"database/sql"
	"math/rand/v2"

	"worldforge/internal/logging"
	"worldforge/internal/metadata"
)

var armorCategories = []string{"HEAD", "BODY", "ARMS", "LEGS", "FULL_SUIT", "SHIELD"}

var armorDefenseBase = map[string]int{
	"HEAD": 4, "BODY": 8, "ARMS": 3, "LEGS": 3, "FULL_SUIT": 12, "SHIELD": 6,
}

var armorDefenseTypes = []string{"PHYSICAL", "ENERGY", "EMP", "BIOHAZARD"}

func (p *Pipeline) generateArmor(ctx context.Context, tx *sql.Tx, rng *rand.Rand, n int, pools placementPools) (int, error) {
	inserted := 0
	var lastErr error
	for i := 0; i < n; i++ {
		row := newItemRow(rng, "armor")
		row.LocationType, row.LocationID = rollPlacement(rng, pools, p.WorldID)
		cat := pick(rng, armorCategories)
		defense := scaleStat(rng, armorDefenseBase[cat], row.Rarity)
		defenseType := pick(rng, armorDefenseTypes)
		durability := between(rng, 60, 100)
		penalty := between(rng, 0, 3)

		row.Description = cat + " armor, " + defenseType + " rated"
		row.Metadata = map[string]any{
			"defense":          defense,
			"defense_type":     defenseType,
			"durability":       durability,
			"mobility_penalty": penalty,
		}

		err := insertItem(ctx, tx, "armor_items", p.WorldID, row, metadata.CategoryArmor,
			"armor_type, defense, defense_type, durability, slots",
			cat, defense, defenseType, durability, cat)
		if err != nil {
			lastErr = err
			logging.Generate("Skipping armor row: %v", err)
			continue
		}
		inserted++
	}
	if inserted == 0 && n > 0 && lastErr != nil {
		return 0, lastErr
	}
	logging.Generate("Generated %d armor pieces for world %s", inserted, p.WorldID)
	return inserted, nil
}
