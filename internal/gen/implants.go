package gen

import (
	"context"
	"database/sql"
	"math/rand/v2"

	"worldforge/internal/logging"
	"worldforge/internal/metadata"
)

var implantCategories = []string{
	"NEURAL", "OCULAR", "SKELETAL", "DERMAL", "CIRCULATORY", "LIMB",
}

var implantStatBonus = map[string]string{
	"NEURAL":      "INTELLIGENCE",
	"OCULAR":      "PERCEPTION",
	"SKELETAL":    "STRENGTH",
	"DERMAL":      "ENDURANCE",
	"CIRCULATORY": "REFLEXES",
	"LIMB":        "AGILITY",
}

func (p *Pipeline) generateImplants(ctx context.Context, tx *sql.Tx, rng *rand.Rand, n int, pools placementPools) (int, error) {
	inserted := 0
	var lastErr error
	for i := 0; i < n; i++ {
		row := newItemRow(rng, "implant")
		row.LocationType, row.LocationID = rollPlacement(rng, pools, p.WorldID)
		cat := pick(rng, implantCategories)
		humanityCost := clampInt(
			int(float64(between(rng, 3, 8))*rarityMultiplier[row.Rarity]), 1, 30)
		difficulty := between(rng, 1, 5)

		// Military-grade chrome draws attention.
		if row.Rarity == RarityLegendary && chance(rng, 50) {
			row.IsLegal = false
		}

		bonus := clampInt(1+row.RequiredLevel/3, 1, 5)
		row.Description = cat + " implant, +" + implantStatBonus[cat]
		row.Metadata = map[string]any{
			"stats_bonus":        map[string]any{implantStatBonus[cat]: bonus},
			"humanity_cost":      humanityCost,
			"surgery_difficulty": difficulty,
		}

		err := insertItem(ctx, tx, "implant_items", p.WorldID, row, metadata.CategoryImplant,
			"implant_type, humanity_cost, surgery_difficulty",
			cat, humanityCost, difficulty)
		if err != nil {
			lastErr = err
			logging.Generate("Skipping implant row: %v", err)
			continue
		}
		inserted++
	}
	if inserted == 0 && n > 0 && lastErr != nil {
		return 0, lastErr
	}
	logging.Generate("Generated %d implants for world %s", inserted, p.WorldID)
	return inserted, nil
}
