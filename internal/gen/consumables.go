package gen

import (
	"context"
	"database/sql"
	"math/rand/v2"

	"worldforge/internal/logging"
	"worldforge/internal/metadata"
)

var consumableCategories = []string{
	"STIM", "MEDKIT", "FOOD", "DRINK", "BOOSTER", "ANTIDOTE",
}

var consumableEffects = map[string][]string{
	"STIM":     {"reflex boost", "focus"},
	"MEDKIT":   {"heal", "stop bleeding"},
	"FOOD":     {"satiety"},
	"DRINK":    {"hydration"},
	"BOOSTER":  {"strength boost", "stamina"},
	"ANTIDOTE": {"cure toxin", "cure virus"},
}

var tasteOptions = []string{"NEUTRAL", "SWEET", "BITTER", "SAVORY", "CHEMICAL"}

func (p *Pipeline) generateConsumables(ctx context.Context, tx *sql.Tx, rng *rand.Rand, n int, pools placementPools) (int, error) {
	inserted := 0
	var lastErr error
	for i := 0; i < n; i++ {
		row := newItemRow(rng, "consumable")
		row.LocationType, row.LocationID = rollPlacement(rng, pools, p.WorldID)
		cat := pick(rng, consumableCategories)
		duration := between(rng, 0, 120)
		uses := between(rng, 1, 3)

		// Combat stims are controlled substances at high grades.
		if cat == "BOOSTER" && (row.Rarity == RarityEpic || row.Rarity == RarityLegendary) {
			row.IsLegal = rollLegality(rng, RarityLegendary)
		}

		mdCategory := metadata.CategoryConsumable
		overrides := map[string]any{
			"effects":  consumableEffects[cat],
			"duration": duration,
			"taste":    pick(rng, tasteOptions),
			"quality":  row.Quality,
		}
		if cat == "FOOD" || cat == "DRINK" {
			mdCategory = metadata.CategoryFood
			overrides["nutrition_value"] = between(rng, 1, 10)
			overrides["calories"] = between(rng, 50, 900)
			overrides["freshness"] = between(rng, 40, 100)
		}

		row.Description = cat + " consumable"
		row.Metadata = overrides

		err := insertItem(ctx, tx, "consumable_items", p.WorldID, row, mdCategory,
			"consumable_type, duration, uses",
			cat, duration, uses)
		if err != nil {
			lastErr = err
			logging.Generate("Skipping consumable row: %v", err)
			continue
		}
		inserted++
	}
	if inserted == 0 && n > 0 && lastErr != nil {
		return 0, lastErr
	}
	logging.Generate("Generated %d consumables for world %s", inserted, p.WorldID)
	return inserted, nil
}
