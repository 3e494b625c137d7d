package gen

import (
	"context"
	"database/sql"
	"math/rand/v2"

	"worldforge/internal/logging"
	"worldforge/internal/metadata"
)

var hardwareCategories = []string{
	"CPU", "MEMORY", "STORAGE", "NETWORK", "COOLING", "POWER", "PERIPHERAL",
}

func (p *Pipeline) generateHardware(ctx context.Context, tx *sql.Tx, rng *rand.Rand, n int, pools placementPools) (int, error) {
	inserted := 0
	var lastErr error
	for i := 0; i < n; i++ {
		row := newItemRow(rng, "hardware")
		row.LocationType, row.LocationID = rollPlacement(rng, pools, p.WorldID)
		cat := pick(rng, hardwareCategories)
		processing := int(float64(between(rng, 5, 20)) * rarityMultiplier[row.Rarity])
		memory := 1 << uint(between(rng, 2, 7)) // 4..128
		maker := pick(rng, manufacturers)

		row.Description = maker + " " + cat + " module"
		row.Metadata = map[string]any{
			"stats": map[string]any{
				"processing_power": processing,
				"memory":           memory,
				"storage":          memory * 32,
			},
			"power_consumption": between(rng, 2, 15),
		}

		err := insertItem(ctx, tx, "hardware_items", p.WorldID, row, metadata.CategoryHardware,
			"hardware_type, processing_power, memory, manufacturer",
			cat, processing, memory, maker)
		if err != nil {
			lastErr = err
			logging.Generate("Skipping hardware row: %v", err)
			continue
		}
		inserted++
	}
	if inserted == 0 && n > 0 && lastErr != nil {
		return 0, lastErr
	}
	logging.Generate("Generated %d hardware items for world %s", inserted, p.WorldID)
	return inserted, nil
}
