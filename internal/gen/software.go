package gen

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"

	"worldforge/internal/logging"
	"worldforge/internal/metadata"
)

var softwareCategories = []string{
	"ICE_BREAKER", "FIREWALL", "SCANNER", "VIRUS", "UTILITY", "DAEMON", "CRYPTO",
}

var softwareLicenses = []string{"commercial", "freeware", "cracked", "military", "bespoke"}

var softwareFeatures = map[string][]string{
	"ICE_BREAKER": {"barrier bypass", "trace scrubbing"},
	"FIREWALL":    {"intrusion alerts", "port shielding"},
	"SCANNER":     {"node mapping", "signature analysis"},
	"VIRUS":       {"payload injection", "self replication"},
	"UTILITY":     {"file recovery", "process cloaking"},
	"DAEMON":      {"scheduled tasks", "remote triggers"},
	"CRYPTO":      {"key exchange", "cipher rotation"},
}

func (p *Pipeline) generateSoftware(ctx context.Context, tx *sql.Tx, rng *rand.Rand, n int, pools placementPools) (int, error) {
	inserted := 0
	var lastErr error
	for i := 0; i < n; i++ {
		row := newItemRow(rng, "software")
		row.LocationType, row.LocationID = rollPlacement(rng, pools, p.WorldID)
		cat := pick(rng, softwareCategories)
		version := fmt.Sprintf("%d.%d.%d", between(rng, 1, 9), between(rng, 0, 9), between(rng, 0, 20))
		license := pick(rng, softwareLicenses)
		size := between(rng, 20, 4000)

		// Attack software and cracked licenses are contraband.
		if cat == "VIRUS" || cat == "ICE_BREAKER" || license == "cracked" {
			row.IsLegal = false
		}

		row.Description = cat + " software v" + version
		row.Metadata = map[string]any{
			"features":         softwareFeatures[cat],
			"install_size":     size,
			"encryption_level": clampInt(row.RequiredLevel/2, 1, 5),
		}

		err := insertItem(ctx, tx, "software_items", p.WorldID, row, metadata.CategorySoftware,
			"software_type, version, license_type, install_size",
			cat, version, license, size)
		if err != nil {
			lastErr = err
			logging.Generate("Skipping software row: %v", err)
			continue
		}
		inserted++
	}
	if inserted == 0 && n > 0 && lastErr != nil {
		return 0, lastErr
	}
	logging.Generate("Generated %d software items for world %s", inserted, p.WorldID)
	return inserted, nil
}
