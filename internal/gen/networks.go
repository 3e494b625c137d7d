package gen

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"

	"worldforge/internal/ident"
	"worldforge/internal/logging"
)

var networkSecurityLevels = []string{"open", "basic", "hardened", "military"}

// generateNetworks gives 70% of buildings at least one network. High
// security buildings get hardened or military networks and may hide
// them from casual scans.
func (p *Pipeline) generateNetworks(ctx context.Context, tx *sql.Tx, rng *rand.Rand, buildings []genBuilding) (int, error) {
	insert := `
		INSERT INTO networks (id, world_id, building_id, name, network_type,
			security_level, encryption_type, is_hidden, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, '{}')`

	count := 0
	for _, b := range buildings {
		if !chance(rng, 70) {
			continue
		}
		n := 1
		if b.Type == "datacenter" || b.Type == "office" {
			n = between(rng, 1, 3)
		}
		for i := 0; i < n; i++ {
			secIdx := clampInt(b.Security-1+between(rng, -1, 1), 0, len(networkSecurityLevels)-1)
			security := networkSecurityLevels[secIdx]
			encryption := pick(rng, encryptionTypes)
			if security == "military" {
				encryption = "military"
			}
			hidden := 0
			if secIdx >= 2 && chance(rng, 40) {
				hidden = 1
			}
			_, err := tx.ExecContext(ctx, insert,
				ident.New("net"), p.WorldID, b.ID,
				fmt.Sprintf("%s-NET-%d", b.Type, i+1),
				pick(rng, networkTypes), security, encryption, hidden)
			if err != nil {
				return count, fmt.Errorf("failed to insert network: %w", err)
			}
			count++
		}
	}

	logging.Generate("Generated %d networks for world %s", count, p.WorldID)
	return count, nil
}
