package gen

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"

	"worldforge/internal/ident"
	"worldforge/internal/logging"
)

// generateDevices scatters networked devices through buildings and
// seeds each with files. Device security follows its building, and
// file importance rises with device security.
func (p *Pipeline) generateDevices(ctx context.Context, tx *sql.Tx, rng *rand.Rand,
	buildings []genBuilding, characterIDs []string) ([]string, int, error) {

	insertDevice := `
		INSERT INTO devices (id, world_id, name, device_type, os_type,
			security_level, location_id, building_id, owner_id, is_connected, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '{}')`
	insertFile := `
		INSERT INTO files (id, world_id, device_id, name, file_type,
			size_kb, importance, is_encrypted, content, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '{}')`

	var deviceIDs []string
	files := 0
	for i := 0; i < p.Config.Generation.NumDevices; i++ {
		if len(buildings) == 0 {
			break
		}
		b := pick(rng, buildings)
		id := ident.New("dev")
		dType := pick(rng, deviceTypes)
		security := clampInt(b.Security+between(rng, -1, 1), 1, 5)

		var owner any
		if len(characterIDs) > 0 && chance(rng, 40) {
			owner = pick(rng, characterIDs)
		}
		connected := 1
		if chance(rng, 10) {
			connected = 0
		}

		_, err := tx.ExecContext(ctx, insertDevice,
			id, p.WorldID, fmt.Sprintf("%s-%04d", dType, i+1), dType,
			pick(rng, osTypes), security, b.LocationID, b.ID, owner, connected)
		if err != nil {
			return deviceIDs, files, fmt.Errorf("failed to insert device: %w", err)
		}
		deviceIDs = append(deviceIDs, id)

		nFiles := between(rng, 0, 5)
		for f := 0; f < nFiles; f++ {
			encrypted := 0
			if security >= 3 && chance(rng, 60) {
				encrypted = 1
			}
			importance := clampInt(between(rng, 1, 3)+security-1, 1, 5)
			_, err := tx.ExecContext(ctx, insertFile,
				ident.New("file"), p.WorldID, id,
				fmt.Sprintf("%s_%d.dat", pick(rng, fileNameStems), between(rng, 1, 99)),
				pick(rng, fileTypes), between(rng, 1, 8000), importance, encrypted, "")
			if err != nil {
				return deviceIDs, files, fmt.Errorf("failed to insert file: %w", err)
			}
			files++
		}
	}

	logging.Generate("Generated %d devices and %d files for world %s",
		len(deviceIDs), files, p.WorldID)
	return deviceIDs, files, nil
}
