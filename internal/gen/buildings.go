package gen

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"

	"worldforge/internal/ident"
	"worldforge/internal/logging"
)

type genBuilding struct {
	ID         string
	LocationID string
	Type       string
	Floors     int
	Security   int
}

// generateBuildings places buildings in every district (cities hold no
// buildings directly) and fills each with rooms floor by floor.
func (p *Pipeline) generateBuildings(ctx context.Context, tx *sql.Tx, rng *rand.Rand, locs []genLocation) ([]genBuilding, int, error) {
	insertBuilding := `
		INSERT INTO buildings (id, world_id, location_id, name, description,
			building_type, floors, security_level, is_restricted, is_abandoned, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '{}')`
	insertRoom := `
		INSERT INTO rooms (id, world_id, building_id, name, floor, room_type,
			size, is_locked, is_restricted, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '{}')`

	var buildings []genBuilding
	rooms := 0

	for _, loc := range locs {
		if loc.Kind != "district" {
			continue
		}
		for b := 0; b < p.Config.Generation.BuildingsPerLocation; b++ {
			id := ident.New("bld")
			bType := pick(rng, buildingTypes)
			floors := between(rng, 1, 40)
			security := clampInt(loc.Security+between(rng, -1, 1), 1, 5)
			restricted := 0
			if security >= 4 {
				restricted = 1
			}
			abandoned := 0
			if chance(rng, 8) {
				abandoned = 1
			}

			_, err := tx.ExecContext(ctx, insertBuilding,
				id, p.WorldID, loc.ID, buildingName(rng), bType+" building",
				bType, floors, security, restricted, abandoned)
			if err != nil {
				return nil, rooms, fmt.Errorf("failed to insert building: %w", err)
			}
			buildings = append(buildings, genBuilding{
				ID: id, LocationID: loc.ID, Type: bType, Floors: floors, Security: security,
			})

			nRooms := between(rng, 2, 6)
			for r := 0; r < nRooms; r++ {
				rType := pick(rng, roomTypes)
				locked := 0
				if rType == "vault" || rType == "server room" || chance(rng, 15) {
					locked = 1
				}
				_, err := tx.ExecContext(ctx, insertRoom,
					ident.New("room"), p.WorldID, id,
					fmt.Sprintf("%s %d", rType, r+1),
					between(rng, 0, floors-1), rType,
					between(rng, 6, 80), locked, restricted)
				if err != nil {
					return nil, rooms, fmt.Errorf("failed to insert room: %w", err)
				}
				rooms++
			}
		}
	}

	logging.Generate("Generated %d buildings and %d rooms for world %s",
		len(buildings), rooms, p.WorldID)
	return buildings, rooms, nil
}
