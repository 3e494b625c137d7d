package gen

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"worldforge/internal/ident"
	"worldforge/internal/logging"
)

var travelTypes = []string{"road", "train", "hyperloop", "air", "boat"}

// genLocation is the in-memory shape passed between pipeline stages so
// later generators can place content without re-querying.
type genLocation struct {
	ID       string
	ParentID string
	Name     string
	Kind     string // city or district
	Security int
}

// generateLocations creates cities, their districts, and the travel
// connections between cities. Districts inherit danger from their
// security level; level 1 districts are flagged dangerous.
func (p *Pipeline) generateLocations(ctx context.Context, tx *sql.Tx, rng *rand.Rand) ([]genLocation, int, error) {
	insertLoc := `
		INSERT INTO locations (id, world_id, name, description, coordinates,
			security_level, population, parent_location_id, is_dangerous,
			location_type, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var locs []genLocation
	var cityIDs []string

	used := make(map[string]bool)
	for i := 0; i < p.Config.Generation.NumCities; i++ {
		name := pick(rng, cityNames)
		for used[name] {
			name = pick(rng, cityNames) + " " + fmt.Sprint(between(rng, 2, 9))
		}
		used[name] = true

		id := ident.New("loc")
		coords, _ := json.Marshal([2]int{between(rng, -500, 500), between(rng, -500, 500)})
		security := between(rng, 1, 5)
		population := between(rng, 50_000, 5_000_000)

		_, err := tx.ExecContext(ctx, insertLoc,
			id, p.WorldID, name, "Major city", string(coords),
			security, population, nil, 0, "city", "{}")
		if err != nil {
			return nil, 0, fmt.Errorf("failed to insert city: %w", err)
		}
		cityIDs = append(cityIDs, id)
		locs = append(locs, genLocation{ID: id, Name: name, Kind: "city", Security: security})

		for d := 0; d < p.Config.Generation.DistrictsPerCity; d++ {
			district := pick(rng, districtKinds)
			dID := ident.New("loc")
			dCoords, _ := json.Marshal([2]int{between(rng, -20, 20), between(rng, -20, 20)})
			dSecurity := between(rng, 1, 5)
			dangerous := 0
			if dSecurity <= 1 {
				dangerous = 1
			}
			_, err := tx.ExecContext(ctx, insertLoc,
				dID, p.WorldID, name+" "+district, "District of "+name, string(dCoords),
				dSecurity, population/(p.Config.Generation.DistrictsPerCity+1),
				id, dangerous, "district", "{}")
			if err != nil {
				return nil, 0, fmt.Errorf("failed to insert district: %w", err)
			}
			locs = append(locs, genLocation{
				ID: dID, ParentID: id, Name: name + " " + district,
				Kind: "district", Security: dSecurity,
			})
		}
	}

	connections, err := p.generateConnections(ctx, tx, rng, cityIDs)
	if err != nil {
		return nil, 0, err
	}

	logging.Generate("Generated %d locations and %d connections for world %s",
		len(locs), connections, p.WorldID)
	return locs, connections, nil
}

// generateConnections links cities in a chain so every city is
// reachable, then adds extra random links for shortcuts. Edges are
// directed; a two-way link is two rows sharing travel parameters.
func (p *Pipeline) generateConnections(ctx context.Context, tx *sql.Tx, rng *rand.Rand, cityIDs []string) (int, error) {
	insert := `
		INSERT INTO connections (id, world_id, source_id, destination_id,
			travel_type, travel_time, travel_cost, requires_hacking, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, '{}')`

	count := 0
	add := func(src, dst string) error {
		travel := pick(rng, travelTypes)
		travelTime := 0.5 + rng.Float64()*5.0
		cost := between(rng, 10, 500)
		hacking := 0
		if chance(rng, 10) {
			hacking = 1
		}
		for _, pair := range [][2]string{{src, dst}, {dst, src}} {
			_, err := tx.ExecContext(ctx, insert,
				ident.New("conn"), p.WorldID, pair[0], pair[1], travel, travelTime, cost, hacking)
			if err != nil {
				return fmt.Errorf("failed to insert connection: %w", err)
			}
			count++
		}
		return nil
	}

	for i := 0; i+1 < len(cityIDs); i++ {
		if err := add(cityIDs[i], cityIDs[i+1]); err != nil {
			return count, err
		}
	}
	for i := 0; i < len(cityIDs); i++ {
		for j := i + 2; j < len(cityIDs); j++ {
			if chance(rng, 25) {
				if err := add(cityIDs[i], cityIDs[j]); err != nil {
					return count, err
				}
			}
		}
	}
	return count, nil
}
