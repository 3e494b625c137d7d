package gen

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"

	"worldforge/internal/ident"
	"worldforge/internal/logging"
)

type genShop struct {
	ID      string
	Type    string
	IsLegal bool
}

// generateShops opens storefronts across the districts. Black market
// shops are always illegal and prefer dangerous districts when any
// exist.
func (p *Pipeline) generateShops(ctx context.Context, tx *sql.Tx, rng *rand.Rand,
	locs []genLocation, buildings []genBuilding, characterIDs []string) ([]genShop, error) {

	insert := `
		INSERT INTO shops (id, world_id, name, shop_type, description,
			location_id, building_id, owner_id, is_legal, price_modifier, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '{}')`

	var districts, rough []genLocation
	for _, l := range locs {
		if l.Kind != "district" {
			continue
		}
		districts = append(districts, l)
		if l.Security <= 2 {
			rough = append(rough, l)
		}
	}

	var shops []genShop
	for i := 0; i < p.Config.Generation.NumShops; i++ {
		id := ident.New("shop")
		shopType := pick(rng, shopTypePool)
		legal := shopType != "BLACK_MARKET"

		var locID any
		pool := districts
		if !legal && len(rough) > 0 {
			pool = rough
		}
		if len(pool) > 0 {
			locID = pick(rng, pool).ID
		}

		var bldID any
		if len(buildings) > 0 && chance(rng, 60) {
			bldID = pick(rng, buildings).ID
		}
		var owner any
		if len(characterIDs) > 0 && chance(rng, 70) {
			owner = pick(rng, characterIDs)
		}

		priceMod := 0.8 + rng.Float64()*0.4
		_, err := tx.ExecContext(ctx, insert,
			id, p.WorldID, shopName(rng, shopType), shopType,
			shopType+" storefront", locID, bldID, owner, boolToInt(legal), priceMod)
		if err != nil {
			return shops, fmt.Errorf("failed to insert shop: %w", err)
		}
		shops = append(shops, genShop{ID: id, Type: shopType, IsLegal: legal})
	}

	logging.Shop("Generated %d shops for world %s", len(shops), p.WorldID)
	return shops, nil
}
