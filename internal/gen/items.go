package gen

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"

	"worldforge/internal/ident"
	"worldforge/internal/metadata"
)

// Rarity tiers shared by every item category.
const (
	RarityCommon    = "COMMON"
	RarityUncommon  = "UNCOMMON"
	RarityRare      = "RARE"
	RarityEpic      = "EPIC"
	RarityLegendary = "LEGENDARY"
)

var rarityOrder = []string{
	RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary,
}

var rarityWeights = map[string]int{
	RarityCommon:    40,
	RarityUncommon:  30,
	RarityRare:      20,
	RarityEpic:      8,
	RarityLegendary: 2,
}

var rarityMultiplier = map[string]float64{
	RarityCommon:    1.0,
	RarityUncommon:  1.3,
	RarityRare:      1.7,
	RarityEpic:      2.2,
	RarityLegendary: 3.0,
}

var rarityBasePrice = map[string]int{
	RarityCommon:    100,
	RarityUncommon:  500,
	RarityRare:      2000,
	RarityEpic:      8000,
	RarityLegendary: 25000,
}

// requiredLevelRange keeps stronger rarities behind higher levels.
var requiredLevelRange = map[string][2]int{
	RarityCommon:    {1, 3},
	RarityUncommon:  {2, 5},
	RarityRare:      {4, 7},
	RarityEpic:      {6, 9},
	RarityLegendary: {8, 10},
}

func rollRarity(rng *rand.Rand) string {
	return weightedChoice(rng, rarityWeights, rarityOrder)
}

// scaleStat applies the shared stat formula:
// base × rarity multiplier × a jitter in [0.8, 1.2), truncated.
func scaleStat(rng *rand.Rand, base int, rarity string) int {
	return int(float64(base) * rarityMultiplier[rarity] * (0.8 + rng.Float64()*0.4))
}

func rollRequiredLevel(rng *rand.Rand, rarity string) int {
	r := requiredLevelRange[rarity]
	return between(rng, r[0], r[1])
}

// rollPrice scales the rarity base price by required level.
func rollPrice(rarity string, level int) int {
	return int(float64(rarityBasePrice[rarity]) * (1.0 + float64(level)*0.2))
}

// rollLegality marks EPIC/LEGENDARY gear illegal 40% of the time.
// Category rules (exotic weapons, military implants) layer on top.
func rollLegality(rng *rand.Rand, rarity string) bool {
	if rarity == RarityEpic || rarity == RarityLegendary {
		return !chance(rng, 40)
	}
	return true
}

// itemRow carries the column values shared by the six item tables.
type itemRow struct {
	ID            string
	Name          string
	Description   string
	Subtype       string
	Rarity        string
	Quality       int
	Price         int
	RequiredLevel int
	IsLegal       bool
	LocationType  string
	LocationID    string
	Metadata      map[string]any
}

// placementPools holds the candidate owners an item can land on. Empty
// pools degrade to world loot.
type placementPools struct {
	deviceIDs    []string
	buildingIDs  []string
	characterIDs []string
}

var placementKinds = []string{"device", "building", "character", "shop", "loot"}

// rollPlacement picks where an item physically lives. Shops stock
// through shop_inventory rows, so "shop" placement puts the item in a
// building a storefront could occupy; anything unplaceable becomes
// world loot.
func rollPlacement(rng *rand.Rand, pools placementPools, worldID string) (string, string) {
	switch pick(rng, placementKinds) {
	case "device":
		if len(pools.deviceIDs) > 0 {
			return "device", pick(rng, pools.deviceIDs)
		}
	case "building":
		if len(pools.buildingIDs) > 0 {
			return "building", pick(rng, pools.buildingIDs)
		}
	case "character":
		if len(pools.characterIDs) > 0 {
			return "character", pick(rng, pools.characterIDs)
		}
	case "shop":
		if len(pools.buildingIDs) > 0 {
			return "shop", pick(rng, pools.buildingIDs)
		}
	}
	return "loot", worldID
}

// newItemRow rolls the shared fields. Category generators fill Subtype,
// stats, and metadata overrides afterwards.
func newItemRow(rng *rand.Rand, idPrefix string) itemRow {
	rarity := rollRarity(rng)
	level := rollRequiredLevel(rng, rarity)
	return itemRow{
		ID:            ident.New(idPrefix),
		Name:          itemName(rng),
		Rarity:        rarity,
		Quality:       between(rng, 1, 5),
		Price:         rollPrice(rarity, level),
		RequiredLevel: level,
		IsLegal:       rollLegality(rng, rarity),
	}
}

// insertItem writes one row into an item table. extraCols/extraVals are
// the category's own stat columns, in matching order.
func insertItem(ctx context.Context, tx *sql.Tx, table, worldID string,
	row itemRow, category string, extraCols string, extraVals ...any) error {

	standardized, err := metadata.Standardize(category, row.Metadata)
	if err != nil {
		return fmt.Errorf("failed to standardize %s metadata: %w", category, err)
	}
	md := metadata.ToJSON(standardized)

	cols := "id, world_id, name, description, " + extraCols +
		", rarity, quality, price, required_level, is_legal, location_type, location_id, metadata"
	n := 12 + len(extraVals)
	placeholders := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
	}

	vals := []any{row.ID, worldID, row.Name, row.Description}
	vals = append(vals, extraVals...)
	vals = append(vals, row.Rarity, row.Quality, row.Price, row.RequiredLevel,
		boolToInt(row.IsLegal), row.LocationType, row.LocationID, md)

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, cols, placeholders), vals...)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
