package gen

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"

	"worldforge/internal/config"
	"worldforge/internal/logging"
	"worldforge/internal/store"
)

// Pipeline runs the generation stages against one world. Each stage
// commits its own transaction, so a failure partway leaves the earlier
// stages' output intact and queryable.
type Pipeline struct {
	Store   *store.WorldStore
	Config  *config.Config
	Seed    int64
	WorldID string
}

// Result reports what a full pipeline run produced.
type Result struct {
	WorldID     string
	Locations   int
	Connections int
	Buildings   int
	Rooms       int
	Networks    int
	Characters  int
	Devices     int
	Files       int
	Items       map[string]int // category -> count
	Shops       int
	Inventory   int
}

// TotalItems sums the per-category item counts.
func (r *Result) TotalItems() int {
	total := 0
	for _, n := range r.Items {
		total += n
	}
	return total
}

// inTx runs fn inside one committed transaction.
func (p *Pipeline) inTx(ctx context.Context, stage string, fn func(tx *sql.Tx) error) error {
	tx, err := p.Store.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin %s stage: %w", stage, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("%s stage failed: %w", stage, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s stage: %w", stage, err)
	}
	return nil
}

// Run executes every generation stage in dependency order. The world
// row must already exist; its id is p.WorldID.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	timer := logging.StartTimer(logging.CategoryGenerate, "pipeline")
	result := &Result{WorldID: p.WorldID, Items: make(map[string]int)}

	var locs []genLocation
	err := p.inTx(ctx, "locations", func(tx *sql.Tx) error {
		var err error
		rng := seededRNG(p.Seed, "locations")
		locs, result.Connections, err = p.generateLocations(ctx, tx, rng)
		result.Locations = len(locs)
		return err
	})
	if err != nil {
		return nil, err
	}

	var buildings []genBuilding
	err = p.inTx(ctx, "buildings", func(tx *sql.Tx) error {
		var err error
		rng := seededRNG(p.Seed, "buildings")
		buildings, result.Rooms, err = p.generateBuildings(ctx, tx, rng, locs)
		result.Buildings = len(buildings)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.inTx(ctx, "networks", func(tx *sql.Tx) error {
		var err error
		result.Networks, err = p.generateNetworks(ctx, tx, seededRNG(p.Seed, "networks"), buildings)
		return err
	})
	if err != nil {
		return nil, err
	}

	var characterIDs []string
	err = p.inTx(ctx, "characters", func(tx *sql.Tx) error {
		var err error
		characterIDs, err = p.generateCharacters(ctx, tx, seededRNG(p.Seed, "characters"), locs)
		result.Characters = len(characterIDs)
		return err
	})
	if err != nil {
		return nil, err
	}

	var deviceIDs []string
	err = p.inTx(ctx, "devices", func(tx *sql.Tx) error {
		var err error
		deviceIDs, result.Files, err = p.generateDevices(
			ctx, tx, seededRNG(p.Seed, "devices"), buildings, characterIDs)
		result.Devices = len(deviceIDs)
		return err
	})
	if err != nil {
		return nil, err
	}

	buildingIDs := make([]string, len(buildings))
	for i, b := range buildings {
		buildingIDs[i] = b.ID
	}
	pools := placementPools{
		deviceIDs:    deviceIDs,
		buildingIDs:  buildingIDs,
		characterIDs: characterIDs,
	}
	if err := p.generateItems(ctx, result, pools); err != nil {
		return nil, err
	}

	var shops []genShop
	err = p.inTx(ctx, "shops", func(tx *sql.Tx) error {
		var err error
		shops, err = p.generateShops(ctx, tx, seededRNG(p.Seed, "shops"),
			locs, buildings, characterIDs)
		result.Shops = len(shops)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.inTx(ctx, "inventory", func(tx *sql.Tx) error {
		var err error
		result.Inventory, err = p.linkInventory(ctx, tx, seededRNG(p.Seed, "inventory"), shops)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := p.Store.TouchWorld(ctx, p.WorldID); err != nil {
		return nil, err
	}

	timer.StopWithInfo("world %s: %d locations, %d characters, %d items, %d shops",
		p.WorldID, result.Locations, result.Characters, result.TotalItems(), result.Shops)
	return result, nil
}

// generateItems runs the six item-category generators, each in its own
// transaction with its own salted RNG stream.
func (p *Pipeline) generateItems(ctx context.Context, result *Result, pools placementPools) error {
	n := p.Config.Generation.ItemsPerCategory
	stages := []struct {
		category string
		run      func(context.Context, *sql.Tx, *rand.Rand, int, placementPools) (int, error)
	}{
		{"weapon", p.generateWeapons},
		{"armor", p.generateArmor},
		{"implant", p.generateImplants},
		{"hardware", p.generateHardware},
		{"software", p.generateSoftware},
		{"consumable", p.generateConsumables},
	}
	for _, stage := range stages {
		stage := stage
		err := p.inTx(ctx, stage.category+" items", func(tx *sql.Tx) error {
			count, err := stage.run(ctx, tx, seededRNG(p.Seed, stage.category+"_items"), n, pools)
			result.Items[stage.category] = count
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}
