package gen

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"time"

	"worldforge/internal/ident"
	"worldforge/internal/logging"
	"worldforge/internal/store"
)

// shopPreferredCategory maps shop types to the item category they
// stock 80% of the time. GENERAL and BLACK_MARKET draw uniformly.
var shopPreferredCategory = map[string]string{
	"WEAPON":     "weapon",
	"ARMOR":      "armor",
	"IMPLANT":    "implant",
	"HARDWARE":   "hardware",
	"SOFTWARE":   "software",
	"CONSUMABLE": "consumable",
}

var itemCategoryOrder = []string{
	"weapon", "armor", "implant", "hardware", "software", "consumable",
}

type stockItem struct {
	ID      string
	IsLegal bool
}

// loadStock reads the id and legality of every item in the world,
// keyed by category, so the linker can draw without per-slot queries.
func loadStock(ctx context.Context, tx *sql.Tx, worldID string) (map[string][]stockItem, error) {
	stock := make(map[string][]stockItem, len(itemCategoryOrder))
	for _, cat := range itemCategoryOrder {
		table := store.ItemTables[cat]
		rows, err := tx.QueryContext(ctx,
			fmt.Sprintf("SELECT id, is_legal FROM %s WHERE world_id = ?", table), worldID)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s stock: %w", table, err)
		}
		for rows.Next() {
			var it stockItem
			var legal int
			if err := rows.Scan(&it.ID, &legal); err != nil {
				rows.Close()
				return nil, err
			}
			it.IsLegal = legal != 0
			stock[cat] = append(stock[cat], it)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return stock, nil
}

// linkInventory fills every shop with 5 to 15 inventory slots. A slot
// draws from the shop's preferred category 80% of the time, uniformly
// otherwise. Legal shops reroll illegal picks with 80% probability per
// attempt, so a trickle of contraband still reaches legitimate
// shelves. The item reference is the weak (item_type, item_id) pair.
func (p *Pipeline) linkInventory(ctx context.Context, tx *sql.Tx, rng *rand.Rand, shops []genShop) (int, error) {
	stock, err := loadStock(ctx, tx, p.WorldID)
	if err != nil {
		return 0, err
	}

	insert := `
		INSERT INTO shop_inventory (id, shop_id, item_type, item_id, quantity,
			price_modifier, is_featured, is_limited_time, expiry_date, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	linked := 0
	for _, shop := range shops {
		slots := between(rng, 5, 15)
		for s := 0; s < slots; s++ {
			cat, item, ok := drawItem(rng, stock, shop)
			if !ok {
				continue
			}

			featured := chance(rng, 20)
			limited := chance(rng, 10)
			var expiry any
			if limited {
				expiry = time.Now().UTC().
					AddDate(0, 0, between(rng, 1, 14)).Format("2006-01-02")
			}
			md := fmt.Sprintf(`{"restock_days": %d}`, between(rng, 1, 30))

			_, err := tx.ExecContext(ctx, insert,
				ident.New("inv"), shop.ID, categoryItemType(cat), item.ID,
				between(rng, 1, 5), 0.8+rng.Float64()*0.4,
				boolToInt(featured), boolToInt(limited), expiry, md)
			if err != nil {
				return linked, fmt.Errorf("failed to insert inventory row: %w", err)
			}
			linked++
		}
	}

	logging.Shop("Linked %d inventory rows across %d shops for world %s",
		linked, len(shops), p.WorldID)
	return linked, nil
}

// drawItem picks a category and item for one slot, applying the
// preferred-category bias and the legality reroll.
func drawItem(rng *rand.Rand, stock map[string][]stockItem, shop genShop) (string, stockItem, bool) {
	pickOne := func() (string, stockItem, bool) {
		cat := ""
		if preferred, ok := shopPreferredCategory[shop.Type]; ok && chance(rng, 80) {
			cat = preferred
		} else {
			cat = pick(rng, itemCategoryOrder)
		}
		items := stock[cat]
		if len(items) == 0 {
			// Preferred shelf is empty; fall back to any stocked category.
			for _, c := range itemCategoryOrder {
				if len(stock[c]) > 0 {
					cat = c
					items = stock[c]
					break
				}
			}
		}
		if len(items) == 0 {
			return "", stockItem{}, false
		}
		return cat, pick(rng, items), true
	}

	cat, item, ok := pickOne()
	if !ok {
		return "", stockItem{}, false
	}
	if shop.IsLegal {
		for attempt := 0; attempt < 5 && !item.IsLegal; attempt++ {
			if !chance(rng, 80) {
				break
			}
			cat, item, _ = pickOne()
		}
	} else {
		// Fences prefer goods that cannot be sold openly.
		for attempt := 0; attempt < 5 && item.IsLegal; attempt++ {
			if !chance(rng, 60) {
				break
			}
			cat, item, _ = pickOne()
		}
	}
	return cat, item, true
}

// categoryItemType renders the item_type value stored in
// shop_inventory, the uppercase category name.
func categoryItemType(cat string) string {
	switch cat {
	case "weapon":
		return "WEAPON"
	case "armor":
		return "ARMOR"
	case "implant":
		return "IMPLANT"
	case "hardware":
		return "HARDWARE"
	case "software":
		return "SOFTWARE"
	case "consumable":
		return "CONSUMABLE"
	default:
		return cat
	}
}
