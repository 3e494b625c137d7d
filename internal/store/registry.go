// Package store owns the SQLite world database: a declarative schema
// registry, the store handle every generator writes through, and the
// reconciler that heals schema drift between independently-run tools.
package store

import (
	"fmt"
	"sort"
	"strings"
)

// ColumnSpec declares one column of a registered table: name, SQL type,
// and the default literal used both in CREATE templates and in additive
// ALTER TABLE repairs.
type ColumnSpec struct {
	Name    string
	Type    string
	NotNull bool
	Default string // SQL literal, empty means no default
}

// ForeignKey declares a reference rendered into the CREATE template.
type ForeignKey struct {
	Column   string
	RefTable string
	OnDelete string // CASCADE or SET NULL
}

// TableSpec is the registry entry for one logical table. The id column
// is always TEXT PRIMARY KEY and is implied, not listed in Columns.
type TableSpec struct {
	Name        string
	Columns     []ColumnSpec
	ForeignKeys []ForeignKey
	Indexes     []string // indexed column names
}

// CreateSQL renders the full CREATE TABLE IF NOT EXISTS template.
func (t *TableSpec) CreateSQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n\tid TEXT PRIMARY KEY", t.Name)
	for _, c := range t.Columns {
		b.WriteString(",\n\t")
		b.WriteString(c.Name)
		b.WriteString(" ")
		b.WriteString(c.Type)
		if c.NotNull {
			b.WriteString(" NOT NULL")
		}
		if c.Default != "" {
			b.WriteString(" DEFAULT ")
			b.WriteString(c.Default)
		}
	}
	for _, fk := range t.ForeignKeys {
		fmt.Fprintf(&b, ",\n\tFOREIGN KEY (%s) REFERENCES %s (id)", fk.Column, fk.RefTable)
		if fk.OnDelete != "" {
			fmt.Fprintf(&b, " ON DELETE %s", fk.OnDelete)
		}
	}
	b.WriteString("\n)")
	return b.String()
}

// IndexSQL renders CREATE INDEX IF NOT EXISTS statements.
func (t *TableSpec) IndexSQL() []string {
	out := make([]string, 0, len(t.Indexes))
	for _, col := range t.Indexes {
		out = append(out, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", t.Name, col, t.Name, col))
	}
	return out
}

// ItemTables maps item category -> physical table name. These are the
// six parallel item tables referenced by shop_inventory's weak
// (item_type, item_id) pairs.
var ItemTables = map[string]string{
	"weapon":     "weapon_items",
	"armor":      "armor_items",
	"implant":    "implant_items",
	"hardware":   "hardware_items",
	"software":   "software_items",
	"consumable": "consumable_items",
}

// itemTableSpec builds the spec for one item table: the shared column
// set plus the category's own stat columns. Placement uses the
// (location_type, location_id) tagged-union pair, so no foreign key is
// possible on location_id.
func itemTableSpec(table, subtypeCol string, stats []ColumnSpec) TableSpec {
	cols := []ColumnSpec{
		{Name: "world_id", Type: "TEXT", NotNull: true},
		{Name: "name", Type: "TEXT", NotNull: true},
		{Name: "description", Type: "TEXT"},
		{Name: subtypeCol, Type: "TEXT", NotNull: true},
	}
	cols = append(cols, stats...)
	cols = append(cols,
		ColumnSpec{Name: "rarity", Type: "TEXT", Default: "'COMMON'"},
		ColumnSpec{Name: "quality", Type: "INTEGER", Default: "0"},
		ColumnSpec{Name: "price", Type: "INTEGER", Default: "100"},
		ColumnSpec{Name: "required_level", Type: "INTEGER", Default: "1"},
		ColumnSpec{Name: "is_legal", Type: "INTEGER", Default: "1"},
		ColumnSpec{Name: "location_type", Type: "TEXT"},
		ColumnSpec{Name: "location_id", Type: "TEXT"},
		ColumnSpec{Name: "metadata", Type: "TEXT"},
	)
	return TableSpec{
		Name:    table,
		Columns: cols,
		ForeignKeys: []ForeignKey{
			{Column: "world_id", RefTable: "worlds", OnDelete: "CASCADE"},
		},
		Indexes: []string{"world_id", "rarity"},
	}
}

// registry is the single schema owner. Generators never carry their own
// CREATE TABLE statements; they call EnsureTable, and the reconciler
// reads the same specs when repairing legacy databases.
var registry = buildRegistry()

func buildRegistry() map[string]TableSpec {
	specs := []TableSpec{
		{
			Name: "worlds",
			Columns: []ColumnSpec{
				{Name: "name", Type: "TEXT", NotNull: true},
				{Name: "description", Type: "TEXT"},
				{Name: "author", Type: "TEXT"},
				{Name: "created_at", Type: "TIMESTAMP", Default: "CURRENT_TIMESTAMP"},
				{Name: "updated_at", Type: "TIMESTAMP", Default: "CURRENT_TIMESTAMP"},
				{Name: "version", Type: "TEXT"},
				{Name: "tags", Type: "TEXT"},
				{Name: "is_active", Type: "INTEGER", Default: "0"},
				{Name: "complexity", Type: "INTEGER", Default: "3"},
				{Name: "metadata", Type: "TEXT"},
			},
		},
		{
			Name: "locations",
			Columns: []ColumnSpec{
				{Name: "world_id", Type: "TEXT", NotNull: true},
				{Name: "name", Type: "TEXT", NotNull: true},
				{Name: "description", Type: "TEXT"},
				{Name: "coordinates", Type: "TEXT"},
				{Name: "security_level", Type: "INTEGER", Default: "1"},
				{Name: "population", Type: "INTEGER", Default: "0"},
				{Name: "services", Type: "TEXT"},
				{Name: "tags", Type: "TEXT"},
				{Name: "parent_location_id", Type: "TEXT"},
				{Name: "is_virtual", Type: "INTEGER", Default: "0"},
				{Name: "is_special", Type: "INTEGER", Default: "0"},
				{Name: "is_dangerous", Type: "INTEGER", Default: "0"},
				{Name: "location_type", Type: "TEXT", Default: "'unknown'"},
				{Name: "metadata", Type: "TEXT"},
			},
			ForeignKeys: []ForeignKey{
				{Column: "world_id", RefTable: "worlds", OnDelete: "CASCADE"},
				{Column: "parent_location_id", RefTable: "locations", OnDelete: "SET NULL"},
			},
			Indexes: []string{"world_id"},
		},
		{
			Name: "connections",
			Columns: []ColumnSpec{
				{Name: "world_id", Type: "TEXT", NotNull: true},
				{Name: "source_id", Type: "TEXT", NotNull: true},
				{Name: "destination_id", Type: "TEXT", NotNull: true},
				{Name: "travel_type", Type: "TEXT"},
				{Name: "travel_time", Type: "REAL", Default: "1.0"},
				{Name: "travel_cost", Type: "INTEGER", Default: "0"},
				{Name: "requires_hacking", Type: "INTEGER", Default: "0"},
				{Name: "requires_special_access", Type: "INTEGER", Default: "0"},
				{Name: "metadata", Type: "TEXT"},
			},
			ForeignKeys: []ForeignKey{
				{Column: "world_id", RefTable: "worlds", OnDelete: "CASCADE"},
				{Column: "source_id", RefTable: "locations", OnDelete: "CASCADE"},
				{Column: "destination_id", RefTable: "locations", OnDelete: "CASCADE"},
			},
			Indexes: []string{"world_id", "source_id"},
		},
		{
			Name: "buildings",
			Columns: []ColumnSpec{
				{Name: "world_id", Type: "TEXT", NotNull: true},
				{Name: "location_id", Type: "TEXT", NotNull: true},
				{Name: "name", Type: "TEXT", NotNull: true},
				{Name: "description", Type: "TEXT"},
				{Name: "building_type", Type: "TEXT"},
				{Name: "floors", Type: "INTEGER", Default: "1"},
				{Name: "security_level", Type: "INTEGER", Default: "1"},
				{Name: "owner_id", Type: "TEXT"},
				{Name: "is_restricted", Type: "INTEGER", Default: "0"},
				{Name: "is_abandoned", Type: "INTEGER", Default: "0"},
				{Name: "metadata", Type: "TEXT"},
			},
			ForeignKeys: []ForeignKey{
				{Column: "world_id", RefTable: "worlds", OnDelete: "CASCADE"},
				{Column: "location_id", RefTable: "locations", OnDelete: "CASCADE"},
			},
			Indexes: []string{"world_id", "location_id"},
		},
		{
			Name: "rooms",
			Columns: []ColumnSpec{
				{Name: "world_id", Type: "TEXT", NotNull: true},
				{Name: "building_id", Type: "TEXT", NotNull: true},
				{Name: "name", Type: "TEXT", NotNull: true},
				{Name: "floor", Type: "INTEGER", Default: "0"},
				{Name: "room_type", Type: "TEXT"},
				{Name: "size", Type: "INTEGER", Default: "10"},
				{Name: "is_locked", Type: "INTEGER", Default: "0"},
				{Name: "is_restricted", Type: "INTEGER", Default: "0"},
				{Name: "metadata", Type: "TEXT"},
			},
			ForeignKeys: []ForeignKey{
				{Column: "world_id", RefTable: "worlds", OnDelete: "CASCADE"},
				{Column: "building_id", RefTable: "buildings", OnDelete: "CASCADE"},
			},
			Indexes: []string{"building_id"},
		},
		{
			Name: "characters",
			Columns: []ColumnSpec{
				{Name: "world_id", Type: "TEXT", NotNull: true},
				{Name: "name", Type: "TEXT", NotNull: true},
				{Name: "description", Type: "TEXT"},
				{Name: "location_id", Type: "TEXT"},
				{Name: "faction", Type: "TEXT"},
				{Name: "profession", Type: "TEXT"},
				{Name: "gender", Type: "TEXT"},
				{Name: "importance", Type: "INTEGER", Default: "1"},
				{Name: "hacking_level", Type: "INTEGER", Default: "0"},
				{Name: "combat_level", Type: "INTEGER", Default: "0"},
				{Name: "charisma", Type: "INTEGER", Default: "1"},
				{Name: "wealth", Type: "INTEGER", Default: "0"},
				{Name: "is_quest_giver", Type: "INTEGER", Default: "0"},
				{Name: "is_vendor", Type: "INTEGER", Default: "0"},
				{Name: "is_hostile", Type: "INTEGER", Default: "0"},
				{Name: "enemy_type", Type: "TEXT", Default: "'HUMAN'"},
				{Name: "health", Type: "INTEGER", Default: "50"},
				{Name: "damage", Type: "INTEGER", Default: "5"},
				{Name: "accuracy", Type: "REAL", Default: "0.5"},
				{Name: "initiative", Type: "INTEGER", Default: "3"},
				{Name: "hostility", Type: "INTEGER", Default: "0"},
				{Name: "resistance_physical", Type: "INTEGER", Default: "0"},
				{Name: "resistance_energy", Type: "INTEGER", Default: "0"},
				{Name: "resistance_emp", Type: "INTEGER", Default: "0"},
				{Name: "resistance_biohazard", Type: "INTEGER", Default: "0"},
				{Name: "resistance_cyber", Type: "INTEGER", Default: "0"},
				{Name: "resistance_viral", Type: "INTEGER", Default: "0"},
				{Name: "resistance_nanite", Type: "INTEGER", Default: "0"},
				{Name: "ai_behavior", Type: "TEXT", Default: "'balanced'"},
				{Name: "combat_style", Type: "TEXT", Default: "'balanced'"},
				{Name: "special_abilities", Type: "TEXT", Default: "''"},
				{Name: "equipment_slots", Type: "TEXT", Default: "'weapon,armor,accessory'"},
				{Name: "metadata", Type: "TEXT"},
			},
			ForeignKeys: []ForeignKey{
				{Column: "world_id", RefTable: "worlds", OnDelete: "CASCADE"},
				{Column: "location_id", RefTable: "locations", OnDelete: "SET NULL"},
			},
			Indexes: []string{"world_id", "location_id"},
		},
		{
			Name: "devices",
			Columns: []ColumnSpec{
				{Name: "world_id", Type: "TEXT", NotNull: true},
				{Name: "name", Type: "TEXT", NotNull: true},
				{Name: "device_type", Type: "TEXT"},
				{Name: "os_type", Type: "TEXT"},
				{Name: "security_level", Type: "INTEGER", Default: "1"},
				{Name: "location_id", Type: "TEXT"},
				{Name: "building_id", Type: "TEXT"},
				{Name: "owner_id", Type: "TEXT"},
				{Name: "is_connected", Type: "INTEGER", Default: "1"},
				{Name: "metadata", Type: "TEXT"},
			},
			ForeignKeys: []ForeignKey{
				{Column: "world_id", RefTable: "worlds", OnDelete: "CASCADE"},
			},
			Indexes: []string{"world_id"},
		},
		{
			Name: "networks",
			Columns: []ColumnSpec{
				{Name: "world_id", Type: "TEXT", NotNull: true},
				{Name: "building_id", Type: "TEXT", NotNull: true},
				{Name: "name", Type: "TEXT", NotNull: true},
				{Name: "network_type", Type: "TEXT"},
				{Name: "security_level", Type: "TEXT"},
				{Name: "encryption_type", Type: "TEXT"},
				{Name: "is_hidden", Type: "INTEGER", Default: "0"},
				{Name: "metadata", Type: "TEXT"},
			},
			ForeignKeys: []ForeignKey{
				{Column: "world_id", RefTable: "worlds", OnDelete: "CASCADE"},
				{Column: "building_id", RefTable: "buildings", OnDelete: "CASCADE"},
			},
			Indexes: []string{"building_id"},
		},
		{
			Name: "files",
			Columns: []ColumnSpec{
				{Name: "world_id", Type: "TEXT", NotNull: true},
				{Name: "device_id", Type: "TEXT", NotNull: true},
				{Name: "name", Type: "TEXT", NotNull: true},
				{Name: "file_type", Type: "TEXT"},
				{Name: "size_kb", Type: "INTEGER", Default: "1"},
				{Name: "importance", Type: "INTEGER", Default: "1"},
				{Name: "is_encrypted", Type: "INTEGER", Default: "0"},
				{Name: "content", Type: "TEXT"},
				{Name: "metadata", Type: "TEXT"},
			},
			ForeignKeys: []ForeignKey{
				{Column: "world_id", RefTable: "worlds", OnDelete: "CASCADE"},
				{Column: "device_id", RefTable: "devices", OnDelete: "CASCADE"},
			},
			Indexes: []string{"device_id"},
		},
		{
			Name: "shops",
			Columns: []ColumnSpec{
				{Name: "world_id", Type: "TEXT", NotNull: true},
				{Name: "name", Type: "TEXT", NotNull: true},
				{Name: "shop_type", Type: "TEXT", NotNull: true},
				{Name: "description", Type: "TEXT"},
				{Name: "location_id", Type: "TEXT"},
				{Name: "building_id", Type: "TEXT"},
				{Name: "owner_id", Type: "TEXT"},
				{Name: "is_legal", Type: "INTEGER", Default: "1"},
				{Name: "price_modifier", Type: "REAL", Default: "1.0"},
				{Name: "metadata", Type: "TEXT"},
			},
			ForeignKeys: []ForeignKey{
				{Column: "world_id", RefTable: "worlds", OnDelete: "CASCADE"},
				{Column: "location_id", RefTable: "locations", OnDelete: "SET NULL"},
				{Column: "building_id", RefTable: "buildings", OnDelete: "SET NULL"},
			},
			Indexes: []string{"world_id", "location_id"},
		},
		{
			// item_id is a weak reference into one of the six item tables
			// selected by item_type; SQLite cannot express that as a
			// foreign key, which is why the auditor exists.
			Name: "shop_inventory",
			Columns: []ColumnSpec{
				{Name: "shop_id", Type: "TEXT", NotNull: true},
				{Name: "item_type", Type: "TEXT", NotNull: true},
				{Name: "item_id", Type: "TEXT", NotNull: true},
				{Name: "quantity", Type: "INTEGER", Default: "1"},
				{Name: "price_modifier", Type: "REAL", Default: "1.0"},
				{Name: "is_featured", Type: "INTEGER", Default: "0"},
				{Name: "is_limited_time", Type: "INTEGER", Default: "0"},
				{Name: "expiry_date", Type: "TEXT"},
				{Name: "added_at", Type: "TIMESTAMP", Default: "CURRENT_TIMESTAMP"},
				{Name: "metadata", Type: "TEXT"},
			},
			ForeignKeys: []ForeignKey{
				{Column: "shop_id", RefTable: "shops", OnDelete: "CASCADE"},
			},
			Indexes: []string{"shop_id", "item_type"},
		},

		itemTableSpec("weapon_items", "weapon_type", []ColumnSpec{
			{Name: "damage", Type: "INTEGER", Default: "10"},
			{Name: "damage_type", Type: "TEXT", Default: "'PHYSICAL'"},
			{Name: "accuracy", Type: "INTEGER", Default: "70"},
			{Name: "range", Type: "INTEGER", Default: "10"},
		}),
		itemTableSpec("armor_items", "armor_type", []ColumnSpec{
			{Name: "defense", Type: "INTEGER", Default: "5"},
			{Name: "defense_type", Type: "TEXT", Default: "'PHYSICAL'"},
			{Name: "durability", Type: "INTEGER", Default: "100"},
			{Name: "slots", Type: "TEXT"},
		}),
		itemTableSpec("implant_items", "implant_type", []ColumnSpec{
			{Name: "humanity_cost", Type: "INTEGER", Default: "5"},
			{Name: "surgery_difficulty", Type: "INTEGER", Default: "3"},
		}),
		itemTableSpec("hardware_items", "hardware_type", []ColumnSpec{
			{Name: "processing_power", Type: "INTEGER", Default: "10"},
			{Name: "memory", Type: "INTEGER", Default: "8"},
			{Name: "manufacturer", Type: "TEXT"},
		}),
		itemTableSpec("software_items", "software_type", []ColumnSpec{
			{Name: "version", Type: "TEXT"},
			{Name: "license_type", Type: "TEXT"},
			{Name: "install_size", Type: "INTEGER", Default: "100"},
		}),
		itemTableSpec("consumable_items", "consumable_type", []ColumnSpec{
			{Name: "duration", Type: "INTEGER", Default: "0"},
			{Name: "uses", Type: "INTEGER", Default: "1"},
		}),
	}

	reg := make(map[string]TableSpec, len(specs))
	for _, s := range specs {
		reg[s.Name] = s
	}
	return reg
}

// Spec returns the registered spec for a table, or false.
func Spec(table string) (TableSpec, bool) {
	s, ok := registry[table]
	return s, ok
}

// Tables returns all registered table names in creation order: parents
// before children so foreign keys resolve.
func Tables() []string {
	order := []string{
		"worlds", "locations", "connections", "buildings", "rooms",
		"characters", "devices", "networks", "files", "shops", "shop_inventory",
	}
	items := make([]string, 0, len(ItemTables))
	for _, t := range ItemTables {
		items = append(items, t)
	}
	sort.Strings(items)
	return append(order, items...)
}
