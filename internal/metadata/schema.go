// Package metadata normalizes free-form item attributes onto fixed
// per-category templates and serializes them as the JSON blob stored in
// every item table's metadata column. The game runtime tolerates unknown
// keys and supplies its own defaults for absent ones, so the contract is
// forward-compatible but not versioned.
package metadata

import (
	"encoding/json"
	"fmt"
	"sort"

	"worldforge/internal/logging"
)

// Item categories with a registered template.
const (
	CategoryWeapon     = "weapon"
	CategoryArmor      = "armor"
	CategoryImplant    = "implant"
	CategoryConsumable = "consumable"
	CategoryFood       = "food"
	CategoryHardware   = "hardware"
	CategorySoftware   = "software"
)

// Schema describes the metadata shape of one item category: which keys
// are required, which are recognized but optional, and the default value
// for every required key.
type Schema struct {
	Required []string
	Optional []string
	Defaults map[string]any
}

// recognized reports whether the schema accepts the given key.
func (s *Schema) recognized(key string) bool {
	for _, f := range s.Required {
		if f == key {
			return true
		}
	}
	for _, f := range s.Optional {
		if f == key {
			return true
		}
	}
	return false
}

var schemas = map[string]*Schema{
	CategoryWeapon: {
		Required: []string{"damage_type", "damage", "accuracy", "range"},
		Optional: []string{
			"critical_chance", "critical_multiplier", "ammo_type", "ammo_capacity",
			"fire_rate", "fire_modes", "reload_time", "attachments", "durability",
			"condition", "weight", "special_effects", "combat_bonus",
			"required_level", "manufacturer", "model", "is_two_handed",
		},
		Defaults: map[string]any{
			"damage_type":         "PHYSICAL",
			"damage":              10,
			"accuracy":            70,
			"range":               10,
			"critical_chance":     5,
			"critical_multiplier": 1.5,
		},
	},
	CategoryArmor: {
		Required: []string{"defense_type", "defense", "durability"},
		Optional: []string{
			"resistance", "mobility_penalty", "slots", "condition", "weight",
			"required_level", "manufacturer", "special_effects",
		},
		Defaults: map[string]any{
			"defense_type": "PHYSICAL",
			"defense":      5,
			"durability":   100,
			"resistance": map[string]any{
				"PHYSICAL": 0,
				"ENERGY":   0,
				"THERMAL":  0,
				"CHEMICAL": 0,
				"EMP":      0,
			},
			"mobility_penalty": 0,
		},
	},
	CategoryImplant: {
		Required: []string{"stats_bonus", "humanity_cost", "surgery_difficulty"},
		Optional: []string{
			"side_effects", "compatibility", "special_abilities",
			"power_consumption", "required_level", "manufacturer",
		},
		Defaults: map[string]any{
			"stats_bonus": map[string]any{
				"STRENGTH":     0,
				"AGILITY":      0,
				"INTELLIGENCE": 0,
				"PERCEPTION":   0,
				"CHARISMA":     0,
			},
			"humanity_cost":      5,
			"surgery_difficulty": 3,
			"side_effects":       []any{},
			"compatibility":      []any{"ALL"},
			"special_abilities":  []any{},
		},
	},
	CategoryConsumable: {
		Required: []string{"effects", "duration"},
		Optional: []string{
			"addiction_chance", "side_effects", "taste", "quality",
			"nutrition_value", "manufacturer", "weight",
		},
		Defaults: map[string]any{
			"effects": []any{
				map[string]any{"stat": "HEALTH", "value": 10, "type": "INSTANT"},
			},
			"duration":         0,
			"addiction_chance": 0,
			"side_effects":     []any{},
			"taste":            "NEUTRAL",
			"quality":          1,
		},
	},
	CategoryFood: {
		Required: []string{"effects", "duration", "nutrition_value"},
		Optional: []string{
			"food_type", "calories", "taste", "shelf_life", "side_effects",
			"ingredients", "cuisine_type", "freshness", "expiration_date",
			"addiction_chance", "quality", "manufacturer", "weight",
		},
		Defaults: map[string]any{
			"effects": []any{
				map[string]any{"stat": "HEALTH", "value": 10, "type": "INSTANT"},
			},
			"duration":        0,
			"nutrition_value": 5,
			"calories":        200,
			"ingredients":     []any{},
			"cuisine_type":    "Standard",
			"freshness":       100,
		},
	},
	CategoryHardware: {
		Required: []string{"stats", "power_consumption"},
		Optional: []string{
			"compatibility", "heat_generation", "noise_level", "reliability",
			"quality", "manufacturer", "required_level",
		},
		Defaults: map[string]any{
			"stats": map[string]any{
				"processing_power": 10,
				"memory":           8,
				"storage":          256,
			},
			"power_consumption": 5,
			"compatibility":     []any{"STANDARD"},
			"heat_generation":   2,
			"reliability":       90,
		},
	},
	CategorySoftware: {
		Required: []string{"features", "system_requirements"},
		Optional: []string{
			"compatibility", "install_size", "encryption_level", "license_type",
			"version", "manufacturer", "required_level",
		},
		Defaults: map[string]any{
			"features": []any{"Basic functionality"},
			"system_requirements": map[string]any{
				"min_processing_power": 5,
				"min_memory":           4,
				"min_storage":          50,
			},
			"compatibility":    []any{"STANDARD"},
			"install_size":     100,
			"encryption_level": 1,
		},
	},
}

// Categories returns the registered category names in sorted order.
func Categories() []string {
	out := make([]string, 0, len(schemas))
	for c := range schemas {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// SchemaFor returns the schema registered for a category, or nil.
func SchemaFor(category string) *Schema {
	return schemas[category]
}

// Standardize builds a complete metadata map for the given category:
// template defaults first, then caller overrides for recognized keys.
// Unrecognized override keys are silently dropped so that generator
// evolution does not break older callers.
func Standardize(category string, overrides map[string]any) (map[string]any, error) {
	schema, ok := schemas[category]
	if !ok {
		return nil, fmt.Errorf("unknown item category: %q", category)
	}

	out := make(map[string]any, len(schema.Defaults)+len(overrides))
	for k, v := range schema.Defaults {
		out[k] = cloneValue(v)
	}

	dropped := 0
	for k, v := range overrides {
		if !schema.recognized(k) {
			dropped++
			continue
		}
		// Nested default maps (stats_bonus, resistance...) merge with the
		// override rather than being replaced wholesale, matching how
		// partial stat bonuses are supplied by generators.
		if base, ok := out[k].(map[string]any); ok {
			if patch, ok := v.(map[string]any); ok {
				for pk, pv := range patch {
					base[pk] = pv
				}
				continue
			}
		}
		out[k] = v
	}
	if dropped > 0 {
		logging.MetadataDebug("standardize %s: dropped %d unrecognized keys", category, dropped)
	}

	return out, nil
}

// Validate checks presence of the category's required keys. Value ranges
// are deliberately not checked; the game runtime owns those semantics.
func Validate(category string, md map[string]any) (bool, []string) {
	schema, ok := schemas[category]
	if !ok {
		return false, []string{fmt.Sprintf("unknown item category: %q", category)}
	}

	var errs []string
	for _, field := range schema.Required {
		v, present := md[field]
		if !present {
			errs = append(errs, fmt.Sprintf("missing required field: %s", field))
			continue
		}
		if v == nil {
			errs = append(errs, fmt.Sprintf("required field is null: %s", field))
		}
	}
	return len(errs) == 0, errs
}

// ToJSON serializes a metadata map. Marshal failures fall back to the
// empty object so a bad blob never aborts a generation batch.
func ToJSON(md map[string]any) string {
	data, err := json.Marshal(md)
	if err != nil {
		logging.Get(logging.CategoryMetadata).Error("metadata marshal failed: %v", err)
		return "{}"
	}
	return string(data)
}

// ParseJSON decodes a metadata blob. Empty or malformed input yields an
// empty map, never an error: legacy rows carry all kinds of garbage here.
func ParseJSON(blob string) map[string]any {
	if blob == "" {
		return map[string]any{}
	}
	var md map[string]any
	if err := json.Unmarshal([]byte(blob), &md); err != nil {
		logging.MetadataDebug("metadata parse failed, returning empty map: %v", err)
		return map[string]any{}
	}
	if md == nil {
		return map[string]any{}
	}
	return md
}

// cloneValue deep-copies template defaults so callers can't mutate the
// shared schema tables through a returned map.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = cloneValue(vv)
		}
		return out
	default:
		return v
	}
}
