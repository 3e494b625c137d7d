package metadata

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardizeCompleteness(t *testing.T) {
	// For every category, the empty-override case must yield every
	// required key with a non-nil value.
	for _, category := range Categories() {
		t.Run(category, func(t *testing.T) {
			md, err := Standardize(category, nil)
			require.NoError(t, err)

			schema := SchemaFor(category)
			require.NotNil(t, schema)
			for _, field := range schema.Required {
				v, ok := md[field]
				assert.True(t, ok, "required field %s missing", field)
				assert.NotNil(t, v, "required field %s is nil", field)
			}

			valid, errs := Validate(category, md)
			assert.True(t, valid, "validation errors: %v", errs)
		})
	}
}

func TestStandardizeUnknownCategory(t *testing.T) {
	_, err := Standardize("vehicle", nil)
	assert.Error(t, err)
}

func TestStandardizeOverrides(t *testing.T) {
	md, err := Standardize(CategoryWeapon, map[string]any{
		"damage":      42,
		"damage_type": "ENERGY",
		"paint_color": "red", // unrecognized, must be dropped
	})
	require.NoError(t, err)

	assert.Equal(t, 42, md["damage"])
	assert.Equal(t, "ENERGY", md["damage_type"])
	assert.NotContains(t, md, "paint_color")
	// Untouched defaults survive.
	assert.Equal(t, 70, md["accuracy"])
}

func TestStandardizeMergesNestedDefaults(t *testing.T) {
	md, err := Standardize(CategoryImplant, map[string]any{
		"stats_bonus": map[string]any{"STRENGTH": 3},
	})
	require.NoError(t, err)

	bonus, ok := md["stats_bonus"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, bonus["STRENGTH"])
	// Other stats keep their zero defaults rather than disappearing.
	assert.Equal(t, 0, bonus["AGILITY"])
	assert.Equal(t, 0, bonus["CHARISMA"])
}

func TestStandardizeDoesNotShareDefaults(t *testing.T) {
	first, err := Standardize(CategoryImplant, map[string]any{
		"stats_bonus": map[string]any{"STRENGTH": 9},
	})
	require.NoError(t, err)

	second, err := Standardize(CategoryImplant, nil)
	require.NoError(t, err)

	firstBonus := first["stats_bonus"].(map[string]any)
	secondBonus := second["stats_bonus"].(map[string]any)
	assert.Equal(t, 9, firstBonus["STRENGTH"])
	assert.Equal(t, 0, secondBonus["STRENGTH"], "template defaults were mutated by a previous call")
}

func TestValidateMissingRequired(t *testing.T) {
	valid, errs := Validate(CategoryWeapon, map[string]any{"damage": 5})
	assert.False(t, valid)
	assert.Len(t, errs, 3) // damage_type, accuracy, range
}

func TestValidateNullRequired(t *testing.T) {
	md, err := Standardize(CategoryArmor, nil)
	require.NoError(t, err)
	md["defense"] = nil

	valid, errs := Validate(CategoryArmor, md)
	assert.False(t, valid)
	assert.Len(t, errs, 1)
}

func TestJSONRoundTrip(t *testing.T) {
	for _, category := range Categories() {
		t.Run(category, func(t *testing.T) {
			md, err := Standardize(category, nil)
			require.NoError(t, err)

			// First decode normalizes Go numeric types to JSON numbers;
			// from then on the blob must round-trip losslessly.
			decoded := ParseJSON(ToJSON(md))
			again := ParseJSON(ToJSON(decoded))
			if diff := cmp.Diff(decoded, again); diff != "" {
				t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
			}

			// encoding/json sorts map keys, so serialization is stable.
			assert.Equal(t, ToJSON(decoded), ToJSON(again))
		})
	}
}

func TestParseJSONForgiving(t *testing.T) {
	assert.Empty(t, ParseJSON(""))
	assert.Empty(t, ParseJSON("not json at all"))
	assert.Empty(t, ParseJSON("null"))

	md := ParseJSON(`{"damage": 12}`)
	assert.Equal(t, float64(12), md["damage"])
}
