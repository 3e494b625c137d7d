package ident

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	id := New("weapon")
	assert.True(t, strings.HasPrefix(id, "weapon_"))
	assert.Greater(t, len(id), len("weapon_"))
}

func TestNewWithoutCategory(t *testing.T) {
	id := New("")
	assert.NotEmpty(t, id)
	assert.Equal(t, "", Category(id))
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected string
	}{
		{"weapon prefix", New("weapon"), "weapon"},
		{"multi-word prefix", New("shop_inventory"), "shop_inventory"},
		{"no prefix", "not-an-id", ""},
		{"underscore but no uuid", "weapon_9", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Category(tt.id))
		})
	}
}

func TestUniqueness(t *testing.T) {
	const n = 100000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := New("inv")
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate identifier after %d allocations: %s", i, id)
		}
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
}
