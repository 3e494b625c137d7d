// Package gen builds world content: locations, buildings, characters,
// devices, networks, the six item categories, shops, and the inventory
// links between them. Every generator draws from a single seeded RNG so
// a (seed, config) pair always produces the same world.
package gen

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// seededRNG derives a PCG generator from the world seed. Stage names
// salt the seed so adding draws to one stage does not shift another.
//
// Non-cryptographic PRNG is intentional for deterministic generation.
// #nosec G404
func seededRNG(seed int64, stage string) *rand.Rand {
	return rand.New(rand.NewPCG(seedWord(seed, stage+":a"), seedWord(seed, stage+":b")))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// weightedChoice picks a key from weights, where each weight is the
// key's share of the total. Zero and negative weights never win. An
// empty or all-zero table returns "".
func weightedChoice(rng *rand.Rand, weights map[string]int, order []string) string {
	total := 0
	for _, k := range order {
		if w := weights[k]; w > 0 {
			total += w
		}
	}
	if total == 0 {
		return ""
	}
	roll := rng.IntN(total)
	for _, k := range order {
		w := weights[k]
		if w <= 0 {
			continue
		}
		if roll < w {
			return k
		}
		roll -= w
	}
	return order[len(order)-1]
}

// pick returns a uniform choice from a non-empty slice.
func pick[T any](rng *rand.Rand, opts []T) T {
	return opts[rng.IntN(len(opts))]
}

// between returns a uniform integer in [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

// chance reports true with probability pct/100.
func chance(rng *rand.Rand, pct int) bool {
	return rng.IntN(100) < pct
}

// clampInt keeps v inside [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampFloat keeps v inside [lo, hi].
func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
