package gen

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"worldforge/internal/ident"
	"worldforge/internal/logging"
)

// Enemy archetypes. Weights come from config; these are the canonical
// names the rest of the pipeline and the auditor expect.
var enemyTypeOrder = []string{
	"HUMAN", "GUARD", "CYBORG", "DRONE", "ROBOT", "NETRUNNER", "MILITECH", "BEAST",
}

// professionEnemyOverrides overrides the weighted roll 70% of the time
// so a character's combat archetype matches what they do for a living.
// Declared order decides which keyword gets first shot when a
// profession matches several, keeping seed replay stable.
var professionEnemyOverrides = []struct {
	keyword string
	enemy   string
}{
	{"security", "GUARD"},
	{"mercenary", "MILITECH"},
	{"soldier", "MILITECH"},
	{"assassin", "MILITECH"},
	{"hacker", "NETRUNNER"},
	{"netrunner", "NETRUNNER"},
	{"programmer", "NETRUNNER"},
	{"engineer", "NETRUNNER"},
}

type resistRange struct {
	physical, energy, emp, biohazard, cyber, viral, nanite [2]int
}

// Per-archetype resistance ranges. Machines shrug off biohazards and
// viruses but fall to EMP; unaugmented humans are the inverse.
var enemyResistances = map[string]resistRange{
	"HUMAN":     {[2]int{0, 15}, [2]int{0, 10}, [2]int{70, 90}, [2]int{10, 30}, [2]int{60, 80}, [2]int{10, 30}, [2]int{0, 20}},
	"GUARD":     {[2]int{20, 40}, [2]int{10, 30}, [2]int{50, 70}, [2]int{10, 30}, [2]int{40, 60}, [2]int{10, 30}, [2]int{10, 30}},
	"CYBORG":    {[2]int{30, 50}, [2]int{20, 40}, [2]int{0, 20}, [2]int{40, 60}, [2]int{10, 30}, [2]int{30, 50}, [2]int{20, 40}},
	"DRONE":     {[2]int{20, 40}, [2]int{10, 30}, [2]int{0, 10}, [2]int{90, 100}, [2]int{0, 20}, [2]int{80, 100}, [2]int{10, 30}},
	"ROBOT":     {[2]int{40, 60}, [2]int{20, 40}, [2]int{0, 10}, [2]int{90, 100}, [2]int{0, 20}, [2]int{80, 100}, [2]int{20, 40}},
	"NETRUNNER": {[2]int{0, 10}, [2]int{0, 10}, [2]int{40, 60}, [2]int{10, 30}, [2]int{70, 90}, [2]int{40, 60}, [2]int{0, 20}},
	"MILITECH":  {[2]int{40, 60}, [2]int{30, 50}, [2]int{30, 50}, [2]int{30, 50}, [2]int{30, 50}, [2]int{30, 50}, [2]int{30, 50}},
	"BEAST":     {[2]int{20, 40}, [2]int{0, 20}, [2]int{90, 100}, [2]int{60, 80}, [2]int{90, 100}, [2]int{40, 60}, [2]int{0, 20}},
}

var enemyAIBehavior = map[string]map[string]int{
	"HUMAN":     {"balanced": 50, "defensive": 30, "aggressive": 20},
	"GUARD":     {"defensive": 50, "balanced": 30, "aggressive": 20},
	"CYBORG":    {"aggressive": 50, "balanced": 30, "defensive": 20},
	"DRONE":     {"swarm": 50, "aggressive": 30, "evasive": 20},
	"ROBOT":     {"defensive": 40, "aggressive": 40, "balanced": 20},
	"NETRUNNER": {"evasive": 50, "support": 30, "balanced": 20},
	"MILITECH":  {"tactical": 50, "aggressive": 30, "defensive": 20},
	"BEAST":     {"aggressive": 60, "ambush": 40},
}

var aiBehaviorOrder = []string{
	"aggressive", "defensive", "balanced", "evasive", "swarm", "support", "tactical", "ambush",
}

// combatBands is the combat_level roll range per profession before the
// difficulty shift. Professions not listed use the civilian band.
var combatBands = map[string][2]int{
	"soldier":             {5, 9},
	"mercenary":           {5, 9},
	"assassin":            {6, 10},
	"security consultant": {4, 7},
	"detective":           {3, 6},
	"smuggler":            {3, 6},
	"courier":             {2, 5},
	"hacker":              {1, 4},
	"netrunner":           {1, 4},
	"programmer":          {1, 3},
	"engineer":            {1, 4},
}

var enemyAbilities = map[string][]string{
	"HUMAN":     {"adrenaline rush", "dirty fighting"},
	"GUARD":     {"shield wall", "alarm call"},
	"CYBORG":    {"overclock", "subdermal plating"},
	"DRONE":     {"evasive thrusters", "target painting"},
	"ROBOT":     {"armor lock", "suppressing fire"},
	"NETRUNNER": {"system crash", "trace redirect"},
	"MILITECH":  {"focus fire", "combat stims"},
	"BEAST":     {"rending claws", "pounce"},
}

var characterBackgrounds = []string{
	"grew up in the undercity", "ex-corporate, burned out",
	"war veteran", "raised by a street gang", "failed academy washout",
	"immigrant from the agro-zones", "old money gone bad",
}

var characterMotivations = []string{
	"pay off a debt", "revenge on a corp", "protect family",
	"make a name", "disappear quietly", "find a cure", "pure greed",
}

var enemyCombatStyles = map[string][]string{
	"HUMAN":     {"balanced", "evasive"},
	"GUARD":     {"defensive", "balanced"},
	"CYBORG":    {"aggressive", "balanced"},
	"DRONE":     {"swarm", "evasive"},
	"ROBOT":     {"defensive", "aggressive"},
	"NETRUNNER": {"evasive", "support"},
	"MILITECH":  {"tactical", "aggressive"},
	"BEAST":     {"aggressive", "ambush"},
}

// CombatStats is the derived block written alongside each character.
type CombatStats struct {
	EnemyType   string
	Health      int
	Damage      int
	Accuracy    float64
	Initiative  int
	Hostility   int
	Resistances map[string]int // keys: physical, energy, emp, biohazard, cyber, viral, nanite
	AIBehavior  string
	CombatStyle string
}

// deriveEnemyType rolls the archetype from the configured weights, with
// a 70% profession override when the profession implies one.
func deriveEnemyType(rng *rand.Rand, weights map[string]int, profession string) string {
	prof := strings.ToLower(profession)
	for _, o := range professionEnemyOverrides {
		if strings.Contains(prof, o.keyword) && chance(rng, 70) {
			return o.enemy
		}
	}
	if et := weightedChoice(rng, weights, enemyTypeOrder); et != "" {
		return et
	}
	return "HUMAN"
}

// deriveCombatStats computes the full combat block for one character.
// difficulty runs 1..5 with 3 neutral; every stat is clamped to its
// documented range so extreme difficulty or level cannot escape it.
func deriveCombatStats(rng *rand.Rand, weights map[string]int, allowedStyles []string,
	profession string, combatLevel, difficulty int, hostile bool) CombatStats {

	enemyType := deriveEnemyType(rng, weights, profession)
	diffScale := 0.8 + 0.1*float64(difficulty)

	health := int(float64(50+10*combatLevel)*diffScale) + between(rng, 0, 50)
	damage := int(float64(5+combatLevel)*diffScale) + between(rng, 0, 5)
	accuracy := clampFloat(
		0.5+0.03*float64(combatLevel)+0.02*float64(difficulty-3)+rng.Float64()*0.1,
		0.5, 0.9)
	initiative := clampInt(
		3+combatLevel/2+(difficulty-3)+between(rng, 0, 3), 3, 10)

	hostility := 0
	if hostile {
		hostility = between(rng, 60, 100)
	} else {
		hostility = between(rng, 0, 30)
	}

	rr := enemyResistances[enemyType]
	diffMod := 5 * (difficulty - 3)
	roll := func(r [2]int) int {
		return clampInt(between(rng, r[0], r[1])+diffMod, 0, 100)
	}
	resistances := map[string]int{
		"physical":  roll(rr.physical),
		"energy":    roll(rr.energy),
		"emp":       roll(rr.emp),
		"biohazard": roll(rr.biohazard),
		"cyber":     roll(rr.cyber),
		"viral":     roll(rr.viral),
		"nanite":    roll(rr.nanite),
	}

	behavior := weightedChoice(rng, enemyAIBehavior[enemyType], aiBehaviorOrder)
	if behavior == "" {
		behavior = "balanced"
	}

	style := "balanced"
	if allowed := intersect(enemyCombatStyles[enemyType], allowedStyles); len(allowed) > 0 {
		style = pick(rng, allowed)
	}

	return CombatStats{
		EnemyType:   enemyType,
		Health:      health,
		Damage:      damage,
		Accuracy:    accuracy,
		Initiative:  initiative,
		Hostility:   hostility,
		Resistances: resistances,
		AIBehavior:  behavior,
		CombatStyle: style,
	}
}

// rollCombatLevel draws from the profession band shifted by
// difficulty, clamped to [0, 10].
func rollCombatLevel(rng *rand.Rand, profession string, difficulty int) int {
	band, ok := combatBands[profession]
	if !ok {
		band = [2]int{1, 5}
	}
	return clampInt(between(rng, band[0], band[1])+(difficulty-3), 0, 10)
}

// rollAbilities grants special abilities with a difficulty-scaled
// chance. A second distinct ability may join, comma separated.
func rollAbilities(rng *rand.Rand, enemyType string, difficulty int) string {
	pool := enemyAbilities[enemyType]
	if len(pool) == 0 || !chance(rng, 10*difficulty) {
		return ""
	}
	first := pick(rng, pool)
	if chance(rng, 5*difficulty) {
		if second := pick(rng, pool); second != first {
			return first + "," + second
		}
	}
	return first
}

// intersect keeps the elements of a that also appear in b, preserving
// a's order. An empty b means "no restriction".
func intersect(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	set := make(map[string]bool, len(b))
	for _, s := range b {
		set[s] = true
	}
	var out []string
	for _, s := range a {
		if set[s] {
			out = append(out, s)
		}
	}
	return out
}

// generateCharacters populates the world with people, deriving a combat
// block for each. Characters land in a random district.
func (p *Pipeline) generateCharacters(ctx context.Context, tx *sql.Tx, rng *rand.Rand, locs []genLocation) ([]string, error) {
	insert := `
		INSERT INTO characters (id, world_id, name, description, location_id,
			faction, profession, gender, importance,
			hacking_level, combat_level, charisma, wealth,
			is_quest_giver, is_vendor, is_hostile,
			enemy_type, health, damage, accuracy, initiative, hostility,
			resistance_physical, resistance_energy, resistance_emp,
			resistance_biohazard, resistance_cyber, resistance_viral,
			resistance_nanite, ai_behavior, combat_style, special_abilities, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var districts []genLocation
	for _, l := range locs {
		if l.Kind == "district" {
			districts = append(districts, l)
		}
	}

	var ids []string
	cc := p.Config.Combat
	for i := 0; i < p.Config.Generation.NumCharacters; i++ {
		id := ident.New("char")
		profession := pick(rng, professions)
		combatLevel := rollCombatLevel(rng, profession, cc.Difficulty)
		hostile := chance(rng, cc.HostilePercent)
		stats := deriveCombatStats(rng, cc.EnemyTypeWeights, cc.CombatStyles,
			profession, combatLevel, cc.Difficulty, hostile)
		abilities := rollAbilities(rng, stats.EnemyType, cc.Difficulty)

		var locID any
		if len(districts) > 0 {
			locID = pick(rng, districts).ID
		}
		gender := pick(rng, []string{"male", "female", "nonbinary"})
		name := personName(rng)
		background := pick(rng, characterBackgrounds)
		md, _ := json.Marshal(map[string]string{
			"background": background,
			"motivation": pick(rng, characterMotivations),
		})

		_, err := tx.ExecContext(ctx, insert,
			id, p.WorldID, name,
			fmt.Sprintf("%s, a %s who %s", name, profession, background), locID,
			pick(rng, factions), profession, gender, between(rng, 1, 5),
			between(rng, 0, 10), combatLevel, between(rng, 1, 10), between(rng, 0, 100_000),
			boolToInt(chance(rng, 15)), boolToInt(chance(rng, 20)), boolToInt(hostile),
			stats.EnemyType, stats.Health, stats.Damage, stats.Accuracy,
			stats.Initiative, stats.Hostility,
			stats.Resistances["physical"], stats.Resistances["energy"],
			stats.Resistances["emp"], stats.Resistances["biohazard"],
			stats.Resistances["cyber"], stats.Resistances["viral"],
			stats.Resistances["nanite"], stats.AIBehavior, stats.CombatStyle,
			abilities, string(md))
		if err != nil {
			return ids, fmt.Errorf("failed to insert character: %w", err)
		}
		ids = append(ids, id)
	}

	logging.Generate("Generated %d characters for world %s", len(ids), p.WorldID)
	return ids, nil
}
