package gen

import (
	"fmt"
	"math/rand/v2"
)

// Name fragment tables. Kept in one place so flavor edits do not touch
// generator logic.

var cityNames = []string{
	"Neo Shanghai", "Night Harbor", "Arc Mesa", "New Carthage", "Tessera",
	"Vantage", "Kowloon Reach", "Meridian", "Hyperion Bay", "Delta Verge",
	"Cinder Heights", "Port Anselm", "Oradea Prime", "Lumen City", "Kestrel Falls",
}

var districtKinds = []string{
	"Downtown", "Industrial Zone", "Residential Sector", "Corporate Plaza",
	"Market Quarter", "Old Town", "Harbor District", "Tech Park",
	"Entertainment Strip", "Undercity",
}

var buildingTypes = []string{
	"apartment", "office", "warehouse", "laboratory", "datacenter",
	"clinic", "factory", "hotel", "nightclub", "parking",
}

var buildingNamePrefixes = []string{
	"Apex", "Helix", "Obsidian", "Vertex", "Nimbus", "Caldera",
	"Solace", "Iron", "Quantum", "Pale",
}

var buildingNameSuffixes = []string{
	"Tower", "Complex", "Block", "Annex", "Works", "Plaza",
	"Hub", "Foundry", "Court", "Spire",
}

var roomTypes = []string{
	"lobby", "office", "server room", "storage", "living quarters",
	"lab", "security post", "maintenance", "lounge", "vault",
}

var firstNames = []string{
	"Aris", "Bex", "Caden", "Dara", "Enzo", "Freya", "Goro", "Hana",
	"Iker", "Juno", "Kael", "Lena", "Mori", "Nadia", "Orin", "Piper",
	"Quinn", "Rio", "Sable", "Tovah", "Ugo", "Vera", "Wren", "Xiu",
	"Yusuf", "Zara",
}

var lastNames = []string{
	"Abernathy", "Brusov", "Castellan", "Duarte", "Eng", "Falk",
	"Gutierrez", "Hoshino", "Ivanova", "Jax", "Kowalczyk", "Laurent",
	"Mbeki", "Navarro", "Okafor", "Petrov", "Qureshi", "Reyes",
	"Soderberg", "Takeda", "Ulloa", "Voss", "Whitlock", "Xiang",
	"Yamada", "Zielinski",
}

var professions = []string{
	"hacker", "mercenary", "fixer", "medic", "engineer", "journalist",
	"bartender", "courier", "security consultant", "programmer",
	"smuggler", "street vendor", "soldier", "assassin", "detective",
	"rockerboy", "netrunner", "corporate analyst", "scavenger", "drifter",
}

var factions = []string{
	"Arasaka Remnant", "Iron Lotus", "The Syndics", "Free Harbor Union",
	"Chrome Saints", "Nullwave Collective", "City Watch", "unaffiliated",
}

var manufacturers = []string{
	"Arasaka", "Militech", "Kiroshi", "Zetatech", "Tsunami Arms",
	"Budget Arms", "Raven Microcyb", "Dynalar", "Kang Tao", "Biotechnica",
	"Nokota", "Constitutional Arms",
}

var itemPrefixes = []string{
	"Viper", "Talon", "Aegis", "Specter", "Raptor", "Cinder", "Havoc",
	"Nimbus", "Warden", "Echo", "Onyx", "Pulse",
}

var itemSuffixes = []string{
	"MX", "Pro", "Zero", "Ultra", "Prime", "X", "Delta", "Omega",
	"Lite", "Max",
}

var shopTypePool = []string{
	"WEAPON", "ARMOR", "IMPLANT", "HARDWARE", "SOFTWARE", "CONSUMABLE",
	"GENERAL", "BLACK_MARKET",
}

var shopNamePrefixes = []string{
	"Lucky", "Midnight", "Golden", "Rusty", "Silent", "Neon",
	"Backalley", "Crystal", "Last Chance", "Underground",
}

var shopNameSuffixes = map[string][]string{
	"WEAPON":       {"Arms", "Arsenal", "Gunworks", "Ballistics"},
	"ARMOR":        {"Plating", "Shell Co", "Outfitters", "Carapace"},
	"IMPLANT":      {"Chrome Clinic", "Ripperdoc", "Augments", "Wetware"},
	"HARDWARE":     {"Components", "Circuits", "Parts & Boards", "Tech Salvage"},
	"SOFTWARE":     {"Codeworks", "Warez", "Daemons", "Softhouse"},
	"CONSUMABLE":   {"Noodles", "Pharmacy", "Street Kitchen", "Stims"},
	"GENERAL":      {"Emporium", "Bazaar", "Trading Post", "Surplus"},
	"BLACK_MARKET": {"Den", "Backroom", "Fence", "Dead Drop"},
}

var deviceTypes = []string{
	"terminal", "server", "camera", "drone dock", "vending unit",
	"door controller", "medpod", "kiosk",
}

var osTypes = []string{"NetOS", "DaemonKernel", "ZetaWare", "OpenGrid", "KestrelOS"}

var networkTypes = []string{"corporate", "public", "private", "security", "iot"}

var encryptionTypes = []string{"none", "WEP", "WPA2", "quantum", "military"}

var fileTypes = []string{"document", "email", "database", "credentials", "media", "log"}

var fileNameStems = []string{
	"quarterly_report", "access_codes", "shipment_manifest", "payroll",
	"surveillance_log", "research_notes", "blackmail", "contact_list",
	"firmware_dump", "meeting_minutes",
}

// personName builds "First Last".
func personName(rng *rand.Rand) string {
	return pick(rng, firstNames) + " " + pick(rng, lastNames)
}

// itemName builds "{Manufacturer} {Prefix}-{Suffix} Mk{1-9}".
func itemName(rng *rand.Rand) string {
	return fmt.Sprintf("%s %s-%s Mk%d",
		pick(rng, manufacturers), pick(rng, itemPrefixes), pick(rng, itemSuffixes),
		between(rng, 1, 9))
}

// buildingName builds "{Prefix} {Suffix}".
func buildingName(rng *rand.Rand) string {
	return pick(rng, buildingNamePrefixes) + " " + pick(rng, buildingNameSuffixes)
}

// shopName builds "{Prefix} {type-suffix}".
func shopName(rng *rand.Rand, shopType string) string {
	suffixes, ok := shopNameSuffixes[shopType]
	if !ok {
		suffixes = shopNameSuffixes["GENERAL"]
	}
	return pick(rng, shopNamePrefixes) + " " + pick(rng, suffixes)
}
