// Package generation implements the program generation pipeline: plan
// building, the orchestrated generation calls, reconciliation, and the
// rule-based validation of the result.
package generation

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Equipment names arrive from two independent sources (the questionnaire
// vocabulary and free-text generative output) that must compare equal.
// NormalizeEquipment is the join key between them: a total function that
// canonicalizes whatever it is given and never fails.

// canonicalEquipment is the authoritative vocabulary. One entry per piece of
// equipment, lowercase snake_case.
var canonicalEquipment = map[string]struct{}{
	"ab_wheel":               {},
	"barbell":                {},
	"battle_ropes":           {},
	"bench":                  {},
	"cable_machine":          {},
	"calf_raise_machine":     {},
	"chest_press_machine":    {},
	"dip_station":            {},
	"dumbbell":               {},
	"elliptical":             {},
	"ez_bar":                 {},
	"foam_roller":            {},
	"gymnastic_rings":        {},
	"hack_squat_machine":     {},
	"incline_bench":          {},
	"jump_rope":              {},
	"kettlebell":             {},
	"landmine":               {},
	"lat_pulldown_machine":   {},
	"leg_curl_machine":       {},
	"leg_extension_machine":  {},
	"leg_press_machine":      {},
	"medicine_ball":          {},
	"pec_deck_machine":       {},
	"plyo_box":               {},
	"preacher_bench":         {},
	"pull_up_bar":            {},
	"resistance_band":        {},
	"rowing_machine":         {},
	"seated_row_machine":     {},
	"shoulder_press_machine": {},
	"sled":                   {},
	"smith_machine":          {},
	"squat_rack":             {},
	"stability_ball":         {},
	"stair_climber":          {},
	"stationary_bike":        {},
	"trap_bar":               {},
	"treadmill":              {},
	"trx":                    {},
	"weight_plate":           {},
	"yoga_mat":               {},
}

// equipmentAliases maps common shorthand and synonyms onto canonical names.
// Keys are in slug form (what slugify produces).
var equipmentAliases = map[string]string{
	"db":                 "dumbbell",
	"dbs":                "dumbbell",
	"bb":                 "barbell",
	"kb":                 "kettlebell",
	"cable":              "cable_machine",
	"cable_stack":        "cable_machine",
	"mat":                "yoga_mat",
	"band":               "resistance_band",
	"mini_band":          "resistance_band",
	"pullup_bar":         "pull_up_bar",
	"chin_up_bar":        "pull_up_bar",
	"chinup_bar":         "pull_up_bar",
	"rack":               "squat_rack",
	"power_rack":         "squat_rack",
	"half_rack":          "squat_rack",
	"flat_bench":         "bench",
	"weight_bench":       "bench",
	"bike":               "stationary_bike",
	"spin_bike":          "stationary_bike",
	"exercise_bike":      "stationary_bike",
	"rower":              "rowing_machine",
	"erg":                "rowing_machine",
	"suspension_trainer": "trx",
	"ez_curl_bar":        "ez_bar",
	"hex_bar":            "trap_bar",
	"swiss_ball":         "stability_ball",
	"exercise_ball":      "stability_ball",
	"physio_ball":        "stability_ball",
	"med_ball":           "medicine_ball",
	"lat_pulldown":       "lat_pulldown_machine",
	"leg_press":          "leg_press_machine",
	"leg_extension":      "leg_extension_machine",
	"leg_curl":           "leg_curl_machine",
	"pec_deck":           "pec_deck_machine",
	"hack_squat":         "hack_squat_machine",
	"skipping_rope":      "jump_rope",
	"jumprope":           "jump_rope",
	"plate":              "weight_plate",
	"bumper_plate":       "weight_plate",
	"ring":               "gymnastic_rings",
	"smith":              "smith_machine",
}

// fuzzyAcceptThreshold is the minimum normalized Levenshtein similarity
// (1 - distance/maxLen) for the fuzzy fallback to accept a canonical name.
// High enough to reject short-word noise, low enough to catch one or two
// character typos. Ties resolve to the lexicographically first canonical name
// because candidates are scanned in sorted order.
const fuzzyAcceptThreshold = 0.72

// sortedCanonical is the canonical set in a fixed scan order for the fuzzy
// fallback.
var sortedCanonical = func() []string {
	names := make([]string, 0, len(canonicalEquipment))
	for name := range canonicalEquipment {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// NormalizeEquipment canonicalizes a free-text equipment name. Rules apply in
// order, first match wins:
//
//  1. lowercase, trim, collapse whitespace runs (and hyphens) to underscores
//  2. exact canonical match
//  3. alias table match
//  4. plural strip ("...s" but not "...ss", len > 3) and retry 2-3
//  5. fuzzy fallback by normalized edit distance
//  6. passthrough of the slug, unchanged
//
// The function is idempotent and total: output feeds back in unchanged.
func NormalizeEquipment(raw string) string {
	slug := slugify(raw)
	if slug == "" {
		return slug
	}

	if name, ok := lookupEquipment(slug); ok {
		return name
	}

	// Plural strip, then retry the exact and alias tables.
	if strings.HasSuffix(slug, "s") && !strings.HasSuffix(slug, "ss") && len(slug) > 3 {
		if name, ok := lookupEquipment(slug[:len(slug)-1]); ok {
			return name
		}
	}

	if name, ok := fuzzyEquipment(slug); ok {
		return name
	}

	return slug
}

// NormalizeEquipmentSet normalizes a list into a set of canonical names.
func NormalizeEquipmentSet(raw []string) map[string]struct{} {
	out := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		if name := NormalizeEquipment(item); name != "" {
			out[name] = struct{}{}
		}
	}
	return out
}

func lookupEquipment(slug string) (string, bool) {
	if _, ok := canonicalEquipment[slug]; ok {
		return slug, true
	}
	if name, ok := equipmentAliases[slug]; ok {
		return name, true
	}
	return "", false
}

func fuzzyEquipment(slug string) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, name := range sortedCanonical {
		dist := levenshtein.ComputeDistance(slug, name)
		maxLen := len(slug)
		if len(name) > maxLen {
			maxLen = len(name)
		}
		if maxLen == 0 {
			continue
		}
		score := 1.0 - float64(dist)/float64(maxLen)
		if score > bestScore {
			best = name
			bestScore = score
		}
	}
	if bestScore >= fuzzyAcceptThreshold {
		return best, true
	}
	return "", false
}

func slugify(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), "_")
}
