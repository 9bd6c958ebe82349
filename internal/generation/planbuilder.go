package generation

import (
	"fmt"
	"sort"

	"pulsefit/program-engine/internal/domain"
)

// evenSpreadDays maps sessions-per-week onto a sensible day-of-week spread
// (1 = Monday). Used when the client has no (or not enough) preferred days.
var evenSpreadDays = map[int][]int{
	1: {3},
	2: {2, 5},
	3: {1, 3, 5},
	4: {1, 3, 5, 6},
	5: {1, 2, 4, 5, 6},
	6: {1, 2, 3, 4, 5, 6},
	7: {1, 2, 3, 4, 5, 6, 7},
}

// BuildPlan deterministically expands an analysis and a request into one
// SessionContext per training day across all weeks. Output length is always
// durationWeeks * sessionsPerWeek and every SlotPrefix is unique across the
// program.
func BuildPlan(analysis domain.ProfileAnalysis, req domain.TrainingRequest, preferredDays []int) []domain.SessionContext {
	days := chooseDays(req.SessionsPerWeek, preferredDays)

	contexts := make([]domain.SessionContext, 0, req.DurationWeeks*req.SessionsPerWeek)
	for week := 1; week <= req.DurationWeeks; week++ {
		for i, day := range days {
			phase, intensity := phaseForWeek(analysis.Periodization, week, req.DurationWeeks, i)
			label, focus := splitFocus(analysis.SplitType, i)
			contexts = append(contexts, domain.SessionContext{
				Week:              week,
				DayOfWeek:         day,
				Phase:             phase,
				IntensityModifier: intensity,
				SessionLabel:      label,
				Focus:             focus,
				SlotPrefix:        fmt.Sprintf("w%dd%d", week, day),
			})
		}
	}
	return contexts
}

// chooseDays uses the explicit preferred days when there are enough of them,
// otherwise falls back to the even spread.
func chooseDays(sessionsPerWeek int, preferred []int) []int {
	valid := make([]int, 0, len(preferred))
	seen := make(map[int]struct{})
	for _, d := range preferred {
		if d >= 1 && d <= 7 {
			if _, dup := seen[d]; !dup {
				seen[d] = struct{}{}
				valid = append(valid, d)
			}
		}
	}
	if len(valid) >= sessionsPerWeek {
		sort.Ints(valid)
		return valid[:sessionsPerWeek]
	}
	return evenSpreadDays[sessionsPerWeek]
}

// deloadCadence is how often a deload week recurs under every scheme.
const deloadCadence = 4

// phaseForWeek computes the phase label and intensity modifier for one
// session from the periodization scheme, the week index, and the session's
// position within the week.
func phaseForWeek(scheme domain.Periodization, week, totalWeeks, sessionIndex int) (string, float64) {
	// Deload every 4th week, but never on the only week of a short program.
	if totalWeeks >= deloadCadence && week%deloadCadence == 0 {
		return "deload", 0.6
	}

	switch scheme {
	case domain.PeriodizationUndulating:
		// Intensity undulates across the days of a single week.
		switch sessionIndex % 3 {
		case 0:
			return "heavy", 1.0
		case 1:
			return "volume", 0.8
		default:
			return "moderate", 0.9
		}
	case domain.PeriodizationBlock:
		// Two-week blocks: accumulation then intensification.
		if ((week-1)/2)%2 == 0 {
			return "accumulation", 0.85
		}
		return "intensification", 1.0
	default: // linear
		// Ramp within each deload cycle: 0.85, 0.90, 0.95, deload, ...
		step := (week - 1) % deloadCadence
		return "progressive_overload", 0.85 + 0.05*float64(step)
	}
}

// splitFocus maps a split type and session position onto a label and focus
// description.
func splitFocus(split domain.SplitType, sessionIndex int) (string, string) {
	switch split {
	case domain.SplitUpperLower:
		if sessionIndex%2 == 0 {
			return "Upper Body", "chest, back, shoulders, arms"
		}
		return "Lower Body", "quads, hamstrings, glutes, calves"
	case domain.SplitPushPullLegs:
		switch sessionIndex % 3 {
		case 0:
			return "Push", "chest, shoulders, triceps"
		case 1:
			return "Pull", "back, biceps, rear delts"
		default:
			return "Legs", "quads, hamstrings, glutes, calves"
		}
	case domain.SplitBodyPart:
		parts := []struct{ label, focus string }{
			{"Chest", "chest, triceps"},
			{"Back", "lats, upper back, biceps"},
			{"Legs", "quads, hamstrings, glutes"},
			{"Shoulders", "delts, traps"},
			{"Arms & Core", "biceps, triceps, abs"},
		}
		p := parts[sessionIndex%len(parts)]
		return p.label, p.focus
	default: // full body
		return "Full Body", "whole body, compound emphasis"
	}
}
