package generation

import (
	"sort"
	"strings"

	"pulsefit/program-engine/internal/domain"
)

// Compress reduces the full catalog to its generation-friendly projection.
// Done once per attempt; the compressed form feeds every subsequent step.
func Compress(exercises []domain.Exercise) []domain.CompressedExercise {
	out := make([]domain.CompressedExercise, 0, len(exercises))
	for _, ex := range exercises {
		out = append(out, domain.CompressedExercise{
			ID:                ex.ID.Hex(),
			Name:              ex.Name,
			CategoryTags:      ex.CategoryTags,
			PrimaryMuscles:    lowerAll(ex.PrimaryMuscles),
			SecondaryMuscles:  lowerAll(ex.SecondaryMuscles),
			Difficulty:        ex.Difficulty,
			EquipmentRequired: ex.EquipmentRequired,
			IsBodyweight:      ex.IsBodyweight,
			IsCompound:        ex.IsCompound,
			MovementPattern:   ex.MovementPattern,
			ForceType:         ex.ForceType,
			Laterality:        ex.Laterality,
		})
	}
	return out
}

// Relevance score weights. Equipment availability dominates: an exercise the
// client cannot perform is nearly useless no matter how on-focus it is.
const (
	weightMuscleOverlap  = 3.0
	weightEquipment      = 5.0
	weightDifficulty     = 2.0
	weightBodyweightBonus = 1.0
)

// PrefilterOptions tunes the candidate prefilter.
type PrefilterOptions struct {
	TopN  int // how many candidates each session call sees
	Floor int // below this many scored candidates, revert to the full list
}

// Prefilter ranks the compressed catalog by relevance to one session context
// and keeps the top N. If too few exercises score at all, the full list is
// returned: starving the generator of candidates is worse than a long prompt.
func Prefilter(compressed []domain.CompressedExercise, sctx domain.SessionContext, clientEquipment map[string]struct{}, clientLevel domain.Difficulty, opts PrefilterOptions) []domain.CompressedExercise {
	if opts.TopN <= 0 || len(compressed) <= opts.TopN {
		return compressed
	}

	focusTerms := splitTerms(sctx.Focus + " " + sctx.SessionLabel)

	type scored struct {
		ex    domain.CompressedExercise
		score float64
	}
	candidates := make([]scored, 0, len(compressed))
	for _, ex := range compressed {
		s := relevance(ex, focusTerms, clientEquipment, clientLevel)
		if s > 0 {
			candidates = append(candidates, scored{ex: ex, score: s})
		}
	}

	if len(candidates) < opts.Floor {
		return compressed
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > opts.TopN {
		candidates = candidates[:opts.TopN]
	}

	out := make([]domain.CompressedExercise, len(candidates))
	for i, c := range candidates {
		out[i] = c.ex
	}
	return out
}

// relevance is a weighted sum of focus/muscle overlap, equipment
// availability, difficulty proximity, and a bodyweight bonus.
func relevance(ex domain.CompressedExercise, focusTerms map[string]struct{}, clientEquipment map[string]struct{}, clientLevel domain.Difficulty) float64 {
	score := 0.0

	overlap := 0
	for _, m := range ex.PrimaryMuscles {
		if termMatches(focusTerms, m) {
			overlap += 2
		}
	}
	for _, m := range ex.SecondaryMuscles {
		if termMatches(focusTerms, m) {
			overlap++
		}
	}
	score += weightMuscleOverlap * float64(overlap)

	if ex.IsBodyweight {
		score += weightEquipment + weightBodyweightBonus
	} else if hasAllEquipment(ex.EquipmentRequired, clientEquipment) {
		score += weightEquipment
	} else {
		// Unperformable: only muscle overlap can keep it in the running,
		// and barely.
		score -= weightEquipment
	}

	gap := domain.DifficultyRank(ex.Difficulty) - domain.DifficultyRank(clientLevel)
	if gap < 0 {
		gap = -gap
	}
	score += weightDifficulty * float64(3-gap) / 3.0

	return score
}

func hasAllEquipment(required []string, available map[string]struct{}) bool {
	for _, item := range required {
		if _, ok := available[NormalizeEquipment(item)]; !ok {
			return false
		}
	}
	return true
}

func termMatches(terms map[string]struct{}, muscle string) bool {
	muscle = strings.ToLower(muscle)
	if _, ok := terms[muscle]; ok {
		return true
	}
	// "rear delts" should match a focus term "delts".
	for _, part := range strings.Fields(strings.ReplaceAll(muscle, "_", " ")) {
		if _, ok := terms[part]; ok {
			return true
		}
	}
	return false
}

func splitTerms(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == ',' || r == '_'
	}) {
		if f != "" {
			out[f] = struct{}{}
		}
	}
	return out
}

func lowerAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
