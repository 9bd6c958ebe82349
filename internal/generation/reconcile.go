package generation

import (
	"sort"

	"pulsefit/program-engine/internal/domain"
)

// sessionResult pairs one generated plan with the context it answered.
type sessionResult struct {
	Ctx  domain.SessionContext
	Plan domain.SessionPlan
}

// Reconcile merges the independently generated session plans into one
// coherent structure: days grouped by week number, sorted by day-of-week
// within each week, plus the flattened slot-to-exercise assignment view.
func Reconcile(analysis domain.ProfileAnalysis, results []sessionResult) (domain.ProgramSkeleton, domain.ExerciseAssignment) {
	byWeek := make(map[int][]domain.ProgramDay)
	assignment := domain.ExerciseAssignment{Slots: make(map[string]domain.SlotAssignment)}

	for _, res := range results {
		day := domain.ProgramDay{
			DayOfWeek:    res.Ctx.DayOfWeek,
			Phase:        res.Ctx.Phase,
			SessionLabel: res.Plan.SessionLabel,
			Focus:        res.Plan.Focus,
			Slots:        res.Plan.Slots,
		}
		if day.SessionLabel == "" {
			day.SessionLabel = res.Ctx.SessionLabel
		}
		if day.Focus == "" {
			day.Focus = res.Ctx.Focus
		}
		byWeek[res.Ctx.Week] = append(byWeek[res.Ctx.Week], day)

		for _, slot := range res.Plan.Slots {
			assignment.Slots[slot.ID] = domain.SlotAssignment{
				ExerciseID:   slot.ExerciseID,
				ExerciseName: slot.ExerciseName,
				Notes:        slot.Notes,
			}
		}
		assignment.SubstitutionNotes = append(assignment.SubstitutionNotes, res.Plan.SubstitutionNotes...)
	}

	weekNumbers := make([]int, 0, len(byWeek))
	for week := range byWeek {
		weekNumbers = append(weekNumbers, week)
	}
	sort.Ints(weekNumbers)

	skeleton := domain.ProgramSkeleton{
		SplitType:     analysis.SplitType,
		Periodization: analysis.Periodization,
		TotalSessions: len(results),
		Notes:         analysis.Notes,
		Weeks:         make([]domain.ProgramWeek, 0, len(weekNumbers)),
	}
	for _, week := range weekNumbers {
		days := byWeek[week]
		sort.SliceStable(days, func(i, j int) bool {
			return days[i].DayOfWeek < days[j].DayOfWeek
		})
		skeleton.Weeks = append(skeleton.Weeks, domain.ProgramWeek{Week: week, Days: days})
	}

	return skeleton, assignment
}
