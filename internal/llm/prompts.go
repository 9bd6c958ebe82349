package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"pulsefit/program-engine/internal/domain"
)

// Prompts and schemas are fixed configuration, not user input. The free-text
// pieces (client instructions, profile notes) are embedded as quoted data.

const profileAnalysisSystem = `You are a strength and conditioning coach. Given a client profile and a
training request, produce a training recommendation: weekly split, periodization scheme, weekly
volume targets per muscle group, exercise constraints derived from injuries and equipment limits,
and the structure of a single session. Be conservative with constrained or injured clients.`

const sessionPlannerSystem = `You are a strength and conditioning coach filling in one training session of a
multi-week program. Choose exercises ONLY from the provided candidate list, using their ids verbatim.
Respect every exercise constraint. Order slots warm-up first, compounds before isolation, cool-down last.
Match the session structure (exercise counts, compound/isolation mix) and the phase intensity.`

// BuildProfileAnalysisPrompts renders the prompt pair for the single
// profile-analysis call of an attempt.
func BuildProfileAnalysisPrompts(profileContext string, req domain.TrainingRequest) (system, user string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Client profile:\n%s\n\n", profileContext)
	fmt.Fprintf(&b, "Training request:\n")
	fmt.Fprintf(&b, "- goals: %s\n", strings.Join(req.Goals, ", "))
	fmt.Fprintf(&b, "- duration: %d weeks, %d sessions/week, %d minutes/session\n",
		req.DurationWeeks, req.SessionsPerWeek, req.SessionLengthMinutes)
	if len(req.EquipmentOverride) > 0 {
		fmt.Fprintf(&b, "- equipment available: %s\n", strings.Join(req.EquipmentOverride, ", "))
	}
	if req.Instructions != "" {
		fmt.Fprintf(&b, "- additional instructions: %q\n", req.Instructions)
	}
	return profileAnalysisSystem, b.String()
}

// BuildSessionPrompts renders the prompt pair for one session-planner call.
// The candidate exercises are embedded as compact JSON.
func BuildSessionPrompts(sctx domain.SessionContext, analysis domain.ProfileAnalysis, candidates []domain.CompressedExercise, req domain.TrainingRequest) (system, user string, err error) {
	candidateJSON, err := json.Marshal(candidates)
	if err != nil {
		return "", "", fmt.Errorf("marshal candidate exercises: %w", err)
	}
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return "", "", fmt.Errorf("marshal analysis: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session: week %d, day %d of the program.\n", sctx.Week, sctx.DayOfWeek)
	fmt.Fprintf(&b, "Label: %s. Focus: %s.\n", sctx.SessionLabel, sctx.Focus)
	fmt.Fprintf(&b, "Phase: %s, intensity modifier %.2f.\n", sctx.Phase, sctx.IntensityModifier)
	fmt.Fprintf(&b, "Session length: %d minutes.\n", req.SessionLengthMinutes)
	if req.Instructions != "" {
		fmt.Fprintf(&b, "Client instructions: %q\n", req.Instructions)
	}
	fmt.Fprintf(&b, "\nTraining recommendation:\n%s\n", analysisJSON)
	fmt.Fprintf(&b, "\nCandidate exercises (use ids verbatim):\n%s\n", candidateJSON)
	return sessionPlannerSystem, b.String(), nil
}

// DefaultProfileContext is the documented fallback used when a client has no
// stored profile.
const DefaultProfileContext = `No stored profile. Assume a healthy beginner with no injuries,
bodyweight plus dumbbells available, and general fitness goals.`

// RenderProfileContext flattens a client profile into the prompt-friendly
// form shared by the analysis and session calls.
func RenderProfileContext(p *domain.ClientProfile) string {
	if p == nil {
		return DefaultProfileContext
	}
	var b strings.Builder
	fmt.Fprintf(&b, "- experience level: %s\n", p.ExperienceLevel)
	if len(p.Goals) > 0 {
		fmt.Fprintf(&b, "- goals: %s\n", strings.Join(p.Goals, ", "))
	}
	if len(p.Equipment) > 0 {
		fmt.Fprintf(&b, "- equipment: %s\n", strings.Join(p.Equipment, ", "))
	}
	if len(p.Injuries) > 0 {
		fmt.Fprintf(&b, "- injuries: %s\n", strings.Join(p.Injuries, ", "))
	}
	if p.Age > 0 {
		fmt.Fprintf(&b, "- age: %d\n", p.Age)
	}
	if p.Sex != "" {
		fmt.Fprintf(&b, "- sex: %s\n", p.Sex)
	}
	if p.HeightCm > 0 && p.WeightKg > 0 {
		fmt.Fprintf(&b, "- height/weight: %.0f cm, %.0f kg\n", p.HeightCm, p.WeightKg)
	}
	if p.Notes != "" {
		fmt.Fprintf(&b, "- notes: %q\n", p.Notes)
	}
	return b.String()
}
