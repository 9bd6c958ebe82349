package llm

import (
	"encoding/json"
	"fmt"

	"pulsefit/program-engine/internal/domain"
)

// Schema names sent alongside the json_schema format; they double as prompt
// cache keys.
const (
	SchemaNameProfileAnalysis = "profile_analysis"
	SchemaNameSessionPlan     = "session_plan"
)

// ---------- shared fragments ----------

func enumSchema(values ...string) map[string]any {
	return map[string]any{"type": "string", "enum": values}
}

func stringArraySchema() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func intSchema() map[string]any {
	return map[string]any{"type": "integer"}
}

// Strict json_schema requires additionalProperties:false and every property
// listed in required; optional semantics are carried by empty values.
func objectSchema(properties map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// ---------- profile analysis ----------

func ProfileAnalysisSchema() map[string]any {
	volumeTarget := objectSchema(map[string]any{
		"muscle_group":  map[string]any{"type": "string"},
		"sets_per_week": intSchema(),
		"priority":      enumSchema("high", "medium", "low"),
	}, []string{"muscle_group", "sets_per_week", "priority"})

	constraint := objectSchema(map[string]any{
		"type":   enumSchema("avoid_movement", "avoid_equipment", "avoid_muscle", "limit_load", "require_unilateral"),
		"value":  map[string]any{"type": "string"},
		"reason": map[string]any{"type": "string"},
	}, []string{"type", "value", "reason"})

	sessionStructure := objectSchema(map[string]any{
		"warm_up_min":     intSchema(),
		"main_work_min":   intSchema(),
		"cool_down_min":   intSchema(),
		"total_exercises": intSchema(),
		"compound_count":  intSchema(),
		"isolation_count": intSchema(),
	}, []string{"warm_up_min", "main_work_min", "cool_down_min", "total_exercises", "compound_count", "isolation_count"})

	return objectSchema(map[string]any{
		"split_type":           enumSchema("full_body", "upper_lower", "push_pull_legs", "body_part"),
		"periodization":        enumSchema("linear", "undulating", "block"),
		"volume_targets":       map[string]any{"type": "array", "items": volumeTarget},
		"exercise_constraints": map[string]any{"type": "array", "items": constraint},
		"session_structure":    sessionStructure,
		"training_age":         enumSchema("beginner", "intermediate", "advanced", "elite"),
		"notes":                map[string]any{"type": "string"},
	}, []string{"split_type", "periodization", "volume_targets", "exercise_constraints", "session_structure", "training_age", "notes"})
}

// ---------- session plan ----------

func SessionPlanSchema() map[string]any {
	slot := objectSchema(map[string]any{
		"id": map[string]any{"type": "string"},
		"role": enumSchema("warm_up", "primary_compound", "secondary_compound",
			"accessory", "isolation", "cool_down"),
		"movement_pattern": map[string]any{"type": "string"},
		"target_muscles":   stringArraySchema(),
		"sets":             intSchema(),
		"reps":             map[string]any{"type": "string"},
		"rest_seconds":     intSchema(),
		"rpe_target":       map[string]any{"type": []string{"number", "null"}},
		"tempo":            map[string]any{"type": "string"},
		"group_tag":        map[string]any{"type": "string"},
		"technique": enumSchema("straight_set", "superset", "dropset", "giant_set",
			"circuit", "rest_pause", "amrap"),
		"exercise_id":   map[string]any{"type": "string"},
		"exercise_name": map[string]any{"type": "string"},
		"notes":         map[string]any{"type": "string"},
	}, []string{"id", "role", "movement_pattern", "target_muscles", "sets", "reps",
		"rest_seconds", "rpe_target", "tempo", "group_tag", "technique",
		"exercise_id", "exercise_name", "notes"})

	return objectSchema(map[string]any{
		"session_label":      map[string]any{"type": "string"},
		"focus":              map[string]any{"type": "string"},
		"slots":              map[string]any{"type": "array", "items": slot},
		"substitution_notes": stringArraySchema(),
	}, []string{"session_label", "focus", "slots", "substitution_notes"})
}

// ---------- typed decoding ----------

// ParseProfileAnalysis decodes a raw payload into a ProfileAnalysis,
// reporting any structural problem as a schema-kind GenerationError.
func ParseProfileAnalysis(raw json.RawMessage) (domain.ProfileAnalysis, error) {
	var analysis domain.ProfileAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return domain.ProfileAnalysis{}, SchemaError(fmt.Errorf("profile analysis decode: %w", err))
	}
	if analysis.SplitType == "" || analysis.Periodization == "" {
		return domain.ProfileAnalysis{}, SchemaError(fmt.Errorf("profile analysis missing split_type or periodization"))
	}
	return analysis, nil
}

// ParseSessionPlan decodes a raw payload into a SessionPlan for the given
// slot prefix. Slot ids are rewritten onto the expected prefix+sequence form
// so a model that drifts on ids cannot break program-wide slot uniqueness.
func ParseSessionPlan(raw json.RawMessage, slotPrefix string) (domain.SessionPlan, error) {
	var plan domain.SessionPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return domain.SessionPlan{}, SchemaError(fmt.Errorf("session plan decode: %w", err))
	}
	if len(plan.Slots) == 0 {
		return domain.SessionPlan{}, SchemaError(fmt.Errorf("session plan %s has no slots", slotPrefix))
	}
	for i := range plan.Slots {
		plan.Slots[i].ID = fmt.Sprintf("%s-s%d", slotPrefix, i+1)
		if plan.Slots[i].ExerciseID == "" {
			return domain.SessionPlan{}, SchemaError(fmt.Errorf("slot %s has no exercise assigned", plan.Slots[i].ID))
		}
	}
	return plan, nil
}
