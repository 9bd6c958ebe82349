package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTrainingRequestValidate(t *testing.T) {
	valid := TrainingRequest{
		ClientID:        primitive.NewObjectID(),
		Goals:           []string{"strength"},
		DurationWeeks:   4,
		SessionsPerWeek: 3,
	}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(r *TrainingRequest)
	}{
		{"missing client id", func(r *TrainingRequest) { r.ClientID = primitive.NilObjectID }},
		{"no goals", func(r *TrainingRequest) { r.Goals = nil }},
		{"zero weeks", func(r *TrainingRequest) { r.DurationWeeks = 0 }},
		{"zero sessions", func(r *TrainingRequest) { r.SessionsPerWeek = 0 }},
		{"eight sessions", func(r *TrainingRequest) { r.SessionsPerWeek = 8 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestDifficultyRankOrdering(t *testing.T) {
	assert.Less(t, DifficultyRank(DifficultyBeginner), DifficultyRank(DifficultyIntermediate))
	assert.Less(t, DifficultyRank(DifficultyIntermediate), DifficultyRank(DifficultyAdvanced))
	assert.Less(t, DifficultyRank(DifficultyAdvanced), DifficultyRank(DifficultyElite))
	assert.Equal(t, 0, DifficultyRank("mystery"))
}

func TestApplyOverrides(t *testing.T) {
	analysis := ProfileAnalysis{SplitType: SplitFullBody, Periodization: PeriodizationLinear}

	analysis.ApplyOverrides(TrainingRequest{})
	assert.Equal(t, SplitFullBody, analysis.SplitType)

	analysis.ApplyOverrides(TrainingRequest{
		SplitOverride:         SplitBodyPart,
		PeriodizationOverride: PeriodizationBlock,
	})
	assert.Equal(t, SplitBodyPart, analysis.SplitType)
	assert.Equal(t, PeriodizationBlock, analysis.Periodization)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "0 errors, 0 warnings", Summarize(0, 0))
	assert.Equal(t, "1 error, 2 warnings", Summarize(1, 2))
	assert.Equal(t, "2 errors, 1 warning", Summarize(2, 1))
}

func TestValidationResultCounts(t *testing.T) {
	r := ValidationResult{Issues: []ValidationIssue{
		{Type: IssueError, Category: IssueMissingExercise},
		{Type: IssueError, Category: IssueEquipmentViolation},
		{Type: IssueWarning, Category: IssueDifficultyMismatch},
	}}
	errs, warns := r.Counts()
	assert.Equal(t, 2, errs)
	assert.Equal(t, 1, warns)
}
