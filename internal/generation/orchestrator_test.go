package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"pulsefit/program-engine/internal/config"
	"pulsefit/program-engine/internal/domain"
	"pulsefit/program-engine/internal/llm"
	"pulsefit/program-engine/internal/logger"
	"pulsefit/program-engine/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ---------- mocks ----------

type mockLLM struct {
	mu       sync.Mutex
	calls    []llm.Request
	generate func(req llm.Request) (json.RawMessage, llm.Usage, error)
}

func (m *mockLLM) GenerateJSON(_ context.Context, req llm.Request) (json.RawMessage, llm.Usage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	return m.generate(req)
}

func (m *mockLLM) callsBySchema(name string) []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []llm.Request
	for _, c := range m.calls {
		if c.SchemaName == name {
			out = append(out, c)
		}
	}
	return out
}

type mockExerciseRepo struct {
	getAllActive func(ctx context.Context) ([]domain.Exercise, error)
}

func (m *mockExerciseRepo) GetAllActive(ctx context.Context) ([]domain.Exercise, error) {
	return m.getAllActive(ctx)
}

func (m *mockExerciseRepo) GetByID(context.Context, primitive.ObjectID) (*domain.Exercise, error) {
	return nil, repository.ErrNotFound
}

func (m *mockExerciseRepo) Create(context.Context, *domain.Exercise) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

type mockProfileRepo struct {
	getByClientID func(ctx context.Context, clientID primitive.ObjectID) (*domain.ClientProfile, error)
}

func (m *mockProfileRepo) GetByClientID(ctx context.Context, clientID primitive.ObjectID) (*domain.ClientProfile, error) {
	return m.getByClientID(ctx, clientID)
}

type mockProgramRepo struct {
	mu      sync.Mutex
	created []*domain.Program
	lastID  primitive.ObjectID
}

func (m *mockProgramRepo) Create(_ context.Context, program *domain.Program) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, program)
	m.lastID = primitive.NewObjectID()
	return m.lastID, nil
}

func (m *mockProgramRepo) GetByID(context.Context, primitive.ObjectID) (*domain.Program, error) {
	return nil, repository.ErrNotFound
}

func (m *mockProgramRepo) GetByClientID(context.Context, primitive.ObjectID) ([]domain.Program, error) {
	return nil, nil
}

type mockSlotRepo struct {
	mu      sync.Mutex
	created []*domain.ProgramSlot
}

func (m *mockSlotRepo) Create(_ context.Context, slot *domain.ProgramSlot) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, slot)
	return primitive.NewObjectID(), nil
}

func (m *mockSlotRepo) GetByProgramID(context.Context, primitive.ObjectID) ([]domain.ProgramSlot, error) {
	return nil, nil
}

type terminalUpdate struct {
	id      primitive.ObjectID
	message string
	tokens  int
}

type mockLogRepo struct {
	mu        sync.Mutex
	created   []*domain.GenerationLog
	completed []terminalUpdate
	failed    []terminalUpdate
}

func (m *mockLogRepo) Create(_ context.Context, log *domain.GenerationLog) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, log)
	return primitive.NewObjectID(), nil
}

func (m *mockLogRepo) MarkCompleted(_ context.Context, id primitive.ObjectID, outputSummary string, tokensUsed int, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, terminalUpdate{id: id, message: outputSummary, tokens: tokensUsed})
	return nil
}

func (m *mockLogRepo) MarkFailed(_ context.Context, id primitive.ObjectID, errorMessage string, tokensUsed int, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, terminalUpdate{id: id, message: errorMessage, tokens: tokensUsed})
	return nil
}

func (m *mockLogRepo) GetByClientID(context.Context, primitive.ObjectID) ([]domain.GenerationLog, error) {
	return nil, nil
}

// ---------- fixtures ----------

const analysisPayload = `{
	"split_type": "full_body",
	"periodization": "linear",
	"volume_targets": [],
	"exercise_constraints": [],
	"session_structure": {"warm_up_min":5,"main_work_min":45,"cool_down_min":5,"total_exercises":2,"compound_count":1,"isolation_count":1},
	"training_age": "beginner",
	"notes": ""
}`

func sessionPayload(ex1ID, ex2ID string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"session_label": "Full Body",
		"focus": "full body",
		"slots": [
			{"id":"a","role":"primary_compound","movement_pattern":"squat","target_muscles":["quads"],"sets":3,"reps":"10","rest_seconds":90,"rpe_target":null,"tempo":"","group_tag":"","technique":"straight_set","exercise_id":"%s","exercise_name":"Bodyweight Squat","notes":""},
			{"id":"b","role":"accessory","movement_pattern":"push","target_muscles":["chest"],"sets":3,"reps":"12","rest_seconds":60,"rpe_target":null,"tempo":"","group_tag":"","technique":"straight_set","exercise_id":"%s","exercise_name":"Push-Up","notes":""}
		],
		"substitution_notes": []
	}`, ex1ID, ex2ID))
}

type orchestratorFixture struct {
	llm      *mockLLM
	profiles *mockProfileRepo
	programs *mockProgramRepo
	slots    *mockSlotRepo
	logs     *mockLogRepo
	orch     *Orchestrator
	exIDs    [2]string
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()

	catalog := []domain.Exercise{
		{ID: primitive.NewObjectID(), Name: "Bodyweight Squat", PrimaryMuscles: []string{"quads"},
			Difficulty: domain.DifficultyBeginner, IsBodyweight: true, IsCompound: true, MovementPattern: "squat", IsActive: true},
		{ID: primitive.NewObjectID(), Name: "Push-Up", PrimaryMuscles: []string{"chest"},
			Difficulty: domain.DifficultyBeginner, IsBodyweight: true, MovementPattern: "push", IsActive: true},
	}
	ex1, ex2 := catalog[0].ID.Hex(), catalog[1].ID.Hex()

	f := &orchestratorFixture{
		llm: &mockLLM{
			generate: func(req llm.Request) (json.RawMessage, llm.Usage, error) {
				if req.SchemaName == llm.SchemaNameProfileAnalysis {
					return json.RawMessage(analysisPayload), llm.Usage{TotalTokens: 120}, nil
				}
				return sessionPayload(ex1, ex2), llm.Usage{TotalTokens: 50}, nil
			},
		},
		profiles: &mockProfileRepo{
			getByClientID: func(context.Context, primitive.ObjectID) (*domain.ClientProfile, error) {
				return nil, repository.ErrNotFound
			},
		},
		programs: &mockProgramRepo{},
		slots:    &mockSlotRepo{},
		logs:     &mockLogRepo{},
		exIDs:    [2]string{ex1, ex2},
	}
	exercises := &mockExerciseRepo{
		getAllActive: func(context.Context) ([]domain.Exercise, error) { return catalog, nil },
	}
	f.orch = NewOrchestrator(f.llm, exercises, f.profiles, f.programs, f.slots, f.logs,
		nil, logger.NewNop(), config.GenerationConfig{PrefilterTopN: 40, PrefilterFloor: 15})
	return f
}

func validRequest() domain.TrainingRequest {
	return domain.TrainingRequest{
		ClientID:        primitive.NewObjectID(),
		Goals:           []string{"general fitness"},
		DurationWeeks:   2,
		SessionsPerWeek: 3,
	}
}

// ---------- tests ----------

func TestGenerate_EndToEnd(t *testing.T) {
	f := newOrchestratorFixture(t)

	result, err := f.orch.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, result)

	// One analysis call plus one call per (week, session) pair.
	assert.Len(t, f.llm.callsBySchema(llm.SchemaNameProfileAnalysis), 1)
	assert.Len(t, f.llm.callsBySchema(llm.SchemaNameSessionPlan), 6)

	assert.Equal(t, f.programs.lastID, result.ProgramID)
	assert.True(t, result.Validation.Pass, "issues: %v", result.Validation.Issues)
	assert.Equal(t, 120, result.TokenUsage.Analysis)
	assert.Equal(t, 300, result.TokenUsage.Sessions)
	assert.Equal(t, 420, result.TokenUsage.Total)
	assert.Equal(t, 0, result.Retries)

	require.Len(t, f.programs.created, 1)
	program := f.programs.created[0]
	assert.Equal(t, "2-Week Full Body Program", program.Name)
	assert.Equal(t, domain.SplitFullBody, program.SplitType)
	assert.Equal(t, domain.PeriodizationLinear, program.Periodization)
	assert.Equal(t, 6, program.TotalSessions)
	assert.True(t, program.Validation.Pass)
}

func TestGenerate_PersistsEverySlotRow(t *testing.T) {
	f := newOrchestratorFixture(t)

	result, err := f.orch.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	// 2 weeks x 3 sessions x 2 slots, every row bound to the program and
	// carrying a unique slot id.
	require.Len(t, f.slots.created, 12)
	seen := make(map[string]struct{})
	weeks := make(map[int]struct{})
	days := make(map[int]struct{})
	for _, row := range f.slots.created {
		assert.Equal(t, result.ProgramID, row.ProgramID)
		assert.NotEmpty(t, row.ExerciseID)
		_, dup := seen[row.SlotID]
		assert.False(t, dup, "slot id %s persisted twice", row.SlotID)
		seen[row.SlotID] = struct{}{}
		weeks[row.Week] = struct{}{}
		days[row.DayOfWeek] = struct{}{}
	}
	assert.Equal(t, map[int]struct{}{1: {}, 2: {}}, weeks)
	assert.Equal(t, map[int]struct{}{1: {}, 3: {}, 5: {}}, days)
}

func TestGenerate_LogLifecycle(t *testing.T) {
	f := newOrchestratorFixture(t)

	_, err := f.orch.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	require.Len(t, f.logs.created, 1)
	entry := f.logs.created[0]
	assert.Equal(t, domain.GenerationStatusGenerating, entry.Status)
	assert.NotEmpty(t, entry.AttemptID)

	require.Len(t, f.logs.completed, 1)
	assert.Equal(t, 420, f.logs.completed[0].tokens)
	assert.Contains(t, f.logs.completed[0].message, "validation 0 errors, 0 warnings")
	assert.Empty(t, f.logs.failed)
}

func TestGenerate_InvalidRequestRejectedBeforeAnyCall(t *testing.T) {
	f := newOrchestratorFixture(t)

	_, err := f.orch.Generate(context.Background(), domain.TrainingRequest{})
	require.Error(t, err)
	assert.Empty(t, f.llm.calls)
	assert.Empty(t, f.logs.created)
}

func TestGenerate_AnalysisFailureMarksLogFailed(t *testing.T) {
	f := newOrchestratorFixture(t)
	callErr := &llm.GenerationError{Kind: llm.KindTimeout, Err: context.DeadlineExceeded}
	f.llm.generate = func(req llm.Request) (json.RawMessage, llm.Usage, error) {
		if req.SchemaName == llm.SchemaNameProfileAnalysis {
			return nil, llm.Usage{}, callErr
		}
		return nil, llm.Usage{}, errors.New("unexpected session call")
	}

	_, err := f.orch.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.Len(t, f.logs.failed, 1)
	assert.Empty(t, f.logs.completed)
	assert.Empty(t, f.programs.created)
	assert.Empty(t, f.slots.created)
}

func TestGenerate_SessionFailureAbortsAttempt(t *testing.T) {
	f := newOrchestratorFixture(t)
	exIDs := f.exIDs
	var tripped atomic.Bool
	f.llm.generate = func(req llm.Request) (json.RawMessage, llm.Usage, error) {
		if req.SchemaName == llm.SchemaNameProfileAnalysis {
			return json.RawMessage(analysisPayload), llm.Usage{TotalTokens: 120}, nil
		}
		if tripped.CompareAndSwap(false, true) {
			return nil, llm.Usage{}, &llm.GenerationError{Kind: llm.KindRefusal, Err: errors.New("refused")}
		}
		return sessionPayload(exIDs[0], exIDs[1]), llm.Usage{TotalTokens: 50}, nil
	}

	_, err := f.orch.Generate(context.Background(), validRequest())
	require.Error(t, err)

	require.Len(t, f.logs.failed, 1)
	assert.Empty(t, f.logs.completed)
	assert.Empty(t, f.programs.created)
}

func TestGenerate_EmptyCatalogFailsFast(t *testing.T) {
	f := newOrchestratorFixture(t)
	exercises := &mockExerciseRepo{
		getAllActive: func(context.Context) ([]domain.Exercise, error) { return nil, nil },
	}
	f.orch = NewOrchestrator(f.llm, exercises, f.profiles, f.programs, f.slots, f.logs,
		nil, logger.NewNop(), config.GenerationConfig{})

	_, err := f.orch.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	assert.Empty(t, f.llm.callsBySchema(llm.SchemaNameSessionPlan))
	require.Len(t, f.logs.failed, 1)
}

func TestGenerate_RequestOverridesWinOverAnalysis(t *testing.T) {
	f := newOrchestratorFixture(t)
	req := validRequest()
	req.SplitOverride = domain.SplitUpperLower
	req.PeriodizationOverride = domain.PeriodizationUndulating

	_, err := f.orch.Generate(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, f.programs.created, 1)
	assert.Equal(t, domain.SplitUpperLower, f.programs.created[0].SplitType)
	assert.Equal(t, domain.PeriodizationUndulating, f.programs.created[0].Periodization)
}

func TestGenerate_ValidationFailureStillCompletes(t *testing.T) {
	f := newOrchestratorFixture(t)
	exIDs := f.exIDs
	// Every session repeats one exercise in both slots, tripping the
	// duplicate-per-day rule on all six days.
	f.llm.generate = func(req llm.Request) (json.RawMessage, llm.Usage, error) {
		if req.SchemaName == llm.SchemaNameProfileAnalysis {
			return json.RawMessage(analysisPayload), llm.Usage{TotalTokens: 120}, nil
		}
		return sessionPayload(exIDs[0], exIDs[0]), llm.Usage{TotalTokens: 50}, nil
	}

	result, err := f.orch.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, result.Validation.Pass)
	require.Len(t, f.programs.created, 1)
	assert.False(t, f.programs.created[0].Validation.Pass)
	assert.Equal(t, 6, f.programs.created[0].Validation.Errors)

	require.Len(t, f.logs.completed, 1)
	assert.Empty(t, f.logs.failed)
}
