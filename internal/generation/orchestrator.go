package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pulsefit/program-engine/internal/config"
	"pulsefit/program-engine/internal/domain"
	"pulsefit/program-engine/internal/llm"
	"pulsefit/program-engine/internal/logger"
	"pulsefit/program-engine/internal/repository"
	"pulsefit/program-engine/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyCatalog = errors.New("exercise catalog is empty")
)

// TokenUsage is the aggregate token accounting of an attempt, by stage.
type TokenUsage struct {
	Analysis int `json:"analysis"`
	Sessions int `json:"sessions"`
	Total    int `json:"total"`
}

// Result is what one successful generation attempt returns to the caller. A
// validation failure is a result, not an error: the program is persisted and
// the issues attached so the caller can decide what to do with it.
type Result struct {
	ProgramID  primitive.ObjectID      `json:"program_id"`
	Validation domain.ValidationResult `json:"validation"`
	TokenUsage TokenUsage              `json:"token_usage"`
	DurationMs int64                   `json:"duration_ms"`
	// Retries is reported for forward compatibility; nothing in this
	// pipeline increments it yet (there is no regenerate-on-validation-
	// failure loop).
	Retries int `json:"retries"`
}

// Orchestrator sequences one generation attempt end to end: profile analysis
// and catalog fetch in parallel, plan building, the parallel session calls,
// reconciliation, validation, persistence, and the attempt log.
type Orchestrator struct {
	llm       llm.Client
	exercises repository.ExerciseRepository
	profiles  repository.ClientProfileRepository
	programs  repository.ProgramRepository
	slots     repository.ProgramSlotRepository
	logs      repository.GenerationLogRepository
	archive   storage.FileStorage // nil disables the raw-payload archive
	log       *logger.Logger
	cfg       config.GenerationConfig

	// profileCtxCache reuses the rendered profile context across attempts
	// for the same client within the configured TTL.
	profileCtxCache *Cache[string]

	now func() time.Time
}

// NewOrchestrator wires an Orchestrator. archive may be nil.
func NewOrchestrator(
	llmClient llm.Client,
	exercises repository.ExerciseRepository,
	profiles repository.ClientProfileRepository,
	programs repository.ProgramRepository,
	slots repository.ProgramSlotRepository,
	logs repository.GenerationLogRepository,
	archive storage.FileStorage,
	log *logger.Logger,
	cfg config.GenerationConfig,
) *Orchestrator {
	ttl := cfg.ProfileContextTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Orchestrator{
		llm:             llmClient,
		exercises:       exercises,
		profiles:        profiles,
		programs:        programs,
		slots:           slots,
		logs:            logs,
		archive:         archive,
		log:             log,
		cfg:             cfg,
		profileCtxCache: NewCache[string](ttl, nil),
		now:             time.Now,
	}
}

// Generate runs one attempt. Any unrecoverable failure aborts the whole
// attempt, marks the log failed, and returns the error; no partial program is
// left visible to the caller.
func (o *Orchestrator) Generate(ctx context.Context, req domain.TrainingRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	started := o.now()
	attemptID := uuid.NewString()
	log := o.log.With("attempt_id", attemptID, "client_id", req.ClientID.Hex())

	// 1. Write the attempt row before any external call so a crash
	// mid-pipeline is still observable.
	logID, err := o.logs.Create(ctx, &domain.GenerationLog{
		AttemptID: attemptID,
		ClientID:  req.ClientID,
		Status:    domain.GenerationStatusGenerating,
		Request:   req,
	})
	if err != nil {
		return nil, fmt.Errorf("create generation log: %w", err)
	}

	var usage TokenUsage
	fail := func(stage string, cause error) (*Result, error) {
		wrapped := fmt.Errorf("%s: %w", stage, cause)
		// Best-effort terminal update; a failure here is logged separately
		// and must never mask the original error.
		if uerr := o.logs.MarkFailed(ctx, logID, wrapped.Error(), usage.Total, o.sinceMs(started)); uerr != nil {
			log.Error("generation log update failed", "update_error", uerr, "original_error", wrapped)
		}
		return nil, wrapped
	}

	// 2. Profile fetch is best-effort: a missing profile falls back to the
	// documented default context.
	profile, profileCtx := o.loadProfileContext(ctx, req.ClientID, log)

	// 3. Profile analysis and catalog fetch run concurrently. Structured
	// join: both results are required before anything downstream.
	var (
		analysis domain.ProfileAnalysis
		catalog  []domain.Exercise
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		// usage.Analysis is only written here; the join below orders the
		// write before any read.
		analysis, usage.Analysis, err = o.analyzeProfile(gctx, attemptID, profileCtx, req)
		return err
	})
	g.Go(func() error {
		var err error
		catalog, err = o.exercises.GetAllActive(gctx)
		if err != nil {
			return fmt.Errorf("fetch exercise catalog: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return fail("analysis", err)
	}
	if len(catalog) == 0 {
		return fail("analysis", ErrEmptyCatalog)
	}

	// 4. Apply explicit request overrides exactly once, before the analysis
	// is shared with any downstream step.
	analysis.ApplyOverrides(req)

	// 5. Compress the catalog once; every later step reuses this form.
	compressed := Compress(catalog)
	clientEquipment := o.resolveEquipment(req, profile)
	availableSet := NormalizeEquipmentSet(clientEquipment)
	clientLevel := o.resolveLevel(profile, analysis)

	// 6. Deterministic plan expansion.
	var preferredDays []int
	if profile != nil {
		preferredDays = profile.PreferredDays
	}
	contexts := BuildPlan(analysis, req, preferredDays)
	log.Info("plan built", "sessions", len(contexts), "split", analysis.SplitType, "periodization", analysis.Periodization)

	// 7. All session calls fan out together; the join requires every one of
	// them. A single failure cancels the rest and fails the attempt.
	results := make([]sessionResult, len(contexts))
	sessionUsage := make([]int, len(contexts))
	sg, sctx := errgroup.WithContext(ctx)
	for i, c := range contexts {
		i, c := i, c
		sg.Go(func() error {
			candidates := Prefilter(compressed, c, availableSet, clientLevel, PrefilterOptions{
				TopN:  o.cfg.PrefilterTopN,
				Floor: o.cfg.PrefilterFloor,
			})
			plan, tokens, err := o.planSession(sctx, attemptID, c, analysis, candidates, req)
			if err != nil {
				return fmt.Errorf("session %s: %w", c.SlotPrefix, err)
			}
			results[i] = sessionResult{Ctx: c, Plan: plan}
			sessionUsage[i] = tokens
			return nil
		})
	}
	if err := sg.Wait(); err != nil {
		return fail("sessions", err)
	}
	for _, t := range sessionUsage {
		usage.Sessions += t
	}
	usage.Total = usage.Analysis + usage.Sessions

	// 8. Pure merge of the independent session plans.
	skeleton, assignment := Reconcile(analysis, results)

	// 9. Rule-based validation of the reconciled structure.
	validation := Validate(skeleton, assignment, analysis, compressed, clientEquipment, clientLevel)
	errCount, warnCount := validation.Counts()
	log.Info("validation finished", "pass", validation.Pass, "errors", errCount, "warnings", warnCount)

	// 10. Persist the program record, then all slot rows concurrently.
	programID, err := o.persist(ctx, req, skeleton, validation)
	if err != nil {
		return fail("persistence", err)
	}

	// 11. Terminal log update. Validation failure is a result, not a
	// pipeline failure, so the attempt still completes.
	durationMs := o.sinceMs(started)
	summary := fmt.Sprintf("program %s: %d weeks, %d sessions, validation %s",
		programID.Hex(), len(skeleton.Weeks), skeleton.TotalSessions, validation.Summary)
	if uerr := o.logs.MarkCompleted(ctx, logID, summary, usage.Total, durationMs); uerr != nil {
		log.Error("generation log update failed", "update_error", uerr)
	}

	log.Info("generation attempt completed",
		"program_id", programID.Hex(), "tokens", usage.Total, "duration_ms", durationMs)

	return &Result{
		ProgramID:  programID,
		Validation: validation,
		TokenUsage: usage,
		DurationMs: durationMs,
		Retries:    0,
	}, nil
}

// loadProfileContext fetches the client profile and renders (or reuses) its
// prompt context. Profile absence and fetch errors both fall back to the
// default context; only the profile itself distinguishes them downstream.
func (o *Orchestrator) loadProfileContext(ctx context.Context, clientID primitive.ObjectID, log *logger.Logger) (*domain.ClientProfile, string) {
	profile, err := o.profiles.GetByClientID(ctx, clientID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Warn("profile fetch failed, using default context", "error", err)
		}
		return nil, llm.DefaultProfileContext
	}

	key := clientID.Hex()
	if cached, ok := o.profileCtxCache.Get(key); ok {
		return profile, cached
	}
	rendered := llm.RenderProfileContext(profile)
	o.profileCtxCache.Set(key, rendered)
	return profile, rendered
}

func (o *Orchestrator) analyzeProfile(ctx context.Context, attemptID, profileCtx string, req domain.TrainingRequest) (domain.ProfileAnalysis, int, error) {
	system, user := llm.BuildProfileAnalysisPrompts(profileCtx, req)
	raw, callUsage, err := o.llm.GenerateJSON(ctx, llm.Request{
		System:     system,
		User:       user,
		SchemaName: llm.SchemaNameProfileAnalysis,
		Schema:     llm.ProfileAnalysisSchema(),
		MaxTokens:  o.cfg.MaxTokensAnalysis,
		CacheHint:  true,
	})
	if err != nil {
		return domain.ProfileAnalysis{}, 0, err
	}
	o.archiveRaw(ctx, attemptID, "profile_analysis", raw)

	analysis, err := llm.ParseProfileAnalysis(raw)
	if err != nil {
		return domain.ProfileAnalysis{}, callUsage.TotalTokens, err
	}
	return analysis, callUsage.TotalTokens, nil
}

func (o *Orchestrator) planSession(ctx context.Context, attemptID string, sctx domain.SessionContext, analysis domain.ProfileAnalysis, candidates []domain.CompressedExercise, req domain.TrainingRequest) (domain.SessionPlan, int, error) {
	system, user, err := llm.BuildSessionPrompts(sctx, analysis, candidates, req)
	if err != nil {
		return domain.SessionPlan{}, 0, err
	}
	raw, callUsage, err := o.llm.GenerateJSON(ctx, llm.Request{
		System:     system,
		User:       user,
		SchemaName: llm.SchemaNameSessionPlan,
		Schema:     llm.SessionPlanSchema(),
		MaxTokens:  o.cfg.MaxTokensSession,
		CacheHint:  true,
	})
	if err != nil {
		return domain.SessionPlan{}, 0, err
	}
	o.archiveRaw(ctx, attemptID, sctx.SlotPrefix, raw)

	plan, err := llm.ParseSessionPlan(raw, sctx.SlotPrefix)
	if err != nil {
		return domain.SessionPlan{}, 0, err
	}
	return plan, callUsage.TotalTokens, nil
}

// persist writes the program record, then every slot row. Slot writes are
// independent and issued concurrently; all of them must complete before the
// attempt is terminal.
func (o *Orchestrator) persist(ctx context.Context, req domain.TrainingRequest, skeleton domain.ProgramSkeleton, validation domain.ValidationResult) (primitive.ObjectID, error) {
	errCount, warnCount := validation.Counts()
	program := &domain.Program{
		ClientID:        req.ClientID,
		Name:            fmt.Sprintf("%d-Week %s Program", len(skeleton.Weeks), titleForSplit(skeleton.SplitType)),
		SplitType:       skeleton.SplitType,
		Periodization:   skeleton.Periodization,
		DurationWeeks:   req.DurationWeeks,
		SessionsPerWeek: req.SessionsPerWeek,
		TotalSessions:   skeleton.TotalSessions,
		Notes:           skeleton.Notes,
		Validation: domain.ValidationSummary{
			Pass:     validation.Pass,
			Errors:   errCount,
			Warnings: warnCount,
			Summary:  validation.Summary,
		},
	}
	programID, err := o.programs.Create(ctx, program)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("create program: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, week := range skeleton.Weeks {
		for _, day := range week.Days {
			for _, slot := range day.Slots {
				row := &domain.ProgramSlot{
					ProgramID:       programID,
					SlotID:          slot.ID,
					Week:            week.Week,
					DayOfWeek:       day.DayOfWeek,
					SessionLabel:    day.SessionLabel,
					Role:            slot.Role,
					MovementPattern: slot.MovementPattern,
					TargetMuscles:   slot.TargetMuscles,
					Sets:            slot.Sets,
					Reps:            slot.Reps,
					RestSeconds:     slot.RestSeconds,
					RPETarget:       slot.RPETarget,
					Tempo:           slot.Tempo,
					GroupTag:        slot.GroupTag,
					Technique:       slot.Technique,
					ExerciseID:      slot.ExerciseID,
					ExerciseName:    slot.ExerciseName,
					Notes:           slot.Notes,
				}
				g.Go(func() error {
					if _, err := o.slots.Create(gctx, row); err != nil {
						return fmt.Errorf("create slot %s: %w", row.SlotID, err)
					}
					return nil
				})
			}
		}
	}
	if err := g.Wait(); err != nil {
		return primitive.NilObjectID, err
	}

	return programID, nil
}

// archiveRaw stores one raw generation payload under the attempt's key.
// Best-effort: archive failures are logged by the storage layer and ignored.
func (o *Orchestrator) archiveRaw(ctx context.Context, attemptID, stage string, raw json.RawMessage) {
	if o.archive == nil {
		return
	}
	key := fmt.Sprintf("attempts/%s/%s.json", attemptID, stage)
	_ = o.archive.PutObject(ctx, key, "application/json", raw)
}

// resolveEquipment prefers an explicit request override over the profile's
// equipment list.
func (o *Orchestrator) resolveEquipment(req domain.TrainingRequest, profile *domain.ClientProfile) []string {
	if len(req.EquipmentOverride) > 0 {
		return req.EquipmentOverride
	}
	if profile != nil {
		return profile.Equipment
	}
	return nil
}

// resolveLevel prefers the stored profile level, falling back to the
// analysis' training-age estimate.
func (o *Orchestrator) resolveLevel(profile *domain.ClientProfile, analysis domain.ProfileAnalysis) domain.Difficulty {
	if profile != nil && profile.ExperienceLevel != "" {
		return profile.ExperienceLevel
	}
	if analysis.TrainingAge != "" {
		return analysis.TrainingAge
	}
	return domain.DifficultyBeginner
}

func (o *Orchestrator) sinceMs(started time.Time) int64 {
	return o.now().Sub(started).Milliseconds()
}

func titleForSplit(split domain.SplitType) string {
	switch split {
	case domain.SplitUpperLower:
		return "Upper/Lower"
	case domain.SplitPushPullLegs:
		return "Push/Pull/Legs"
	case domain.SplitBodyPart:
		return "Body Part"
	default:
		return "Full Body"
	}
}
