package api

import (
	"errors"
	"net/http"

	"pulsefit/program-engine/internal/domain"
	"pulsefit/program-engine/internal/generation"
	"pulsefit/program-engine/internal/llm"
	"pulsefit/program-engine/internal/repository"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramHandler exposes the generation pipeline and its results over HTTP.
type ProgramHandler struct {
	orchestrator *generation.Orchestrator
	programs     repository.ProgramRepository
	slots        repository.ProgramSlotRepository
	logs         repository.GenerationLogRepository
}

// NewProgramHandler creates a new ProgramHandler instance.
func NewProgramHandler(
	orchestrator *generation.Orchestrator,
	programs repository.ProgramRepository,
	slots repository.ProgramSlotRepository,
	logs repository.GenerationLogRepository,
) *ProgramHandler {
	return &ProgramHandler{
		orchestrator: orchestrator,
		programs:     programs,
		slots:        slots,
		logs:         logs,
	}
}

// generateRequest is the JSON body of POST /programs/generate.
type generateRequest struct {
	ClientID              string   `json:"client_id" binding:"required"`
	Goals                 []string `json:"goals" binding:"required"`
	DurationWeeks         int      `json:"duration_weeks" binding:"required"`
	SessionsPerWeek       int      `json:"sessions_per_week" binding:"required"`
	SessionLengthMinutes  int      `json:"session_length_minutes"`
	SplitOverride         string   `json:"split_override"`
	PeriodizationOverride string   `json:"periodization_override"`
	EquipmentOverride     []string `json:"equipment_override"`
	Instructions          string   `json:"instructions"`
}

// Generate runs one generation attempt synchronously and returns the result
// object, validation issues included. A program with validation errors is
// still created; rejecting it is the caller's decision.
func (h *ProgramHandler) Generate(c *gin.Context) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	clientID, err := primitive.ObjectIDFromHex(body.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	req := domain.TrainingRequest{
		ClientID:              clientID,
		Goals:                 body.Goals,
		DurationWeeks:         body.DurationWeeks,
		SessionsPerWeek:       body.SessionsPerWeek,
		SessionLengthMinutes:  body.SessionLengthMinutes,
		SplitOverride:         domain.SplitType(body.SplitOverride),
		PeriodizationOverride: domain.Periodization(body.PeriodizationOverride),
		EquipmentOverride:     body.EquipmentOverride,
		Instructions:          body.Instructions,
	}
	if err := req.Validate(); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.orchestrator.Generate(c.Request.Context(), req)
	if err != nil {
		var genErr *llm.GenerationError
		if errors.As(err, &genErr) {
			abortWithError(c, http.StatusBadGateway, "Generation failed: "+err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Generation failed: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetProgram returns one program record with all its slots.
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	programID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid program ID format")
		return
	}

	program, err := h.programs.GetByID(c.Request.Context(), programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Program not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch program")
		return
	}

	slots, err := h.slots.GetByProgramID(c.Request.Context(), programID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch program slots")
		return
	}

	c.JSON(http.StatusOK, gin.H{"program": program, "slots": slots})
}

// ListPrograms returns all programs generated for a client, newest first.
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	clientID, err := primitive.ObjectIDFromHex(c.Query("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid or missing clientId query parameter")
		return
	}

	programs, err := h.programs.GetByClientID(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch programs")
		return
	}

	c.JSON(http.StatusOK, programs)
}

// ListGenerationLogs returns the attempt logs for a client, newest first.
func (h *ProgramHandler) ListGenerationLogs(c *gin.Context) {
	clientID, err := primitive.ObjectIDFromHex(c.Query("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid or missing clientId query parameter")
		return
	}

	logs, err := h.logs.GetByClientID(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch generation logs")
		return
	}

	c.JSON(http.StatusOK, logs)
}
