package api

import (
	"net/http"

	"pulsefit/program-engine/internal/generation"
	"pulsefit/program-engine/internal/repository"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the HTTP surface. All program routes sit behind JWT
// authentication; tokens come from the external user-management service.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	orchestrator *generation.Orchestrator,
	programs repository.ProgramRepository,
	slots repository.ProgramSlotRepository,
	logs repository.GenerationLogRepository,
) {
	programHandler := NewProgramHandler(orchestrator, programs, slots, logs)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		programGroup := protected.Group("/programs")
		{
			// POST /api/v1/programs/generate — run one generation attempt
			programGroup.POST("/generate", programHandler.Generate)
			// GET /api/v1/programs?clientId= — list a client's programs
			programGroup.GET("", programHandler.ListPrograms)
			// GET /api/v1/programs/:id — one program with all slots
			programGroup.GET("/:id", programHandler.GetProgram)
		}

		// GET /api/v1/generation-logs?clientId= — attempt observability
		protected.GET("/generation-logs", programHandler.ListGenerationLogs)
	}
}
