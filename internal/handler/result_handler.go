package handler

import (
	"net/http"

	"github.com/VanAubrey/aws-cert-review/internal/response"
	"github.com/VanAubrey/aws-cert-review/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ResultHandler serves stored attempt results.
type ResultHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(attemptService *service.AttemptService, log zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "result_handler").Logger(),
	}
}

// GetResults godoc
// GET /api/v1/results/:attempt_id
// Returns the immutable results computed when the attempt was submitted.
func (h *ResultHandler) GetResults(c *gin.Context) {
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	results, err := h.attemptService.Results(c.Request.Context(), attemptID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}
