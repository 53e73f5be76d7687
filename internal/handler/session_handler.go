package handler

import (
	"net/http"

	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/response"
	"github.com/VanAubrey/aws-cert-review/internal/service"
	"github.com/VanAubrey/aws-cert-review/internal/session"
	"github.com/VanAubrey/aws-cert-review/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionHandler exposes server-side session transitions.
type SessionHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "session_handler").Logger(),
	}
}

// sessionID validates the :session_id parameter. Ids are UUIDs, which also
// keeps arbitrary input out of Redis keys.
func sessionID(c *gin.Context) (string, bool) {
	id, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return "", false
	}
	return id.String(), true
}

// respond writes the session view, or the error of the transition.
func (h *SessionHandler) respond(c *gin.Context, sess *model.Session, err error) {
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, session.ViewOf(sess))
}

// GetSession godoc
// GET /api/v1/sessions/:session_id
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	sess, err := h.sessionService.Get(c.Request.Context(), id)
	h.respond(c, sess, err)
}

// SetCurrent godoc
// PUT /api/v1/sessions/:session_id/current
func (h *SessionHandler) SetCurrent(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req model.SetCurrentIndexRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	sess, err := h.sessionService.SetCurrentIndex(c.Request.Context(), id, *req.Index)
	h.respond(c, sess, err)
}

// Next godoc
// POST /api/v1/sessions/:session_id/next
func (h *SessionHandler) Next(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	sess, err := h.sessionService.Next(c.Request.Context(), id)
	h.respond(c, sess, err)
}

// Previous godoc
// POST /api/v1/sessions/:session_id/previous
func (h *SessionHandler) Previous(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	sess, err := h.sessionService.Previous(c.Request.Context(), id)
	h.respond(c, sess, err)
}

// Answer godoc
// PUT /api/v1/sessions/:session_id/answers/:question_id
func (h *SessionHandler) Answer(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req model.AnswerQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	sess, err := h.sessionService.Answer(c.Request.Context(), id, c.Param("question_id"), req.OptionID)
	h.respond(c, sess, err)
}

// ClearAnswer godoc
// DELETE /api/v1/sessions/:session_id/answers/:question_id
func (h *SessionHandler) ClearAnswer(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	sess, err := h.sessionService.ClearAnswer(c.Request.Context(), id, c.Param("question_id"))
	h.respond(c, sess, err)
}

// ToggleFlag godoc
// POST /api/v1/sessions/:session_id/flags/:question_id/toggle
func (h *SessionHandler) ToggleFlag(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	sess, err := h.sessionService.ToggleFlag(c.Request.Context(), id, c.Param("question_id"))
	h.respond(c, sess, err)
}

// ClearFlag godoc
// DELETE /api/v1/sessions/:session_id/flags/:question_id
func (h *SessionHandler) ClearFlag(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	sess, err := h.sessionService.ClearFlag(c.Request.Context(), id, c.Param("question_id"))
	h.respond(c, sess, err)
}

// Submit godoc
// POST /api/v1/sessions/:session_id/submit
// Grades the session. Repeated submits return the stored result.
func (h *SessionHandler) Submit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	result, err := h.sessionService.Submit(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Discard godoc
// DELETE /api/v1/sessions/:session_id
// Abandons the session without persisting anything.
func (h *SessionHandler) Discard(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.sessionService.Discard(c.Request.Context(), id); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"discarded": true})
}
