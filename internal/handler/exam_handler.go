package handler

import (
	"net/http"

	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/response"
	"github.com/VanAubrey/aws-cert-review/internal/service"
	"github.com/VanAubrey/aws-cert-review/internal/session"
	"github.com/VanAubrey/aws-cert-review/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ExamHandler handles the exam catalog and per-exam attempt endpoints.
type ExamHandler struct {
	examService    *service.ExamService
	sessionService *service.SessionService
	attemptService *service.AttemptService
	log            zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, sessionService *service.SessionService, attemptService *service.AttemptService, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		examService:    examService,
		sessionService: sessionService,
		attemptService: attemptService,
		log:            log.With().Str("component", "exam_handler").Logger(),
	}
}

// ListExams godoc
// GET /api/v1/exams
// Lists the exam catalog ordered by code.
func (h *ExamHandler) ListExams(c *gin.Context) {
	exams, err := h.examService.List(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// GetExam godoc
// GET /api/v1/exams/:exam_id
// Returns one exam without its question bank.
func (h *ExamHandler) GetExam(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), examID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam.Summary()})
}

// StartExam godoc
// POST /api/v1/exams/:exam_id/start
// Creates a server-side session with shuffled questions and options.
func (h *ExamHandler) StartExam(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req model.StartExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		if _, badMode := fields["mode"]; badMode {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidMode, fields)
			return
		}
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	count := 0
	if req.QuestionCount != nil {
		count = *req.QuestionCount
	}

	sess, err := h.sessionService.Start(c.Request.Context(), examID, req.Mode, count)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, session.ViewOf(sess))
}

// SubmitExam godoc
// POST /api/v1/exams/:exam_id/submit
// Grades a client-held session against the canonical exam.
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		if _, badAnswers := fields["answers"]; badAnswers {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidAnswers, fields)
			return
		}
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.attemptService.Submit(c.Request.Context(), examID, &req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// ListAttempts godoc
// GET /api/v1/exams/:exam_id/attempts
// Returns the latest attempts of an exam.
func (h *ExamHandler) ListAttempts(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	attempts, err := h.attemptService.History(c.Request.Context(), examID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// parseUUIDParam reads a UUID path parameter, failing the request when malformed.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
