package handler

import (
	"errors"
	"net/http"

	"github.com/VanAubrey/aws-cert-review/internal/grading"
	"github.com/VanAubrey/aws-cert-review/internal/repository"
	"github.com/VanAubrey/aws-cert-review/internal/response"
	"github.com/VanAubrey/aws-cert-review/internal/service"
	"github.com/VanAubrey/aws-cert-review/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// classify maps a domain error onto its HTTP status and error code.
func classify(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, session.ErrInvalidMode):
		return http.StatusBadRequest, response.ErrInvalidMode
	case errors.Is(err, grading.ErrInvalidAnswers):
		return http.StatusBadRequest, response.ErrInvalidAnswers
	case errors.Is(err, service.ErrInvalidStartTime):
		return http.StatusBadRequest, response.ErrInvalidStart
	case errors.Is(err, session.ErrUnknownQuestion):
		return http.StatusBadRequest, response.ErrUnknownQuestion
	case errors.Is(err, session.ErrUntimedSession):
		return http.StatusBadRequest, response.ErrUntimedSession
	case errors.Is(err, service.ErrExamNotFound):
		return http.StatusNotFound, response.ErrExamNotFound
	case errors.Is(err, service.ErrAttemptNotFound):
		return http.StatusNotFound, response.ErrAttemptNotFound
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, response.ErrSessionNotFound
	case errors.Is(err, session.ErrSessionClosed):
		return http.StatusConflict, response.ErrSessionClosed
	case errors.Is(err, repository.ErrConcurrentUpdate):
		return http.StatusConflict, response.ErrConcurrentUpdate
	case errors.Is(err, session.ErrNoQuestions):
		return http.StatusUnprocessableEntity, response.ErrNoQuestions
	case errors.Is(err, grading.ErrDataIntegrity):
		return http.StatusUnprocessableEntity, response.ErrDataIntegrity
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// fail writes the envelope for err. Unclassified errors are logged.
func fail(c *gin.Context, log zerolog.Logger, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("path", c.FullPath()).
			Str("request_id", response.RequestID(c)).
			Msg("Request failed")
	}
	response.Fail(c, status, code)
}
