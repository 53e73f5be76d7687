package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/metrics"
	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/response"
	"github.com/VanAubrey/aws-cert-review/internal/scoring"
	"github.com/VanAubrey/aws-cert-review/internal/service"
	"github.com/VanAubrey/aws-cert-review/internal/session"
	"github.com/VanAubrey/aws-cert-review/internal/timer"
	ws "github.com/VanAubrey/aws-cert-review/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a server-side session: transitions in, state and
// countdown ticks out.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
	tickInterval   time.Duration
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
		tickInterval:   time.Second,
	}
}

// stream is the state of one connected session.
type stream struct {
	h    *WSHandler
	conn *ws.Conn
	id   string
	log  zerolog.Logger

	// ctx lives as long as the connection; the countdown runs under a child.
	ctx       context.Context
	stopTimer context.CancelFunc

	mu        sync.Mutex
	submitted bool
}

// SessionStream godoc
// WS /ws/v1/sessions/:session_id/stream
// Upgrades to WebSocket for live session transitions. Timed sessions receive
// a tick every second and are auto-submitted at zero.
func (h *WSHandler) SessionStream(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	sess, err := h.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	if sess.State != model.SessionStateActive {
		response.Fail(c, http.StatusConflict, response.ErrSessionClosed)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer conn.Close()

	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := &stream{
		h:    h,
		conn: conn,
		id:   id,
		log:  h.log.With().Str("session_id", id).Logger(),
		ctx:  ctx,
	}
	st.log.Info().Msg("Client connected")
	st.sendState(sess)

	timerCtx, stopTimer := context.WithCancel(ctx)
	st.stopTimer = stopTimer
	defer stopTimer()
	if remaining, timed := remainingSeconds(sess, time.Now()); timed {
		go st.runCountdown(timerCtx, remaining)
	}

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				st.log.Warn().Err(err).Msg("Unexpected close")
			} else {
				st.log.Debug().Msg("Connection closed")
			}
			return
		}
		st.handle(ctx, &msg)
	}
}

// remainingSeconds computes the countdown start for a timed session. It never
// exceeds the wall-clock deadline, so reconnecting does not buy extra time.
func remainingSeconds(sess *model.Session, now time.Time) (int, bool) {
	deadline, timed := sess.Deadline()
	if !timed {
		return 0, false
	}
	remaining := int(deadline.Sub(now) / time.Second)
	if sess.TimeRemaining != nil && *sess.TimeRemaining < remaining {
		remaining = *sess.TimeRemaining
	}
	return max(remaining, 0), true
}

func (st *stream) runCountdown(ctx context.Context, remaining int) {
	cd := &timer.Countdown{
		Remaining: remaining,
		Interval:  st.h.tickInterval,
		OnTick: func(ctx context.Context, r int) {
			sess, err := st.h.sessionService.Tick(ctx, st.id, r)
			if err != nil {
				st.log.Warn().Err(err).Msg("Tick failed")
				return
			}
			if sess == nil {
				st.stopTimer()
				return
			}
			st.conn.WriteTyped(ws.TickResponse{
				Event:         ws.EventTick,
				TimeRemaining: r,
				Display:       scoring.FormatTimeRemaining(r),
			})
		},
		OnExpire: func(context.Context) {
			st.log.Info().Msg("Time is up, auto-submitting")
			st.submit(true)
		},
	}
	cd.Run(ctx)
}

func (st *stream) handle(ctx context.Context, msg *ws.RequestPayload) {
	svc := st.h.sessionService
	var (
		sess *model.Session
		err  error
	)

	switch msg.Action {
	case ws.ActionPing:
		st.conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		return
	case ws.ActionSubmit:
		st.submit(false)
		return
	case ws.ActionAnswer:
		if msg.QuestionID == "" || msg.OptionID == "" {
			st.conn.WriteError(string(response.ErrValidation), "questionId and optionId are required")
			return
		}
		sess, err = svc.Answer(ctx, st.id, msg.QuestionID, msg.OptionID)
	case ws.ActionClearAnswer:
		sess, err = svc.ClearAnswer(ctx, st.id, msg.QuestionID)
	case ws.ActionFlag:
		sess, err = svc.ToggleFlag(ctx, st.id, msg.QuestionID)
	case ws.ActionNavigate:
		if msg.Index == nil {
			st.conn.WriteError(string(response.ErrValidation), "index is required")
			return
		}
		sess, err = svc.SetCurrentIndex(ctx, st.id, *msg.Index)
	default:
		st.log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		st.conn.WriteError(string(response.ErrValidation), "unknown action: "+string(msg.Action))
		return
	}

	if err != nil {
		st.writeErr(err)
		return
	}
	st.sendState(sess)
}

// submit grades the session, whether triggered by the client or by the
// countdown. After a successful submit further calls are no-ops.
func (st *stream) submit(auto bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.submitted {
		return
	}
	st.stopTimer()

	result, err := st.h.sessionService.Submit(st.ctx, st.id)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			st.log.Error().Err(err).Msg("Submit failed")
		}
		st.writeErr(err)
		return
	}
	st.submitted = true
	st.log.Info().Int("score", result.Score).Bool("auto", auto).Msg("Session submitted")
	st.conn.WriteTyped(ws.GradedResponse{Event: ws.EventGraded, Result: result, AutoSubmitted: auto})
}

func (st *stream) sendState(sess *model.Session) {
	st.conn.WriteTyped(ws.StateResponse{Event: ws.EventState, View: session.ViewOf(sess)})
}

func (st *stream) writeErr(err error) {
	_, code := classify(err)
	st.conn.WriteError(string(code), response.GetMessage(code))
}
