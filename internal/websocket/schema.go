package websocket

import (
	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/session"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer      Action = "answer"
	ActionClearAnswer Action = "clear_answer"
	ActionFlag        Action = "flag"
	ActionNavigate    Action = "navigate"
	ActionSubmit      Action = "submit"
	ActionPing        Action = "ping"
)

// RequestPayload is every client message. Fields unused by an action are ignored.
type RequestPayload struct {
	Action     Action `json:"action"`
	QuestionID string `json:"questionId,omitempty"`
	OptionID   string `json:"optionId,omitempty"`
	// Index is the target question for navigate.
	Index *int `json:"index,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState  Event = "state"
	EventTick   Event = "tick"
	EventGraded Event = "graded"
	EventError  Event = "error"
	EventPong   Event = "pong"
)

// StateResponse carries the session after a transition.
type StateResponse struct {
	Event Event        `json:"event"`
	View  session.View `json:"data"`
}

// TickResponse carries the countdown value once per second.
type TickResponse struct {
	Event         Event  `json:"event"`
	TimeRemaining int    `json:"timeRemaining"`
	Display       string `json:"display"`
}

// GradedResponse is sent once the attempt is stored.
type GradedResponse struct {
	Event  Event               `json:"event"`
	Result *model.SubmitResult `json:"data"`
	// AutoSubmitted is true when the countdown ran out.
	AutoSubmitted bool `json:"autoSubmitted"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
