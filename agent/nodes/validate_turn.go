package conversationnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/pharmesol/salesline/agent/contract"
	dispatchx "github.com/pharmesol/salesline/agent/dispatch"
	statex "github.com/pharmesol/salesline/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply string

	// UsedFallback reports that the reply came from a canned template
	// instead of the model.
	UsedFallback bool
}

// GraphState is the working set threaded through the turn pipeline.
type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session  *statex.Session
	Analysis contractx.Analysis
	Outcome  dispatchx.Outcome

	Reply        string
	UsedFallback bool
}

func ValidateTurn(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}
