package conversationnode

import (
	"fmt"

	contractx "github.com/pharmesol/salesline/agent/contract"
	statex "github.com/pharmesol/salesline/agent/state"
)

// BeginTurn gates the turn on the call phase and records the caller's
// message. The first message after the greeting activates the call.
func BeginTurn(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is missing session", contractx.ErrValidation)
	}

	session := in.Session
	switch session.Phase {
	case statex.PhaseClosed:
		return nil, fmt.Errorf("%w: call %s is closed", contractx.ErrInvalidState, session.ID)
	case statex.PhaseInit:
		return nil, fmt.Errorf("%w: call %s has not been greeted", contractx.ErrInvalidState, session.ID)
	case statex.PhaseGreeting:
		session.Phase = statex.PhaseActive
	}

	session.AppendTurn(statex.SpeakerCaller, in.Text, in.Now)
	return in, nil
}
