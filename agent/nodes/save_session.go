package conversationnode

import (
	"context"
	"fmt"

	contractx "github.com/pharmesol/salesline/agent/contract"
	statex "github.com/pharmesol/salesline/agent/state"
)

// SaveSession records the agent's reply and persists the session.
// Validation runs first so a broken session never reaches the store.
func SaveSession(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is missing session", contractx.ErrValidation)
	}

	session := in.Session
	session.AppendTurn(statex.SpeakerAgent, in.Reply, in.Now)
	session.Touch(in.Now)

	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}
	if err := store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return in, nil
}
