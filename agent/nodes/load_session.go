package conversationnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/pharmesol/salesline/agent/contract"
	statex "github.com/pharmesol/salesline/agent/state"
)

func LoadSession(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	session, err := store.Load(ctx, in.SessionID)
	if err != nil {
		if errors.Is(err, statex.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: call %s has not been started", contractx.ErrInvalidState, in.SessionID)
		}
		return nil, err
	}
	in.Session = session
	return in, nil
}
