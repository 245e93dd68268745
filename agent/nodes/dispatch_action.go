package conversationnode

import (
	"context"
	"fmt"

	contractx "github.com/pharmesol/salesline/agent/contract"
	dispatchx "github.com/pharmesol/salesline/agent/dispatch"
)

func DispatchAction(ctx context.Context, in *GraphState, dispatcher *dispatchx.Dispatcher) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is missing session", contractx.ErrValidation)
	}

	in.Outcome = dispatcher.Dispatch(ctx, in.Analysis, in.Session)
	for _, rec := range in.Outcome.Records {
		in.Session.AppendAction(rec)
	}
	return in, nil
}
