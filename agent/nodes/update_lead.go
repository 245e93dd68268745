package conversationnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/pharmesol/salesline/agent/contract"
	dispatchx "github.com/pharmesol/salesline/agent/dispatch"
	statex "github.com/pharmesol/salesline/agent/state"
)

// UpdateLead merges extracted entities into the session's lead record
// and promotes the session once every required field is collected.
// Promotion triggers the one-time lead log.
func UpdateLead(ctx context.Context, in *GraphState, dispatcher *dispatchx.Dispatcher, required []string) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is missing session", contractx.ErrValidation)
	}

	session := in.Session
	if session.Lead == nil || session.Classification == statex.ClassificationKnown {
		return in, nil
	}

	if session.Lead.Merge(patchFrom(in.Analysis.Entities)) {
		log.Debug().
			Str("session_id", session.ID).
			Float64("completion", session.Lead.Completion(required)).
			Msg("lead record updated")
	}

	if session.Classification == statex.ClassificationUnknownIncomplete && session.Lead.Complete(required) {
		if err := session.PromoteLead(); err != nil {
			return nil, err
		}
		if rec, ok := dispatcher.LogLead(ctx, session.Lead); ok {
			session.AppendAction(rec)
		}
		log.Info().
			Str("session_id", session.ID).
			Str("pharmacy_name", session.Lead.PharmacyName).
			Msg("lead qualified")
	}
	return in, nil
}

func patchFrom(e contractx.Entities) statex.MergePatch {
	return statex.MergePatch{
		PharmacyName:  e.PharmacyName,
		Location:      e.Location,
		MonthlyVolume: e.MonthlyVolume,
		Email:         e.Email,
	}
}
