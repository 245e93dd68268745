package conversationnode

import (
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/pharmesol/salesline/agent/contract"
	intentx "github.com/pharmesol/salesline/agent/intent"
)

func AnalyzeMessage(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is missing session", contractx.ErrValidation)
	}

	in.Analysis = intentx.Analyze(in.Text, in.Session.Classification)

	log.Debug().
		Str("session_id", in.Session.ID).
		Str("intent", string(in.Analysis.Intent)).
		Str("confidence", string(in.Analysis.Confidence)).
		Interface("suggested_actions", in.Analysis.SuggestedActions).
		Msg("message analyzed")
	return in, nil
}
