package conversationnode

import (
	"fmt"
	"strings"

	contractx "github.com/pharmesol/salesline/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: composer returned empty reply", contractx.ErrValidation)
	}
	return GraphOutput{Reply: reply, UsedFallback: in.UsedFallback}, nil
}
