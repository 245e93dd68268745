package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/pharmesol/salesline/agent/contract"
)

const defaultFollowUpLead = 72 * time.Hour

// MockFollowUpCreator simulates the task system. Creation always
// succeeds and issues a TASK- reference.
type MockFollowUpCreator struct {
	now func() time.Time
}

func NewMockFollowUpCreator(now func() time.Time) *MockFollowUpCreator {
	if now == nil {
		now = time.Now
	}
	return &MockFollowUpCreator{now: now}
}

func (m *MockFollowUpCreator) CreateFollowUp(_ context.Context, req contractx.FollowUpRequest) (contractx.ActionResult, error) {
	due := req.Due
	if due.IsZero() {
		due = m.now().Add(defaultFollowUpLead)
	}
	ref := newRef("TASK")

	log.Info().
		Str("reference", ref).
		Str("pharmacy_name", req.PharmacyName).
		Time("due", due).
		Msg("mock follow-up task created")

	return contractx.ActionResult{
		Success:   true,
		Message:   fmt.Sprintf("Follow-up task created, due %s", due.Format("Monday, Jan 2")),
		Reference: ref,
		Payload: map[string]any{
			"pharmacy_name": req.PharmacyName,
			"phone":         req.Phone,
			"reason":        req.Reason,
			"due":           due.Format(time.RFC3339),
			"priority":      "medium",
			"status":        "pending",
		},
	}, nil
}
