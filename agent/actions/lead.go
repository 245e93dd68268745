package actions

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/pharmesol/salesline/agent/contract"
)

// MockLeadRecorder simulates the CRM. Recording always succeeds and
// issues a LEAD- reference.
type MockLeadRecorder struct{}

func NewMockLeadRecorder() *MockLeadRecorder {
	return &MockLeadRecorder{}
}

func (m *MockLeadRecorder) RecordLead(_ context.Context, req contractx.LeadRequest) (contractx.ActionResult, error) {
	ref := newRef("LEAD")
	lead := req.Lead

	pharmacy := lead.PharmacyName
	if pharmacy == "" {
		pharmacy = "Unknown Pharmacy"
	}

	log.Info().
		Str("reference", ref).
		Str("pharmacy_name", pharmacy).
		Str("location", lead.Location).
		Int("monthly_volume", lead.MonthlyVolume).
		Msg("mock lead recorded")

	return contractx.ActionResult{
		Success:   true,
		Message:   fmt.Sprintf("Lead recorded for %s", pharmacy),
		Reference: ref,
		Payload: map[string]any{
			"pharmacy_name":  pharmacy,
			"location":       lead.Location,
			"monthly_volume": lead.MonthlyVolume,
			"email":          lead.Email,
			"phone":          lead.Phone,
			"status":         "new",
		},
	}, nil
}
