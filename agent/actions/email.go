package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/pharmesol/salesline/agent/contract"
	statex "github.com/pharmesol/salesline/agent/state"
)

const (
	senderAddress = "sales@pharmesol.com"
	supportPhone  = "(555) 123-4567"
)

// Benefit blocks per tier, rendered into the outbound email body.
const (
	benefitsPremium = `- Volume discounts on your full order book
- A dedicated account manager
- Priority inventory allocation
- Emergency delivery options`

	benefitsStandard = `- Volume-based pricing tiers
- Flexible delivery scheduling
- Account management support`

	benefitsGrowth = `- A competitive pricing structure
- Growth-oriented service options
- Flexible order minimums`
)

// MockEmailSender simulates the email service. Delivery always
// succeeds; the composed message is returned in the result payload so
// callers can log or audit it.
type MockEmailSender struct{}

func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{}
}

func (m *MockEmailSender) SendEmail(_ context.Context, req contractx.EmailRequest) (contractx.ActionResult, error) {
	recipient := strings.TrimSpace(req.Recipient)
	if recipient == "" {
		return contractx.ActionResult{
			Success: false,
			Message: "no recipient address available",
		}, nil
	}

	pharmacy := req.PharmacyName
	if pharmacy == "" {
		pharmacy = "your pharmacy"
	}
	subject := fmt.Sprintf("Pharmesol Pricing Information - %s", pharmacy)
	body := buildEmailBody(pharmacy, req.Tier)

	log.Info().
		Str("recipient", recipient).
		Str("subject", subject).
		Str("tier", string(req.Tier)).
		Msg("mock email sent")

	return contractx.ActionResult{
		Success: true,
		Message: fmt.Sprintf("Pricing information sent to %s", recipient),
		Payload: map[string]any{
			"recipient": recipient,
			"sender":    senderAddress,
			"subject":   subject,
			"body":      body,
		},
	}, nil
}

func buildEmailBody(pharmacy string, tier statex.Tier) string {
	benefits := benefitsGrowth
	switch tier {
	case statex.TierHigh:
		benefits = benefitsPremium
	case statex.TierMedium:
		benefits = benefitsStandard
	}

	return fmt.Sprintf(`Hello %s,

Thank you for your interest in Pharmesol. Based on your prescription volume, these programs would fit your pharmacy:

%s

A member of our team will reach out shortly to walk through the details. Reply to this email with any questions in the meantime.

Best regards,
The Pharmesol Sales Team
Phone: %s
Email: %s`, pharmacy, benefits, supportPhone, senderAddress)
}
