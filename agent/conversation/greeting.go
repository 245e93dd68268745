package conversation

import (
	promptx "github.com/pharmesol/salesline/agent/prompt"
	statex "github.com/pharmesol/salesline/agent/state"
)

// greetingFor renders the opening line. Known callers get a greeting
// personalized by name, location, and volume tier; everyone else gets
// the information-gathering welcome. A degraded lookup reads the same
// as a clean miss; only the logs differ.
func (e *Engine) greetingFor(session *statex.Session) string {
	if session.Classification != statex.ClassificationKnown {
		return e.prompts.GreetingUnknown
	}

	customer := session.Customer
	locationInfo := ""
	if loc := customer.Location(); loc != "" {
		locationInfo = " in " + loc
	}
	return promptx.Render(e.prompts.GreetingKnown, map[string]string{
		"pharmacy_name":  customer.Name,
		"location_info":  locationInfo,
		"volume_message": e.prompts.VolumeMessage(e.tiers.TierFor(customer.MonthlyVolume)),
	})
}
