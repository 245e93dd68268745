package prompt

import (
	_ "embed"
	"strings"

	statex "github.com/pharmesol/salesline/agent/state"
)

var (
	//go:embed template/system.txt
	systemRaw string

	//go:embed template/greeting_known.txt
	greetingKnownRaw string

	//go:embed template/greeting_unknown.txt
	greetingUnknownRaw string

	//go:embed template/volume_high.txt
	volumeHighRaw string

	//go:embed template/volume_medium.txt
	volumeMediumRaw string

	//go:embed template/volume_low.txt
	volumeLowRaw string

	//go:embed template/volume_unknown.txt
	volumeUnknownRaw string

	//go:embed template/ask_email.txt
	askEmailRaw string

	//go:embed template/fallback_with_email.txt
	fallbackWithEmailRaw string

	//go:embed template/fallback_without_email.txt
	fallbackWithoutEmailRaw string

	//go:embed template/clarification.txt
	clarificationRaw string

	//go:embed template/trouble.txt
	troubleRaw string
)

// PromptSet holds every canned text the conversation pipeline uses:
// the model's system framing, the deterministic greetings, and the
// fallback replies used when the model is unavailable.
type PromptSet struct {
	System          string
	GreetingKnown   string
	GreetingUnknown string

	VolumeHigh    string
	VolumeMedium  string
	VolumeLow     string
	VolumeUnknown string

	AskEmail             string
	FallbackWithEmail    string
	FallbackWithoutEmail string
	Clarification        string
	Trouble              string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		System:          strings.TrimSpace(systemRaw),
		GreetingKnown:   strings.TrimSpace(greetingKnownRaw),
		GreetingUnknown: strings.TrimSpace(greetingUnknownRaw),

		VolumeHigh:    strings.TrimSpace(volumeHighRaw),
		VolumeMedium:  strings.TrimSpace(volumeMediumRaw),
		VolumeLow:     strings.TrimSpace(volumeLowRaw),
		VolumeUnknown: strings.TrimSpace(volumeUnknownRaw),

		AskEmail:             strings.TrimSpace(askEmailRaw),
		FallbackWithEmail:    strings.TrimSpace(fallbackWithEmailRaw),
		FallbackWithoutEmail: strings.TrimSpace(fallbackWithoutEmailRaw),
		Clarification:        strings.TrimSpace(clarificationRaw),
		Trouble:              strings.TrimSpace(troubleRaw),
	}
}

// VolumeMessage picks the tier personalization line for a greeting.
// Startup pharmacies get the growth message rather than silence.
func (p PromptSet) VolumeMessage(tier statex.Tier) string {
	switch tier {
	case statex.TierHigh:
		return p.VolumeHigh
	case statex.TierMedium:
		return p.VolumeMedium
	case statex.TierLow, statex.TierStartup:
		return p.VolumeLow
	}
	return p.VolumeUnknown
}

// Render substitutes {name} placeholders in a template. Unknown
// placeholders are left intact so missing data stays visible.
func Render(tmpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
