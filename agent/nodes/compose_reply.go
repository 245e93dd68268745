package conversationnode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/pharmesol/salesline/agent/contract"
	promptx "github.com/pharmesol/salesline/agent/prompt"
	statex "github.com/pharmesol/salesline/agent/state"
)

// ComposeReply asks the model for the next agent line. Any completion
// failure degrades to a deterministic template; the turn never fails
// because the model did.
func ComposeReply(
	ctx context.Context,
	in *GraphState,
	completer contractx.Completer,
	prompts promptx.PromptSet,
	tiers statex.TierThresholds,
	required []string,
	historyWindow int,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is missing session", contractx.ErrValidation)
	}

	reply, err := completer.Complete(ctx, contractx.CompletionRequest{
		SystemPrompt: systemPrompt(prompts, in, tiers, required),
		Messages:     historyMessages(in.Session, historyWindow),
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("session_id", in.Session.ID).
			Msg("completion failed, using fallback reply")
		reply = fallbackReply(prompts, in)
		in.UsedFallback = true
	}

	in.Reply = strings.TrimSpace(reply)
	return in, nil
}

func systemPrompt(prompts promptx.PromptSet, in *GraphState, tiers statex.TierThresholds, required []string) string {
	var b strings.Builder
	b.WriteString(prompts.System)
	b.WriteString("\n\nCURRENT CONTEXT:\n")

	session := in.Session
	switch session.Classification {
	case statex.ClassificationKnown:
		c := session.Customer
		fmt.Fprintf(&b, "- Caller: %s", c.Name)
		if loc := c.Location(); loc != "" {
			fmt.Fprintf(&b, " in %s", loc)
		}
		b.WriteString(", a known customer.\n")
		if c.HasVolume() {
			fmt.Fprintf(&b, "- They fill about %d prescriptions per month (%s volume tier).\n",
				c.MonthlyVolume, tiers.TierFor(c.MonthlyVolume))
		} else {
			b.WriteString("- Their prescription volume is not on file.\n")
		}
		if c.ContactPerson != "" {
			fmt.Fprintf(&b, "- Contact on file: %s.\n", c.ContactPerson)
		}
		if c.Email != "" {
			fmt.Fprintf(&b, "- Email on file: %s.\n", c.Email)
		}

	case statex.ClassificationLead:
		fmt.Fprintf(&b, "- Caller: %s, a newly qualified lead.\n", session.PharmacyName())
		if lead := session.Lead; lead != nil {
			if lead.Location != "" {
				fmt.Fprintf(&b, "- Location: %s.\n", lead.Location)
			}
			if lead.MonthlyVolume > 0 {
				fmt.Fprintf(&b, "- They fill about %d prescriptions per month (%s volume tier).\n",
					lead.MonthlyVolume, tiers.TierFor(lead.MonthlyVolume))
			}
			if lead.Email != "" {
				fmt.Fprintf(&b, "- Email collected: %s.\n", lead.Email)
			}
		}

	default:
		b.WriteString("- The caller is not in our system yet.\n")
		if lead := session.Lead; lead != nil {
			if collected := describeLead(lead); collected != "" {
				fmt.Fprintf(&b, "- Collected so far: %s.\n", collected)
			}
			if missing := missingFields(lead, required); len(missing) > 0 {
				fmt.Fprintf(&b, "- Still needed: %s. Work these into the conversation naturally.\n",
					strings.Join(missing, ", "))
			}
		}
	}

	if in.Analysis.MentionsPricing {
		b.WriteString("- The caller is asking about pricing. Offer to send details by email or to schedule a callback; never quote figures.\n")
	}
	if in.Outcome.Context != "" {
		fmt.Fprintf(&b, "- %s\n", in.Outcome.Context)
	}
	return strings.TrimSpace(b.String())
}

func describeLead(lead *statex.LeadRecord) string {
	var parts []string
	if lead.PharmacyName != "" {
		parts = append(parts, "pharmacy "+lead.PharmacyName)
	}
	if lead.Location != "" {
		parts = append(parts, "location "+lead.Location)
	}
	if lead.MonthlyVolume > 0 {
		parts = append(parts, fmt.Sprintf("about %d prescriptions/month", lead.MonthlyVolume))
	}
	if lead.Email != "" {
		parts = append(parts, "email "+lead.Email)
	}
	return strings.Join(parts, ", ")
}

func missingFields(lead *statex.LeadRecord, required []string) []string {
	labels := map[string]string{
		statex.LeadFieldPharmacyName:  "pharmacy name",
		statex.LeadFieldLocation:      "location",
		statex.LeadFieldMonthlyVolume: "monthly prescription volume",
		statex.LeadFieldEmail:         "email address",
		statex.LeadFieldContactPerson: "contact person",
	}
	var missing []string
	for _, f := range required {
		if lead.Completion([]string{f}) == 0 {
			if label, ok := labels[f]; ok {
				missing = append(missing, label)
			} else {
				missing = append(missing, f)
			}
		}
	}
	return missing
}

func historyMessages(session *statex.Session, window int) []contractx.Message {
	turns := session.Transcript
	if window > 0 && len(turns) > window {
		turns = turns[len(turns)-window:]
	}
	messages := make([]contractx.Message, 0, len(turns))
	for _, t := range turns {
		role := contractx.RoleUser
		if t.Speaker == statex.SpeakerAgent {
			role = contractx.RoleAssistant
		}
		messages = append(messages, contractx.Message{Role: role, Content: t.Text})
	}
	return messages
}

// fallbackReply picks the canned line that best fits the turn: ask
// for an address when one is needed, confirm an action that already
// fired, otherwise the generic offer keyed on email availability.
func fallbackReply(prompts promptx.PromptSet, in *GraphState) string {
	if in.Outcome.AskEmail {
		return prompts.AskEmail
	}
	for _, rec := range in.Outcome.Records {
		if rec.Success {
			return rec.Message + ". Is there anything else I can help you with?"
		}
	}
	if in.Session.EmailOnFile() != "" {
		return prompts.FallbackWithEmail
	}
	return prompts.FallbackWithoutEmail
}
