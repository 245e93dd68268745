package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/pharmesol/salesline/agent/contract"
	statex "github.com/pharmesol/salesline/agent/state"
)

// Outcome is what one dispatch pass produced: the audit records to
// append and the context the reply composer needs.
type Outcome struct {
	Records []statex.ActionRecord

	// Context is a short factual note about what just happened,
	// injected into the model's context block.
	Context string

	// AskEmail marks that the caller wants material emailed but no
	// address is available, so the reply must request one.
	AskEmail bool
}

// Dispatcher routes classified intents to the action executors and
// converts their results into audit records. It is the only component
// that talks to executors.
type Dispatcher struct {
	email    contractx.EmailSender
	callback contractx.CallbackScheduler
	leads    contractx.LeadRecorder
	followUp contractx.FollowUpCreator

	tiers statex.TierThresholds
	now   func() time.Time
}

type Option func(*Dispatcher)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func New(
	email contractx.EmailSender,
	callback contractx.CallbackScheduler,
	leads contractx.LeadRecorder,
	followUp contractx.FollowUpCreator,
	tiers statex.TierThresholds,
	opts ...Option,
) (*Dispatcher, error) {
	if email == nil {
		return nil, errors.New("email sender is required")
	}
	if callback == nil {
		return nil, errors.New("callback scheduler is required")
	}
	if leads == nil {
		return nil, errors.New("lead recorder is required")
	}
	if followUp == nil {
		return nil, errors.New("follow-up creator is required")
	}

	d := &Dispatcher{
		email:    email,
		callback: callback,
		leads:    leads,
		followUp: followUp,
		tiers:    tiers,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch fires whatever action the analysis calls for. Executor
// failures never fail the turn; they surface as success=false records.
func (d *Dispatcher) Dispatch(ctx context.Context, analysis contractx.Analysis, session *statex.Session) Outcome {
	switch analysis.Intent {
	case contractx.IntentRequestPricingEmail:
		return d.dispatchEmail(ctx, analysis, session)
	case contractx.IntentRequestCallback:
		return d.dispatchCallback(ctx, analysis, session)
	}
	return Outcome{}
}

func (d *Dispatcher) dispatchEmail(ctx context.Context, analysis contractx.Analysis, session *statex.Session) Outcome {
	recipient := analysis.Entities.Email
	if recipient == "" {
		recipient = session.EmailOnFile()
	}
	if recipient == "" {
		// No address, no send. The failed record keeps the request in
		// the audit trail while the reply asks for an address.
		return Outcome{
			Records: []statex.ActionRecord{{
				Kind:      statex.ActionEmail,
				Success:   false,
				Message:   "no recipient address on file",
				CreatedAt: d.now().UTC(),
			}},
			Context:  "The caller asked for pricing information but no email address is on file yet. Ask for their email address.",
			AskEmail: true,
		}
	}

	result, err := d.email.SendEmail(ctx, contractx.EmailRequest{
		Recipient:    recipient,
		PharmacyName: session.PharmacyName(),
		Tier:         d.tiers.TierFor(session.Volume()),
		Topic:        "pricing",
	})
	rec := recordFrom(statex.ActionEmail, result, err, d.now())
	out := Outcome{Records: []statex.ActionRecord{rec}}
	if rec.Success {
		out.Context = fmt.Sprintf("A pricing information email was just sent to %s. Confirm this to the caller.", recipient)
	} else {
		out.Context = "Sending the pricing email failed. Apologize and offer to try again or schedule a callback."
	}
	return out
}

func (d *Dispatcher) dispatchCallback(ctx context.Context, analysis contractx.Analysis, session *statex.Session) Outcome {
	result, err := d.callback.ScheduleCallback(ctx, contractx.CallbackRequest{
		Phone:        session.Phone,
		PharmacyName: session.PharmacyName(),
		TimeHint:     analysis.Entities.TimeHint,
	})
	rec := recordFrom(statex.ActionCallback, result, err, d.now())
	out := Outcome{Records: []statex.ActionRecord{rec}}
	if !rec.Success {
		out.Context = "Scheduling the callback failed. Apologize and offer an email follow-up instead."
		return out
	}
	out.Context = fmt.Sprintf("%s. Confirm the time to the caller.", rec.Message)

	// Every booked callback gets a follow-up task so the sales team
	// verifies the call happened.
	fuResult, fuErr := d.followUp.CreateFollowUp(ctx, contractx.FollowUpRequest{
		PharmacyName: session.PharmacyName(),
		Phone:        session.Phone,
		Reason:       "confirm scheduled callback outcome",
	})
	out.Records = append(out.Records, recordFrom(statex.ActionFollowUp, fuResult, fuErr, d.now()))
	return out
}

// LogLead records the session's lead with the CRM exactly once. The
// returned bool is false when there is nothing to do: no lead, no
// collected data, or already logged.
func (d *Dispatcher) LogLead(ctx context.Context, lead *statex.LeadRecord) (statex.ActionRecord, bool) {
	if lead == nil || lead.Logged || lead.Empty() {
		return statex.ActionRecord{}, false
	}

	result, err := d.leads.RecordLead(ctx, contractx.LeadRequest{Lead: *lead})
	rec := recordFrom(statex.ActionLeadLog, result, err, d.now())
	if rec.Success {
		lead.Logged = true
	}
	return rec, true
}

func recordFrom(kind statex.ActionKind, result contractx.ActionResult, err error, now time.Time) statex.ActionRecord {
	if err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("action executor failed")
		return statex.ActionRecord{
			Kind:      kind,
			Success:   false,
			Message:   err.Error(),
			CreatedAt: now.UTC(),
		}
	}
	return statex.ActionRecord{
		Kind:      kind,
		Success:   result.Success,
		Message:   result.Message,
		Reference: result.Reference,
		Payload:   result.Payload,
		CreatedAt: now.UTC(),
	}
}
