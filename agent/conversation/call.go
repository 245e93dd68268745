package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	contractx "github.com/pharmesol/salesline/agent/contract"
	nodex "github.com/pharmesol/salesline/agent/nodes"
	statex "github.com/pharmesol/salesline/agent/state"
)

// Call is one inbound phone conversation. Operations serialize on the
// call's mutex, so concurrent callers see a consistent session.
type Call struct {
	engine *Engine

	mu      sync.Mutex
	id      string
	phone   string
	started bool
	closed  bool
}

// Start identifies the caller and returns the opening greeting. A
// call starts once; a second Start is rejected.
func (c *Call) Start(ctx context.Context, phone string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return "", fmt.Errorf("%w: call already started", contractx.ErrInvalidState)
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", fmt.Errorf("%w: phone number is empty", contractx.ErrInvalidInput)
	}

	e := c.engine
	session := statex.NewSession(e.newID(), phone, e.now())

	record, err := e.directory.Lookup(ctx, phone)
	switch {
	case err == nil:
		if merr := session.MarkKnown(record); merr != nil {
			return "", merr
		}
		log.Info().
			Str("session_id", session.ID).
			Str("pharmacy_name", record.Name).
			Int("monthly_volume", record.MonthlyVolume).
			Msg("caller identified from directory")
	case errors.Is(err, contractx.ErrNotFound):
		if merr := session.MarkUnknown(false); merr != nil {
			return "", merr
		}
		log.Info().
			Str("session_id", session.ID).
			Str("phone", phone).
			Msg("caller not in directory, collecting lead info")
	default:
		if merr := session.MarkUnknown(true); merr != nil {
			return "", merr
		}
		log.Warn().
			Err(err).
			Str("session_id", session.ID).
			Str("phone", phone).
			Msg("directory lookup failed, continuing unidentified")
	}

	greeting := e.greetingFor(session)
	session.Phase = statex.PhaseGreeting
	session.AppendTurn(statex.SpeakerAgent, greeting, e.now())
	session.Touch(e.now())

	if verr := session.Validate(); verr != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrValidation, verr)
	}
	if serr := e.store.Save(ctx, session); serr != nil {
		return "", fmt.Errorf("save session %s: %w", session.ID, serr)
	}

	c.id = session.ID
	c.phone = phone
	c.started = true
	return greeting, nil
}

// ProcessMessage runs one caller message through the turn pipeline
// and returns the agent's reply. Internal trouble degrades to canned
// replies; only state misuse surfaces as an error.
func (c *Call) ProcessMessage(ctx context.Context, text string) (reply string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return "", fmt.Errorf("%w: call has not been started", contractx.ErrInvalidState)
	}
	if c.closed {
		return "", fmt.Errorf("%w: call is closed", contractx.ErrInvalidState)
	}

	e := c.engine
	if strings.TrimSpace(text) == "" {
		// Nothing to work with: no transcript entry, no model call.
		return e.prompts.Clarification, nil
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("session_id", c.id).
				Msg("turn pipeline panicked")
			reply = e.prompts.Trouble
			err = nil
		}
	}()

	out, gerr := e.graphRunner.Invoke(ctx, nodex.GraphInput{SessionID: c.id, Text: text})
	if gerr != nil {
		if errors.Is(gerr, contractx.ErrInvalidState) {
			return "", gerr
		}
		if errors.Is(gerr, nodex.ErrInvalidMessage) || errors.Is(gerr, nodex.ErrInvalidSession) ||
			errors.Is(gerr, contractx.ErrInvalidInput) {
			return e.prompts.Clarification, nil
		}
		log.Error().
			Err(gerr).
			Str("session_id", c.id).
			Msg("turn pipeline failed")
		return e.prompts.Trouble, nil
	}
	return out.Reply, nil
}

// Close ends the call: any collected-but-unlogged lead is captured,
// the session is sealed, and the call summary is returned. A closed
// call rejects further operations, including a second Close.
func (c *Call) Close(ctx context.Context) (statex.Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return statex.Summary{}, fmt.Errorf("%w: call has not been started", contractx.ErrInvalidState)
	}
	if c.closed {
		return statex.Summary{}, fmt.Errorf("%w: call is already closed", contractx.ErrInvalidState)
	}

	e := c.engine
	session, err := e.store.Load(ctx, c.id)
	if err != nil {
		return statex.Summary{}, fmt.Errorf("load session %s: %w", c.id, err)
	}

	if rec, ok := e.dispatcher.LogLead(ctx, session.Lead); ok {
		session.AppendAction(rec)
		log.Info().
			Str("session_id", session.ID).
			Str("pharmacy_name", session.Lead.PharmacyName).
			Msg("unlogged lead captured at close")
	}

	now := e.now()
	session.Phase = statex.PhaseClosed
	session.ClosedAt = now.UTC()
	session.Touch(now)

	if verr := session.Validate(); verr != nil {
		return statex.Summary{}, fmt.Errorf("%w: %v", contractx.ErrValidation, verr)
	}
	if serr := e.store.Save(ctx, session); serr != nil {
		return statex.Summary{}, fmt.Errorf("save session %s: %w", session.ID, serr)
	}

	c.closed = true
	log.Info().
		Str("session_id", session.ID).
		Str("classification", string(session.Classification)).
		Int("turns", len(session.Transcript)).
		Int("actions", len(session.Actions)).
		Msg("call closed")
	return e.summaryFrom(session), nil
}

// Summary returns the sealed call's summary. It is only available
// after Close and may be read repeatedly.
func (c *Call) Summary(ctx context.Context) (statex.Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		return statex.Summary{}, fmt.Errorf("%w: summary requires a closed call", contractx.ErrInvalidState)
	}

	session, err := c.engine.store.Load(ctx, c.id)
	if err != nil {
		return statex.Summary{}, fmt.Errorf("load session %s: %w", c.id, err)
	}
	return c.engine.summaryFrom(session), nil
}
