package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/pharmesol/salesline/agent/contract"
	dispatchx "github.com/pharmesol/salesline/agent/dispatch"
	nodex "github.com/pharmesol/salesline/agent/nodes"
	promptx "github.com/pharmesol/salesline/agent/prompt"
	statex "github.com/pharmesol/salesline/agent/state"
)

const defaultHistoryWindow = 12

// Config tunes behavior shared by every call the engine handles.
type Config struct {
	// RequiredLeadFields qualify an unknown caller as a lead. Empty
	// uses the standard name/location/volume set.
	RequiredLeadFields []string

	// HistoryWindow caps how many transcript turns reach the model.
	HistoryWindow int

	Tiers statex.TierThresholds
}

// Engine owns the per-turn pipeline and the collaborators every call
// shares. Calls created from one engine are independent; each guards
// its own session.
type Engine struct {
	store      statex.Store
	directory  contractx.DirectoryLookup
	completer  contractx.Completer
	dispatcher *dispatchx.Dispatcher
	prompts    promptx.PromptSet

	required []string
	window   int
	tiers    statex.TierThresholds

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now   func() time.Time
	newID func() string
}

type Option func(*Engine)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides session ID generation, for tests.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

func New(
	store statex.Store,
	directory contractx.DirectoryLookup,
	completer contractx.Completer,
	dispatcher *dispatchx.Dispatcher,
	cfg Config,
	opts ...Option,
) (*Engine, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if directory == nil {
		return nil, errors.New("directory lookup is required")
	}
	if dispatcher == nil {
		return nil, errors.New("action dispatcher is required")
	}
	if completer == nil {
		completer = disabledCompleter{}
		log.Warn().Msg("no completer configured, replies use fallback templates")
	}

	required := cfg.RequiredLeadFields
	if len(required) == 0 {
		required = statex.DefaultRequiredLeadFields
	}
	window := cfg.HistoryWindow
	if window <= 0 {
		window = defaultHistoryWindow
	}

	e := &Engine{
		store:      store,
		directory:  directory,
		completer:  completer,
		dispatcher: dispatcher,
		prompts:    promptx.LoadPromptSet(),
		required:   required,
		window:     window,
		tiers:      cfg.Tiers,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}

	runner, err := e.buildGraph(context.Background())
	if err != nil {
		return nil, fmt.Errorf("compile conversation graph: %w", err)
	}
	e.graphRunner = runner
	return e, nil
}

// NewCall prepares a call handle. Nothing happens until Start.
func (e *Engine) NewCall() *Call {
	return &Call{engine: e}
}

func (e *Engine) summaryFrom(session *statex.Session) statex.Summary {
	summary := statex.Summary{
		SessionID:      session.ID,
		Phone:          session.Phone,
		Classification: session.Classification,
		Turns:          len(session.Transcript),
		Actions:        session.Actions,
		Customer:       session.Customer,
		Lead:           session.Lead,
		StartedAt:      session.StartedAt,
		ClosedAt:       session.ClosedAt,
	}
	if session.Lead != nil {
		summary.LeadCompletion = session.Lead.Completion(e.required)
	}
	return summary
}

// disabledCompleter stands in when no model is configured, steering
// every turn through the deterministic fallback path.
type disabledCompleter struct{}

func (disabledCompleter) Complete(context.Context, contractx.CompletionRequest) (string, error) {
	return "", fmt.Errorf("%w: no completer configured", contractx.ErrCompletion)
}
