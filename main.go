package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	actionsx "github.com/pharmesol/salesline/agent/actions"
	contractx "github.com/pharmesol/salesline/agent/contract"
	conversationx "github.com/pharmesol/salesline/agent/conversation"
	directoryx "github.com/pharmesol/salesline/agent/directory"
	dispatchx "github.com/pharmesol/salesline/agent/dispatch"
	llmx "github.com/pharmesol/salesline/agent/llm"
	statex "github.com/pharmesol/salesline/agent/state"
	configx "github.com/pharmesol/salesline/pkg/config"
	_ "github.com/pharmesol/salesline/pkg/logger/autoload"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("salesline demo failed")
	}
}

func run() error {
	directoryCfg := configx.MustNew[directoryx.Config]("DIRECTORY")
	directoryClient, err := directoryx.NewClient(*directoryCfg)
	if err != nil {
		return fmt.Errorf("build directory client: %w", err)
	}

	tiers := configx.MustNew[statex.TierThresholds]("SALESLINE_TIER")

	dispatcher, err := dispatchx.New(
		actionsx.NewMockEmailSender(),
		actionsx.NewMockCallbackScheduler(nil),
		actionsx.NewMockLeadRecorder(),
		actionsx.NewMockFollowUpCreator(nil),
		*tiers,
	)
	if err != nil {
		return fmt.Errorf("build dispatcher: %w", err)
	}

	engine, err := conversationx.New(
		statex.NewMemoryStore(),
		directoryClient,
		buildCompleter(),
		dispatcher,
		conversationx.Config{Tiers: *tiers},
	)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	ctx := context.Background()

	knownCaller := scenario{
		title: "Known high-volume pharmacy",
		phone: "+15551234567",
		messages: []string{
			"Hi, I'd like to hear about your pricing for high volume pharmacies",
			"We fill about 15,000 prescriptions a month these days",
			"Could you send the pricing details to manager@centralpharmacy.com?",
			"Also schedule a callback tomorrow morning please",
		},
	}
	newLead := scenario{
		title: "New pharmacy lead",
		phone: "+15559876543",
		messages: []string{
			"Hello, this is MedCare Pharmacy in downtown Chicago",
			"We fill around 8,000 prescriptions a month and are looking for a new distributor",
			"Our current supplier keeps missing deliveries",
			"You can email me at info@medcarepharmacy.com",
			"Could someone call me back this afternoon?",
		},
	}

	for _, sc := range []scenario{knownCaller, newLead} {
		if err := sc.play(ctx, engine); err != nil {
			return fmt.Errorf("scenario %q: %w", sc.title, err)
		}
	}
	return nil
}

// buildCompleter returns nil when no model is configured, which keeps
// the demo runnable offline on the deterministic fallback replies.
func buildCompleter() contractx.Completer {
	llmCfg, err := configx.New[llmx.Config]("OPENAI")
	if err != nil {
		log.Warn().Err(err).Msg("model config missing, running without a completer")
		return nil
	}
	client, err := llmx.NewClient(*llmCfg)
	if err != nil {
		log.Warn().Err(err).Msg("model client unavailable, running without a completer")
		return nil
	}
	return client
}

type scenario struct {
	title    string
	phone    string
	messages []string
}

func (s scenario) play(ctx context.Context, engine *conversationx.Engine) error {
	fmt.Printf("\n=== %s (%s) ===\n", s.title, s.phone)

	call := engine.NewCall()
	greeting, err := call.Start(ctx, s.phone)
	if err != nil {
		return fmt.Errorf("start call: %w", err)
	}
	fmt.Printf("Agent:  %s\n", greeting)

	for _, message := range s.messages {
		fmt.Printf("Caller: %s\n", message)
		reply, err := call.ProcessMessage(ctx, message)
		if err != nil {
			return fmt.Errorf("process message: %w", err)
		}
		fmt.Printf("Agent:  %s\n", reply)
	}

	summary, err := call.Close(ctx)
	if err != nil {
		return fmt.Errorf("close call: %w", err)
	}

	fmt.Printf("--- summary: classification=%s turns=%d actions=%d",
		summary.Classification, summary.Turns, len(summary.Actions))
	if summary.Lead != nil {
		fmt.Printf(" lead_completion=%.0f%%", summary.LeadCompletion*100)
	}
	fmt.Println()
	for _, action := range summary.Actions {
		fmt.Printf("    [%s] success=%t ref=%s %s\n", action.Kind, action.Success, action.Reference, action.Message)
	}
	return nil
}
