package conversation

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/pharmesol/salesline/agent/nodes"
)

// buildGraph wires the per-turn pipeline: validate, load, gate the
// phase, analyze, update the lead, fire actions, compose the reply,
// persist, finalize.
func (e *Engine) buildGraph(ctx context.Context) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_turn", compose.InvokableLambda(
		func(_ context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateTurn(in, e.now)
		})); err != nil {
		return nil, fmt.Errorf("add node validate_turn: %w", err)
	}

	if err := graph.AddLambdaNode("load_session", compose.InvokableLambda(
		func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadSession(ctx, in, e.store)
		})); err != nil {
		return nil, fmt.Errorf("add node load_session: %w", err)
	}

	if err := graph.AddLambdaNode("begin_turn", compose.InvokableLambda(
		func(_ context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.BeginTurn(in)
		})); err != nil {
		return nil, fmt.Errorf("add node begin_turn: %w", err)
	}

	if err := graph.AddLambdaNode("analyze_message", compose.InvokableLambda(
		func(_ context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AnalyzeMessage(in)
		})); err != nil {
		return nil, fmt.Errorf("add node analyze_message: %w", err)
	}

	if err := graph.AddLambdaNode("update_lead", compose.InvokableLambda(
		func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.UpdateLead(ctx, in, e.dispatcher, e.required)
		})); err != nil {
		return nil, fmt.Errorf("add node update_lead: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_action", compose.InvokableLambda(
		func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.DispatchAction(ctx, in, e.dispatcher)
		})); err != nil {
		return nil, fmt.Errorf("add node dispatch_action: %w", err)
	}

	if err := graph.AddLambdaNode("compose_reply", compose.InvokableLambda(
		func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ComposeReply(ctx, in, e.completer, e.prompts, e.tiers, e.required, e.window)
		})); err != nil {
		return nil, fmt.Errorf("add node compose_reply: %w", err)
	}

	if err := graph.AddLambdaNode("save_session", compose.InvokableLambda(
		func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SaveSession(ctx, in, e.store)
		})); err != nil {
		return nil, fmt.Errorf("add node save_session: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply", compose.InvokableLambda(
		func(_ context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		})); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_turn"},
		{"validate_turn", "load_session"},
		{"load_session", "begin_turn"},
		{"begin_turn", "analyze_message"},
		{"analyze_message", "update_lead"},
		{"update_lead", "dispatch_action"},
		{"dispatch_action", "compose_reply"},
		{"compose_reply", "save_session"},
		{"save_session", "finalize_reply"},
		{"finalize_reply", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("salesline.process_message"))
	if err != nil {
		return nil, fmt.Errorf("compile graph: %w", err)
	}
	return runner, nil
}
