// Package claude asks the Claude API for a plain-language account of a
// saved plan: why the line runs in this order, where time is lost, and what
// to watch on the floor.
package claude

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joshharrison/linesched/internal/planner"
	"github.com/joshharrison/linesched/internal/reporter"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

// ErrNoAPIKey is returned when neither an explicit key nor ANTHROPIC_API_KEY is set.
var ErrNoAPIKey = errors.New("ANTHROPIC_API_KEY not set")

// Client wraps the Anthropic SDK for plan summaries.
type Client struct {
	inner anthropic.Client
	model anthropic.Model
}

// NewClient creates a Claude client. apiKey defaults to ANTHROPIC_API_KEY,
// model to DefaultModel. Extra options are passed to the SDK.
func NewClient(apiKey, model string, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	inner := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Client{inner: inner, model: anthropic.Model(model)}, nil
}

const summarisePlanPrompt = `You are a production planner explaining a flow-shop schedule to a shift supervisor.

You will receive the machine line, the quantities being built, and the simulated schedule
(per-unit start/end times on every machine, idle time per machine, any capacity overrun, and
the critical path of operations that fixes the makespan).

Write a short narrative covering:
- The dispatch order and why it keeps downstream machines fed.
- Which machine is the bottleneck and how much idle time each machine carries.
- Any machine that runs past its capacity and what that means for the shift.

Use the numbers given. Keep it under 200 words. No headings, no bullet lists.
`

// SummarisePlan returns a narrative of the plan.
func (c *Client) SummarisePlan(ctx context.Context, plan *planner.Plan) (string, error) {
	prompt, err := buildPlanPrompt(plan)
	if err != nil {
		return "", err
	}

	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(1024),
		System: []anthropic.TextBlockParam{
			{Text: summarisePlanPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API call: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(text.String()), nil
}

// buildPlanPrompt renders the plan facts the model needs.
func buildPlanPrompt(plan *planner.Plan) (string, error) {
	if plan == nil || plan.Schedule == nil {
		return "", errors.New("plan has no schedule")
	}
	schedule, err := reporter.New(plan).JSON()
	if err != nil {
		return "", fmt.Errorf("render schedule: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Plan %s\n\n", plan.ID)

	b.WriteString("Machines (in stage order):\n")
	for _, m := range plan.Machines {
		fmt.Fprintf(&b, "- %s, capacity %d\n", m.Name, m.Capacity)
	}

	b.WriteString("\nQuantities:\n")
	names := make([]string, 0, len(plan.Quantities))
	for name := range plan.Quantities {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %d\n", name, plan.Quantities[name])
	}

	fmt.Fprintf(&b, "\nMakespan: %d\n", plan.Makespan)
	if plan.Profit != nil {
		fmt.Fprintf(&b, "Profit: %d\n", *plan.Profit)
	}
	if bn := plan.Schedule.Bottleneck(); bn >= 0 {
		fmt.Fprintf(&b, "Bottleneck: %s\n", plan.Machines[bn].Name)
	}
	for _, c := range plan.Candidates {
		fmt.Fprintf(&b, "Split k=%d gave makespan %d\n", c.Split, c.Makespan)
	}

	b.WriteString("\n## Schedule\n\n```json\n")
	b.Write(schedule)
	b.WriteString("\n```\n")
	return b.String(), nil
}
