// File path: internal/advisor/pipeline.go
package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langgraphgo/graph"

	"github.com/veyra/billscope/internal/common"
)

// Advice is the free-text artifact attached to a scan report.
type Advice struct {
	Criteria  string `json:"criteria,omitempty"`
	Narrative string `json:"narrative,omitempty"`
}

// Advisor runs the two-step advisory pipeline over a provider.
type Advisor struct {
	provider Provider
}

// New wraps a provider; a nil provider produces a disabled advisor.
func New(provider Provider) *Advisor {
	return &Advisor{provider: provider}
}

// Enabled reports whether a provider is available.
func (a *Advisor) Enabled() bool {
	return a != nil && a.provider != nil
}

// Advise generates the criteria text for the dataset's columns and a
// narrative over the per-category counts. The two steps run as a small
// message graph; the first failure aborts the pipeline and the caller
// is expected to continue without advice.
func (a *Advisor) Advise(ctx context.Context, columns []string, counts map[string]int) (Advice, error) {
	if !a.Enabled() {
		return Advice{}, nil
	}
	logger := common.Logger()
	var advice Advice

	g := graph.NewMessageGraph()
	g.AddNode("criteria", func(ctx context.Context, state []llms.MessageContent) ([]llms.MessageContent, error) {
		text, err := a.provider.Chat(ctx, []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: criteriaPrompt(columns)},
		})
		if err != nil {
			return nil, fmt.Errorf("criteria step: %w", err)
		}
		advice.Criteria = text
		return append(state, llms.TextParts(llms.ChatMessageTypeAI, text)), nil
	})
	g.AddNode("narrative", func(ctx context.Context, state []llms.MessageContent) ([]llms.MessageContent, error) {
		text, err := a.provider.Chat(ctx, []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: narrativePrompt(counts)},
		})
		if err != nil {
			return nil, fmt.Errorf("narrative step: %w", err)
		}
		advice.Narrative = text
		return append(state, llms.TextParts(llms.ChatMessageTypeAI, text)), nil
	})
	g.AddEdge("criteria", "narrative")
	g.AddEdge("narrative", graph.END)
	g.SetEntryPoint("criteria")

	runnable, err := g.Compile()
	if err != nil {
		return Advice{}, fmt.Errorf("compile advisory graph: %w", err)
	}
	seed := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, strings.Join(columns, ", ")),
	}
	if _, err := runnable.Invoke(ctx, seed); err != nil {
		return Advice{}, err
	}
	logger.Info("advisor: advice generated", "provider", a.provider.Name())
	return advice, nil
}

const systemPrompt = "You are an expert in telecom billing anomaly detection."

func criteriaPrompt(columns []string) string {
	return fmt.Sprintf(`You are given a billing dataset with the following columns: %s.
Provide a detailed list of criteria to detect the following anomalies in the dataset:
- Duplicate Billings
- High or Low Billings
- Invalid Service Types
- Billing for Suspended Accounts

For each anomaly, provide the exact steps to identify them based on the given columns.
Provide a detailed report on the anomalies detected, including specific entries that are anomalous and explanations for why they were flagged.`,
		strings.Join(columns, ", "))
}

func narrativePrompt(counts map[string]int) string {
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	var b strings.Builder
	b.WriteString("A billing anomaly scan finished with the following counts per category:\n")
	for _, category := range categories {
		fmt.Fprintf(&b, "- %s: %d\n", category, counts[category])
	}
	b.WriteString("Write a short plain-language narrative (3-5 sentences) summarizing these findings for a billing operations reviewer.")
	return b.String()
}
