// Package insights turns aggregated totals into a short natural-language
// financial summary.
package insights

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/adityarathi/finsight/internal/extract"
	"github.com/adityarathi/finsight/internal/store/firestore"
)

const insightsPrompt = `You are a personal finance advisor.

Given this monthly summary, write 3-5 short, practical observations about
spending habits and savings. Plain text, one observation per line, no
Markdown, no preamble.

Total income: %.2f
Total expenses: %.2f
Savings: %.2f

Expenses by category:
%s`

// insightOpts allows some creative latitude; this output is advisory text,
// not structured data.
var insightOpts = extract.GenerateOptions{Temperature: 0.7, MaxOutputTokens: 512}

// Generator produces insight text from a persisted summary.
type Generator struct {
	llm extract.LLMClient
}

// NewGenerator wires the LLM collaborator.
func NewGenerator(llm extract.LLMClient) *Generator {
	return &Generator{llm: llm}
}

// Generate asks the model for observations on the summary. An all-zero
// summary short-circuits without a model call.
func (g *Generator) Generate(ctx context.Context, sum firestore.Summary) (string, error) {
	if sum.TotalIncome == 0 && sum.TotalExpense == 0 {
		return "No transactions recorded yet. Add incomes and expenses to get insights.", nil
	}

	prompt := fmt.Sprintf(insightsPrompt,
		sum.TotalIncome,
		sum.TotalExpense,
		sum.TotalIncome-sum.TotalExpense,
		formatCategories(sum.ByCategory),
	)

	text, err := g.llm.GenerateText(ctx, prompt, insightOpts)
	if err != nil {
		return "", fmt.Errorf("insights: generate: %w", err)
	}
	return text, nil
}

// formatCategories renders the breakdown largest-first so the model sees the
// dominant categories up top.
func formatCategories(byCategory map[string]float64) string {
	if len(byCategory) == 0 {
		return "(none)"
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if byCategory[names[i]] != byCategory[names[j]] {
			return byCategory[names[i]] > byCategory[names[j]]
		}
		return names[i] < names[j]
	})

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "- %s: %.2f\n", name, byCategory[name])
	}
	return strings.TrimRight(sb.String(), "\n")
}
