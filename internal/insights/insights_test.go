package insights

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityarathi/finsight/internal/extract"
	"github.com/adityarathi/finsight/internal/store/firestore"
)

type fakeLLM struct {
	reply      string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeLLM) GenerateText(ctx context.Context, prompt string, opts extract.GenerateOptions) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.reply, f.err
}

func TestGenerate(t *testing.T) {
	llm := &fakeLLM{reply: "You spend heavily on food.\nConsider a monthly budget."}
	g := NewGenerator(llm)

	sum := firestore.Summary{
		TotalIncome:  45000,
		TotalExpense: 30000,
		ByCategory: map[string]float64{
			"Food": 12000,
			"Rent": 15000,
			"Misc": 3000,
		},
	}

	text, err := g.Generate(context.Background(), sum)
	require.NoError(t, err)
	assert.Equal(t, llm.reply, text)

	assert.Contains(t, llm.lastPrompt, "45000.00")
	assert.Contains(t, llm.lastPrompt, "15000.00")
	// Savings line.
	assert.Contains(t, llm.lastPrompt, "Savings: 15000.00")
	// Largest category first.
	assert.Less(t,
		strings.Index(llm.lastPrompt, "Rent"),
		strings.Index(llm.lastPrompt, "Food"),
	)
}

func TestGenerateEmptySummarySkipsModel(t *testing.T) {
	llm := &fakeLLM{}
	g := NewGenerator(llm)

	text, err := g.Generate(context.Background(), firestore.Summary{})
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.Zero(t, llm.calls)
}

func TestGenerateModelFailure(t *testing.T) {
	g := NewGenerator(&fakeLLM{err: errors.New("unavailable")})

	_, err := g.Generate(context.Background(), firestore.Summary{TotalIncome: 1})
	require.Error(t, err)
}

func TestFormatCategories(t *testing.T) {
	assert.Equal(t, "(none)", formatCategories(nil))
	assert.Equal(t, "- Rent: 100.00", formatCategories(map[string]float64{"Rent": 100}))
}
