package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

// classificationOpts keeps the bulk call deterministic. Output is uncapped
// because statements can produce long arrays.
var classificationOpts = GenerateOptions{Temperature: 0.1}

// transactionArraySchema validates the model's reply before it is trusted.
// Items that fail the schema invalidate the whole reply, which then degrades
// to an empty list rather than an error.
const transactionArraySchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["date", "description", "amount", "type", "classifiedAs"],
		"properties": {
			"date":         {"type": "string"},
			"description":  {"type": "string"},
			"amount":       {"type": "number"},
			"type":         {"type": "string", "enum": ["Credit", "Debit"]},
			"classifiedAs": {"type": "string", "enum": ["Income", "Expense"]}
		}
	}
}`

// Classifier turns free-form statement text into classified transactions via
// the LLM collaborator.
type Classifier struct {
	llm LLMClient
	log zerolog.Logger
}

// NewClassifier wires the LLM collaborator.
func NewClassifier(llm LLMClient, log zerolog.Logger) *Classifier {
	return &Classifier{llm: llm, log: log}
}

// Classify sends the text to the model and decodes its reply. A malformed or
// schema-invalid reply yields an empty, non-nil slice: bulk callers prefer a
// degraded result over a hard failure. Collaborator transport failures are
// still surfaced as errors.
func (c *Classifier) Classify(ctx context.Context, text string) ([]ClassifiedTransaction, error) {
	prompt := fmt.Sprintf(classificationPrompt, Today(), text)

	reply, err := c.llm.GenerateText(ctx, prompt, classificationOpts)
	if err != nil {
		return nil, collaboratorErr("llm", err)
	}

	txns, decodeErr := decodeTransactions(reply)
	if decodeErr != nil {
		c.log.Warn().Err(decodeErr).Msg("Model reply was not a valid transaction array; returning empty list")
		return []ClassifiedTransaction{}, nil
	}

	for i := range txns {
		c.normalize(&txns[i])
	}
	return txns, nil
}

// normalize canonicalizes the date and records, without correcting, replies
// where the type and classification columns disagree.
func (c *Classifier) normalize(t *ClassifiedTransaction) {
	t.Description = strings.TrimSpace(t.Description)
	t.Date = normalizeDate(t.Date)

	creditAsExpense := t.Type == TypeCredit && t.ClassifiedAs == ClassExpense
	debitAsIncome := t.Type == TypeDebit && t.ClassifiedAs == ClassIncome
	if creditAsExpense || debitAsIncome {
		c.log.Warn().
			Str("description", t.Description).
			Str("type", string(t.Type)).
			Str("classifiedAs", string(t.ClassifiedAs)).
			Msg("Transaction type and classification disagree")
	}
}

// decodeTransactions strips fences, validates the reply against the schema,
// and unmarshals it.
func decodeTransactions(reply string) ([]ClassifiedTransaction, error) {
	clean := cleanModelJSON(reply)

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(transactionArraySchema),
		gojsonschema.NewStringLoader(clean),
	)
	if err != nil {
		return nil, fmt.Errorf("decodeTransactions: validate: %w", err)
	}
	if !result.Valid() {
		descs := make([]string, len(result.Errors()))
		for i, d := range result.Errors() {
			descs[i] = d.String()
		}
		return nil, fmt.Errorf("decodeTransactions: schema violations: %s", strings.Join(descs, "; "))
	}

	var txns []ClassifiedTransaction
	if err := json.Unmarshal([]byte(clean), &txns); err != nil {
		return nil, fmt.Errorf("decodeTransactions: unmarshal: %w", err)
	}
	if txns == nil {
		txns = []ClassifiedTransaction{}
	}
	return txns, nil
}

// dateLayouts are the formats models actually produce, tried in order.
var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// normalizeDate coerces a model-supplied date to the canonical layout.
// Anything unparseable becomes today's date.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	return Today()
}

// cleanModelJSON strips Markdown fences the model sometimes adds despite
// instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}
