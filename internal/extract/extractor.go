package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/adityarathi/finsight/internal/metrics"
)

// amountOpts keeps the single-amount call deterministic and cheap: the reply
// is one number or the NONE sentinel.
var amountOpts = GenerateOptions{Temperature: 0.1, MaxOutputTokens: 128}

// Extractor is the document-to-amount pipeline: admission checks, text
// extraction, the local keyword scorer, and the LLM fallback, in that order.
type Extractor struct {
	limits     Limits
	text       *TextExtractor
	llm        LLMClient
	classifier *Classifier
	log        zerolog.Logger
}

// NewExtractor assembles the pipeline around its two external collaborators.
func NewExtractor(ocr OCRClient, llm LLMClient, limits Limits, minEmbeddedChars int, log zerolog.Logger) *Extractor {
	return &Extractor{
		limits:     limits,
		text:       NewTextExtractor(ocr, minEmbeddedChars, log),
		llm:        llm,
		classifier: NewClassifier(llm, log),
		log:        log,
	}
}

// ExtractAmount runs the single-receipt flow: validate, extract text, score
// locally, and only then fall back to the model. The Source field records
// which stage won.
func (e *Extractor) ExtractAmount(ctx context.Context, u Upload) (*ExtractedAmount, error) {
	start := time.Now()

	out, err := e.extractAmount(ctx, u)

	metrics.ExtractionDuration.WithLabelValues("amount").Observe(time.Since(start).Seconds())
	metrics.ExtractionRequests.WithLabelValues("amount", outcomeLabel(err)).Inc()
	if err == nil {
		metrics.AmountSource.WithLabelValues(string(out.Source)).Inc()
	}
	return out, err
}

func (e *Extractor) extractAmount(ctx context.Context, u Upload) (*ExtractedAmount, error) {
	if err := ValidateUpload(u, e.limits); err != nil {
		return nil, err
	}

	text, viaOCR, err := e.text.Extract(ctx, u)
	if err != nil {
		return nil, err
	}

	if amount, ok := ScoreAmount(text); ok {
		e.log.Debug().
			Str("filename", u.Filename).
			Float64("amount", amount).
			Msg("Keyword scorer resolved amount without model call")
		return &ExtractedAmount{Amount: amount, Source: SourceHeuristic, RawText: text}, nil
	}

	reply, err := e.llm.GenerateText(ctx, fmt.Sprintf(amountPrompt, text), amountOpts)
	if err != nil {
		return nil, collaboratorErr("llm", err)
	}

	amount, ok := ParseAmountReply(reply)
	if !ok {
		return nil, parseErr(fmt.Sprintf("no amount found in model reply %q", reply), nil)
	}

	source := SourceLLM
	if viaOCR {
		source = SourceVisionHybrid
	}
	return &ExtractedAmount{Amount: amount, Source: source, RawText: text}, nil
}

// ExtractTransactions runs the bulk flow: validate, extract text, classify
// every recognizable line. A malformed model reply degrades to an empty list.
func (e *Extractor) ExtractTransactions(ctx context.Context, u Upload) ([]ClassifiedTransaction, error) {
	start := time.Now()

	txns, err := e.extractTransactions(ctx, u)

	metrics.ExtractionDuration.WithLabelValues("transactions").Observe(time.Since(start).Seconds())
	metrics.ExtractionRequests.WithLabelValues("transactions", outcomeLabel(err)).Inc()
	return txns, err
}

func (e *Extractor) extractTransactions(ctx context.Context, u Upload) ([]ClassifiedTransaction, error) {
	if err := ValidateUpload(u, e.limits); err != nil {
		return nil, err
	}

	text, _, err := e.text.Extract(ctx, u)
	if err != nil {
		return nil, err
	}

	txns, err := e.classifier.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("filename", u.Filename).
		Int("transactions", len(txns)).
		Msg("Classified statement")
	return txns, nil
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
