package extract

import "time"

// Source records which stage of the pipeline produced an amount.
type Source string

const (
	// SourceHeuristic means the local keyword scorer found the amount in
	// extracted text, with no LLM call.
	SourceHeuristic Source = "heuristic"

	// SourceLLM means the LLM fallback parsed the amount from embedded or
	// spreadsheet text.
	SourceLLM Source = "llm"

	// SourceVisionHybrid means OCR recovered the text and the LLM fallback
	// parsed the amount from it.
	SourceVisionHybrid Source = "vision-hybrid"
)

// Upload is one user-submitted file entering the pipeline.
type Upload struct {
	Filename string
	MIMEType string
	Data     []byte
}

// ExtractedAmount is the pipeline's final numeric output for single-receipt
// flows. Amount is always a non-negative finite number; failure paths return
// an error instead of a zero value.
type ExtractedAmount struct {
	Amount  float64 `json:"amount"`
	Source  Source  `json:"source"`
	RawText string  `json:"rawText,omitempty"`
}

// TransactionType mirrors the statement column the model classified a line
// into.
type TransactionType string

const (
	TypeCredit TransactionType = "Credit"
	TypeDebit  TransactionType = "Debit"
)

// Classification is the income/expense label attached to a classified line.
type Classification string

const (
	ClassIncome  Classification = "Income"
	ClassExpense Classification = "Expense"
)

// ClassifiedTransaction is one statement line the model recognized as a
// transaction. Dates are normalized to YYYY-MM-DD.
type ClassifiedTransaction struct {
	Date         string          `json:"date"`
	Description  string          `json:"description"`
	Amount       float64         `json:"amount"`
	Type         TransactionType `json:"type"`
	ClassifiedAs Classification  `json:"classifiedAs"`
}

// DateLayout is the canonical layout for classified transaction dates.
const DateLayout = "2006-01-02"

// Today returns the current date in the canonical layout. Variable so tests
// can pin it.
var Today = func() string {
	return time.Now().Format(DateLayout)
}
