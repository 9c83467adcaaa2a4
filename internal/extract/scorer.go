package extract

import (
	"sort"
	"strings"
)

// amountKeywords is the priority keyword list for financially relevant
// lines, ordered roughly by specificity. A line must contain at least one of
// these (case-insensitive) to yield candidates.
var amountKeywords = []string{
	"net salary payable",
	"net salary",
	"net pay",
	"total earnings (a)",
	"total earnings",
	"gross pay",
	"gross salary",
	"grand total",
	"amount paid",
	"total",
}

// amountCandidate is one scored numeric value found on a keyword-bearing
// line. Candidates live only for the duration of a single ScoreAmount call.
type amountCandidate struct {
	score int
	value float64
}

// ScoreAmount scans extracted text line by line for keyword-bearing lines
// and returns the best-scoring amount. ok is false when no keyword line
// carries a parseable number, which signals the caller to fall back to the
// LLM. Running this before any external call keeps well-structured documents
// (machine-generated payslips, itemized receipts) off the network entirely.
func ScoreAmount(text string) (float64, bool) {
	var candidates []amountCandidate

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		if !containsAmountKeyword(lower) {
			continue
		}

		for _, value := range numbersInLine(line) {
			candidates = append(candidates, amountCandidate{
				score: scoreLine(lower, value),
				value: value,
			})
		}
	}

	if len(candidates) == 0 {
		return 0, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].value > candidates[j].value
	})

	return candidates[0].value, true
}

func containsAmountKeyword(lower string) bool {
	for _, kw := range amountKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// scoreLine weighs a candidate by keyword salience, with a small bias toward
// realistic salary/bill magnitudes over incidental small numbers.
func scoreLine(lower string, value float64) int {
	score := 0
	if strings.Contains(lower, "net") {
		score += 3
	}
	if strings.Contains(lower, "total") {
		score += 2
	}
	if strings.Contains(lower, "earnings") || strings.Contains(lower, "salary") {
		score += 2
	}
	if strings.Contains(lower, "grand") {
		score++
	}
	if value > 100 {
		score++
	}
	return score
}
