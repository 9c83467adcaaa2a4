package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// digitComma matches a comma with a digit on each side. Go's regexp has no
// lookarounds, so the digits are captured and restored in the replacement.
var digitComma = regexp.MustCompile(`(\d),(\d)`)

// numericToken matches an integer or decimal, optionally with thousands
// separators, anywhere in a line.
var numericToken = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)

// noneReply matches the LLM's explicit "nothing found" sentinel.
var noneReply = regexp.MustCompile(`(?i)^\s*NONE\s*$`)

// NormalizeNumberString removes every comma that sits between two digits,
// leaving decimal points and all other commas untouched, so that
// locale-formatted amounts like "15,000.00" parse as one number.
func NormalizeNumberString(s string) string {
	// Replacing "1,2" with "12" consumes the trailing digit, so adjacent
	// separators ("1,234,567") need repeated passes.
	for digitComma.MatchString(s) {
		s = digitComma.ReplaceAllString(s, "$1$2")
	}
	return s
}

// ParseAmountReply extracts a numeric amount from an LLM reply. The reply is
// expected to be a bare number; "NONE" (and anything without a numeric
// token) yields ok=false, never zero.
func ParseAmountReply(reply string) (float64, bool) {
	cleaned := NormalizeNumberString(reply)
	if noneReply.MatchString(cleaned) {
		return 0, false
	}

	match := numericToken.FindString(cleaned)
	if match == "" {
		return 0, false
	}

	val, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}

// numbersInLine returns every parseable numeric value in a line, after
// separator normalization. Invalid or non-finite tokens are skipped.
func numbersInLine(line string) []float64 {
	var out []float64
	for _, tok := range numericToken.FindAllString(line, -1) {
		v, err := strconv.ParseFloat(NormalizeNumberString(tok), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// stripControlChars removes non-printable control characters that OCR output
// tends to carry, preserving newlines and tabs.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
