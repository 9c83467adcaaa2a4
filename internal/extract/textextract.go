package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// TextExtractor turns an uploaded file into raw text, choosing the cheapest
// strategy that works: embedded text for PDFs, deterministic conversion for
// spreadsheets, and the OCR collaborator for everything scanned.
type TextExtractor struct {
	ocr OCRClient
	// minEmbeddedChars is the threshold below which embedded PDF text is
	// treated as absent and the document goes to OCR.
	minEmbeddedChars int
	log              zerolog.Logger
}

// NewTextExtractor wires the OCR collaborator and tunables.
func NewTextExtractor(ocr OCRClient, minEmbeddedChars int, log zerolog.Logger) *TextExtractor {
	if minEmbeddedChars <= 0 {
		minEmbeddedChars = 15
	}
	return &TextExtractor{ocr: ocr, minEmbeddedChars: minEmbeddedChars, log: log}
}

// Extract produces raw text for an already-validated upload. viaOCR reports
// whether the OCR collaborator produced the text, which downstream stages
// use for provenance tagging. A typed no_text failure is returned when every
// fallback comes up empty.
func (t *TextExtractor) Extract(ctx context.Context, u Upload) (text string, viaOCR bool, err error) {
	switch DetectKind(u) {
	case KindPDF:
		text, viaOCR, err = t.extractPDF(ctx, u)
	case KindImage:
		viaOCR = true
		text, err = t.extractImage(ctx, u)
	case KindSpreadsheet:
		text, err = t.extractSpreadsheet(u)
	default:
		return "", false, invalidInput(fmt.Sprintf("unsupported file type %q", u.Filename))
	}
	if err != nil {
		return "", viaOCR, err
	}

	text = stripControlChars(text)
	if strings.TrimSpace(text) == "" {
		return "", viaOCR, noText("no text detected in document")
	}
	return text, viaOCR, nil
}

// extractPDF tries embedded text first; scanned PDFs fall back to the OCR
// collaborator's document mode on the raw bytes.
func (t *TextExtractor) extractPDF(ctx context.Context, u Upload) (string, bool, error) {
	embedded, err := embeddedPDFText(u.Data)
	if err != nil {
		// Recoverable: a malformed or scanned PDF still has an OCR path.
		t.log.Debug().Err(err).Str("filename", u.Filename).Msg("Embedded PDF text extraction failed")
	}

	if len(strings.TrimSpace(embedded)) >= t.minEmbeddedChars {
		return embedded, false, nil
	}

	t.log.Info().Str("filename", u.Filename).Msg("PDF has little or no embedded text; falling back to OCR")

	text, ocrErr := t.ocr.DetectDocumentText(ctx, u.Data, "application/pdf")
	if ocrErr != nil {
		return "", true, collaboratorErr("ocr", ocrErr)
	}
	return text, true, nil
}

func (t *TextExtractor) extractImage(ctx context.Context, u Upload) (string, error) {
	text, err := t.ocr.DetectImageText(ctx, u.Data)
	if err != nil {
		return "", collaboratorErr("ocr", err)
	}
	return text, nil
}

// extractSpreadsheet serializes the first sheet to CSV text. No OCR is ever
// involved for tabular files.
func (t *TextExtractor) extractSpreadsheet(u Upload) (string, error) {
	if strings.EqualFold(filepath.Ext(u.Filename), ".csv") {
		return normalizeCSV(u.Data), nil
	}

	f, err := excelize.OpenReader(bytes.NewReader(u.Data))
	if err != nil {
		return "", parseErr("could not open spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", noText("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", parseErr("could not read spreadsheet rows", err)
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", parseErr("could not serialize spreadsheet row", err)
		}
	}
	w.Flush()
	return sb.String(), nil
}

// normalizeCSV re-serializes CSV bytes to clean up quoting irregularities.
// Unparseable input passes through as-is; the downstream stages are tolerant
// of noise.
func normalizeCSV(data []byte) string {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return string(data)
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.WriteAll(records); err != nil {
		return string(data)
	}
	return sb.String()
}

// embeddedPDFText reads the text stored in a PDF's content streams, row by
// row, without any image recognition. Row content arrives as per-glyph
// fragments, so fragments concatenate directly; the original spacing is
// already inside them.
func embeddedPDFText(data []byte) (text string, err error) {
	// The parser panics on some malformed files; uploads are user-controlled.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("embeddedPDFText: parse: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("embeddedPDFText: open reader: %w", err)
	}

	var sb strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
