package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DocumentKind is the coarse file class that decides the extraction policy.
type DocumentKind int

const (
	KindUnsupported DocumentKind = iota
	KindPDF
	KindImage
	KindSpreadsheet
)

// Limits bounds accepted uploads. Zero values fall back to the package
// defaults at validation time, so a zero Limits is usable in tests.
type Limits struct {
	MinBytes int64
	MaxBytes int64
}

const (
	defaultMinBytes = 100
	defaultMaxBytes = 8 << 20
)

var spreadsheetExts = map[string]bool{
	".csv":  true,
	".xls":  true,
	".xlsx": true,
}

var imageMIMEPrefixes = []string{"image/"}

// DetectKind classifies an upload from its declared MIME type, falling back
// to the filename extension. OCR-able raster formats all map to KindImage.
func DetectKind(u Upload) DocumentKind {
	mime := strings.ToLower(strings.TrimSpace(u.MIMEType))
	ext := strings.ToLower(filepath.Ext(u.Filename))

	switch {
	case mime == "application/pdf" || ext == ".pdf":
		return KindPDF
	case mime == "text/csv" || spreadsheetExts[ext],
		strings.Contains(mime, "spreadsheet"),
		mime == "application/vnd.ms-excel":
		return KindSpreadsheet
	}
	for _, p := range imageMIMEPrefixes {
		if strings.HasPrefix(mime, p) {
			return KindImage
		}
	}
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif", ".bmp", ".tiff":
		return KindImage
	}
	return KindUnsupported
}

// ValidateUpload is the admission check that runs before any extraction
// work. Rejections are final and never retried.
func ValidateUpload(u Upload, limits Limits) error {
	min := limits.MinBytes
	if min == 0 {
		min = defaultMinBytes
	}
	max := limits.MaxBytes
	if max == 0 {
		max = defaultMaxBytes
	}

	switch {
	case len(u.Data) == 0:
		return invalidInput("no file uploaded")
	case int64(len(u.Data)) < min:
		return invalidInput(fmt.Sprintf("file too small (%d bytes); likely a blank scan", len(u.Data)))
	case int64(len(u.Data)) > max:
		return invalidInput(fmt.Sprintf("file too large (max %d bytes)", max))
	}

	if DetectKind(u) == KindUnsupported {
		return invalidInput(fmt.Sprintf("unsupported file type %q", u.Filename))
	}
	return nil
}
