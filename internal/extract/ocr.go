package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/adityarathi/finsight/internal/metrics"
	vision "google.golang.org/api/vision/v1"
)

// OCRClient is the cloud OCR collaborator seam.
type OCRClient interface {
	// DetectImageText runs text detection on a raster image and returns the
	// recognized text.
	DetectImageText(ctx context.Context, data []byte) (string, error)

	// DetectDocumentText runs document text detection on raw document bytes
	// (scanned PDFs).
	DetectDocumentText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// VisionOCR is the production OCRClient backed by the Cloud Vision API.
type VisionOCR struct {
	svc *vision.Service
}

// NewVisionOCR creates the client using Application Default Credentials.
func NewVisionOCR(ctx context.Context) (*VisionOCR, error) {
	svc, err := vision.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewVisionOCR: create vision service: %w", err)
	}
	return &VisionOCR{svc: svc}, nil
}

// DetectImageText implements OCRClient. The full-page text annotation is
// preferred; the first text-region annotation is the fallback before
// reporting empty.
func (v *VisionOCR) DetectImageText(ctx context.Context, data []byte) (string, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(data)},
				Features: []*vision.Feature{{Type: "TEXT_DETECTION"}},
			},
		},
	}

	resp, err := v.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		metrics.CollaboratorCalls.WithLabelValues("ocr", "error").Inc()
		return "", fmt.Errorf("DetectImageText: annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		metrics.CollaboratorCalls.WithLabelValues("ocr", "empty").Inc()
		return "", fmt.Errorf("DetectImageText: no response from vision")
	}

	ann := resp.Responses[0]
	if ann.Error != nil {
		metrics.CollaboratorCalls.WithLabelValues("ocr", "error").Inc()
		return "", fmt.Errorf("DetectImageText: vision error: %s", ann.Error.Message)
	}

	metrics.CollaboratorCalls.WithLabelValues("ocr", "ok").Inc()

	if ann.FullTextAnnotation != nil && strings.TrimSpace(ann.FullTextAnnotation.Text) != "" {
		return ann.FullTextAnnotation.Text, nil
	}
	if len(ann.TextAnnotations) > 0 {
		return ann.TextAnnotations[0].Description, nil
	}
	return "", nil
}

// DetectDocumentText implements OCRClient for scanned PDFs via the files
// annotation endpoint, concatenating per-page text.
func (v *VisionOCR) DetectDocumentText(ctx context.Context, data []byte, mimeType string) (string, error) {
	req := &vision.BatchAnnotateFilesRequest{
		Requests: []*vision.AnnotateFileRequest{
			{
				InputConfig: &vision.InputConfig{
					Content:  base64.StdEncoding.EncodeToString(data),
					MimeType: mimeType,
				},
				Features: []*vision.Feature{{Type: "DOCUMENT_TEXT_DETECTION"}},
			},
		},
	}

	resp, err := v.svc.Files.Annotate(req).Context(ctx).Do()
	if err != nil {
		metrics.CollaboratorCalls.WithLabelValues("ocr", "error").Inc()
		return "", fmt.Errorf("DetectDocumentText: annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		metrics.CollaboratorCalls.WithLabelValues("ocr", "empty").Inc()
		return "", fmt.Errorf("DetectDocumentText: no response from vision")
	}

	metrics.CollaboratorCalls.WithLabelValues("ocr", "ok").Inc()

	var sb strings.Builder
	for _, page := range resp.Responses[0].Responses {
		if page == nil {
			continue
		}
		if page.Error != nil {
			return "", fmt.Errorf("DetectDocumentText: vision error: %s", page.Error.Message)
		}
		if page.FullTextAnnotation != nil {
			sb.WriteString(page.FullTextAnnotation.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
