// Command extract runs the extraction pipeline against a local file and
// prints the result as JSON. Useful for trying prompts and thresholds
// without a running server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/adityarathi/finsight/internal/config"
	"github.com/adityarathi/finsight/internal/extract"
	"github.com/adityarathi/finsight/internal/gcsarchive"
	"github.com/adityarathi/finsight/internal/logger"
)

func main() {
	log := logger.New()

	var (
		filePath = flag.String("file", "", "Local path or gs:// URI of a receipt, payslip, or statement (required)")
		mode     = flag.String("mode", "amount", "Extraction mode: amount or transactions")
	)
	flag.Parse()

	if *filePath == "" {
		log.Fatal().Msg("Usage: extract -file /path/to/receipt.pdf [-mode amount|transactions]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	var data []byte
	if strings.HasPrefix(*filePath, "gs://") {
		archive, err := gcsarchive.New(ctx, cfg.ReceiptBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GCS archive")
		}
		defer archive.Close()

		data, err = archive.FetchURI(ctx, *filePath)
		if err != nil {
			log.Fatal().Err(err).Str("uri", *filePath).Msg("Failed to fetch object")
		}
	} else {
		data, err = os.ReadFile(*filePath)
		if err != nil {
			log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read file")
		}
	}

	llm, err := extract.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	ocr, err := extract.NewVisionOCR(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Vision OCR client")
	}

	pipeline := extract.NewExtractor(ocr, llm,
		extract.Limits{MinBytes: cfg.MinUploadBytes, MaxBytes: cfg.MaxUploadBytes},
		cfg.MinEmbeddedTextChars,
		log,
	)

	upload := extract.Upload{
		Filename: filepath.Base(*filePath),
		MIMEType: mime.TypeByExtension(filepath.Ext(*filePath)),
		Data:     data,
	}

	var result interface{}
	switch *mode {
	case "amount":
		result, err = pipeline.ExtractAmount(ctx, upload)
	case "transactions":
		result, err = pipeline.ExtractTransactions(ctx, upload)
	default:
		log.Fatal().Str("mode", *mode).Msg("Unknown mode; use amount or transactions")
	}
	if err != nil {
		log.Fatal().Err(err).Str("kind", string(extract.KindOf(err))).Msg("Extraction failed")
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}
	fmt.Println(string(out))
}
