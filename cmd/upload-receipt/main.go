// Command upload-receipt archives a local file to the receipt bucket.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adityarathi/finsight/internal/gcsarchive"
	"github.com/adityarathi/finsight/internal/logger"
)

func main() {
	log := logger.New()

	var (
		bucketName string
		filePath   string
	)

	flag.StringVar(&bucketName, "bucket", os.Getenv("RECEIPT_BUCKET"), "GCS bucket name (or set RECEIPT_BUCKET env)")
	flag.StringVar(&filePath, "file", "", "Path to local file (required)")
	flag.Parse()

	if bucketName == "" || filePath == "" {
		log.Fatal().Msg("Usage: upload-receipt -bucket BUCKET_NAME -file /path/to/receipt.pdf")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", filePath).Msg("Failed to read file")
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	archive, err := gcsarchive.New(ctx, bucketName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS archive")
	}
	defer archive.Close()

	log.Info().
		Str("bucket", bucketName).
		Str("file", filePath).
		Msg("Archiving file")

	objectName, err := archive.Store(ctx, filepath.Base(filePath), data)
	if err != nil {
		log.Fatal().Err(err).Msg("Archive failed")
	}

	fmt.Printf("Archived %s to %s\n", filePath, archive.URI(objectName))
}
