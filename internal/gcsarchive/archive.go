// Package gcsarchive keeps a copy of every processed upload in Google Cloud
// Storage so extractions can be audited and replayed.
package gcsarchive

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Archive stores and retrieves raw upload bytes in a single bucket.
// It assumes Application Default Credentials are configured.
type Archive struct {
	client *storage.Client
	bucket string
}

// New creates the archive over the given bucket.
func New(ctx context.Context, bucket string) (*Archive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcsarchive: create storage client: %w", err)
	}
	return &Archive{client: client, bucket: bucket}, nil
}

// Close releases the underlying client.
func (a *Archive) Close() error {
	return a.client.Close()
}

// Store writes the bytes under a date-prefixed, collision-free object name
// and returns that name.
func (a *Archive) Store(ctx context.Context, filename string, data []byte) (string, error) {
	objectName := fmt.Sprintf("%s/%s-%s",
		time.Now().UTC().Format("2006/01/02"),
		uuid.NewString(),
		path.Base(filename),
	)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcsarchive: write object %q: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcsarchive: finalize object %q: %w", objectName, err)
	}

	return objectName, nil
}

// Fetch reads an archived object back by name.
func (a *Archive) Fetch(ctx context.Context, objectName string) ([]byte, error) {
	r, err := a.client.Bucket(a.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcsarchive: open object %q: %w", objectName, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcsarchive: read object %q: %w", objectName, err)
	}
	return data, nil
}

// FetchURI reads the object named by a gs:// URI, which may point at any
// bucket.
func (a *Archive) FetchURI(ctx context.Context, gcsURI string) ([]byte, error) {
	bucket, object, err := parseGCSURI(gcsURI)
	if err != nil {
		return nil, err
	}

	r, err := a.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcsarchive: open %s: %w", gcsURI, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcsarchive: read %s: %w", gcsURI, err)
	}
	return data, nil
}

// URI returns the gs:// URI for an object in the archive bucket.
func (a *Archive) URI(objectName string) string {
	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName)
}

func parseGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("gcsarchive: invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("gcsarchive: invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}
