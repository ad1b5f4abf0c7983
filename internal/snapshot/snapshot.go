// Package snapshot exports the registry store to S3-compatible object
// storage as a single JSON document.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/edvin/equipreg/internal/kv"
	"github.com/edvin/equipreg/internal/platform"
)

// Snapshot is every entry of a store, read in one transaction.
type Snapshot struct {
	ID      string    `json:"id"`
	TakenAt time.Time `json:"taken_at"`
	Entries []Entry   `json:"entries"`
}

// Entry holds one key and its value. Values that are not JSON are kept in Raw.
type Entry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value,omitempty"`
	Raw   []byte          `json:"raw,omitempty"`
}

// Take reads all store entries in key order.
func Take(ctx context.Context, store kv.Store, now time.Time) (*Snapshot, error) {
	snap := &Snapshot{
		ID:      platform.NewID(),
		TakenAt: now.UTC(),
		Entries: []Entry{},
	}
	err := store.View(ctx, func(rd kv.Reader) error {
		return rd.Scan(ctx, "", func(key string, value []byte) error {
			entry := Entry{Key: key}
			if json.Valid(value) {
				entry.Value = append(json.RawMessage(nil), value...)
			} else {
				entry.Raw = append([]byte(nil), value...)
			}
			snap.Entries = append(snap.Entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("scan store: %w", err)
	}
	return snap, nil
}

// ObjectKey is where the snapshot is stored in the bucket.
func (s *Snapshot) ObjectKey() string {
	return fmt.Sprintf("snapshots/%s-%s.json", s.TakenAt.Format("20060102T150405Z"), s.ID)
}

// Uploader is the subset of the S3 client the exporter uses.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client returns an S3 client for an S3-compatible endpoint using
// path-style addressing.
func NewS3Client(endpoint, region, accessKey, secretKey string) *s3.Client {
	return s3.New(s3.Options{
		BaseEndpoint: aws.String(endpoint),
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})
}

type Exporter struct {
	uploader Uploader
	bucket   string
	logger   zerolog.Logger
	now      func() time.Time
}

func NewExporter(uploader Uploader, bucket string, logger zerolog.Logger) *Exporter {
	return &Exporter{
		uploader: uploader,
		bucket:   bucket,
		logger:   logger.With().Str("component", "snapshot").Logger(),
		now:      time.Now,
	}
}

// Export takes a snapshot of store and uploads it, returning the object key.
func (e *Exporter) Export(ctx context.Context, store kv.Store) (string, error) {
	snap, err := Take(ctx, store, e.now())
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := snap.ObjectKey()
	_, err = e.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot %s: %w", key, err)
	}

	e.logger.Info().
		Str("bucket", e.bucket).
		Str("key", key).
		Int("entries", len(snap.Entries)).
		Int("bytes", len(body)).
		Msg("snapshot uploaded")
	return key, nil
}
