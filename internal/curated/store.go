package curated

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/tyler180/punt-outcomes/internal/logging"
	"github.com/tyler180/punt-outcomes/internal/punt"
)

// S3API is the subset of *s3.Client used here.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store reads s3:// URIs through S3 and anything else from disk. Published
// parquet goes to Bucket under Prefix.
type Store struct {
	S3     S3API
	Bucket string
	Prefix string
	Log    *zap.Logger

	now func() time.Time
}

func nowStamp(t time.Time) string { return t.UTC().Format("20060102T150405Z") }

// SplitURI splits "s3://bucket/some/key" into bucket and key.
func SplitURI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, key, true
}

// Open returns the object at uri. Missing objects match fs.ErrNotExist.
func (s *Store) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, ok := SplitURI(uri)
	if !ok {
		return os.Open(uri)
	}
	if s.S3 == nil {
		return nil, fmt.Errorf("open %s: no s3 client", uri)
	}
	out, err := s.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("get %s: %w", uri, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("get %s: %w", uri, err)
	}
	return out.Body, nil
}

// ReadAll opens uri and reads it fully.
func (s *Store) ReadAll(ctx context.Context, uri string) ([]byte, error) {
	rc, err := s.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Put writes body to key in the store's bucket, or below Prefix on disk
// when no bucket is configured.
func (s *Store) Put(ctx context.Context, key string, body []byte) (string, error) {
	if s.Bucket == "" {
		p := filepath.FromSlash(key)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return "", fmt.Errorf("put %s: %w", p, err)
		}
		if err := os.WriteFile(p, body, 0o644); err != nil {
			return "", fmt.Errorf("put %s: %w", p, err)
		}
		return p, nil
	}
	_, err := s.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.Bucket, key, err)
	}
	return "s3://" + s.Bucket + "/" + key, nil
}

// PublishPlays writes one parquet part per season and returns the
// locations written.
func (s *Store) PublishPlays(ctx context.Context, plays []punt.Play) ([]string, error) {
	log := logging.OrNop(s.Log)
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	stamp := nowStamp(now())

	seasons, parts := Partition(plays)
	locs := make([]string, 0, len(seasons))
	for _, season := range seasons {
		b, err := EncodePlays(parts[season])
		if err != nil {
			return locs, fmt.Errorf("season %d: %w", season, err)
		}
		key := path.Join(s.Prefix, "punt_outcomes", fmt.Sprintf("season=%d", season), "part-"+stamp+".parquet")
		if s.Bucket != "" {
			key = strings.TrimPrefix(key, "/")
		}
		loc, err := s.Put(ctx, key, b)
		if err != nil {
			return locs, err
		}
		log.Info("published partition", zap.Int("season", season), zap.Int("plays", len(parts[season])), zap.String("location", loc))
		locs = append(locs, loc)
	}
	return locs, nil
}

// LoadPlays reads a parquet play table from disk or S3.
func (s *Store) LoadPlays(ctx context.Context, uri string) ([]punt.Play, error) {
	b, err := s.ReadAll(ctx, uri)
	if err != nil {
		return nil, err
	}
	plays, err := DecodePlays(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	return plays, nil
}
