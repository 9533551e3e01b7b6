package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mreyes-dev/portfolio-site-backend/config"
)

// FileUpload is a fully buffered upload taken off a multipart form.
type FileUpload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ObjectStorage uploads and deletes binary assets against an external
// object store. Upload returns the object's public URL, or "" when the
// upload failed; callers treat "" as "no file attached". Delete reports
// success as a bool and never panics past this boundary.
type ObjectStorage interface {
	Upload(ctx context.Context, file FileUpload, folder string) string
	Delete(ctx context.Context, publicURL string) bool
}

// S3Storage implements ObjectStorage against an S3 bucket fronted by a
// public base URL (the bucket website endpoint or a CDN).
type S3Storage struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	logger        zerolog.Logger
}

func NewS3Storage(ctx context.Context, cfg map[string]string) (*S3Storage, error) {
	bucket := config.GetString(cfg, "S3_BUCKET", "")
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET environment variable is required")
	}

	region := config.GetString(cfg, "S3_REGION", "us-east-1")
	baseURL := config.GetString(cfg, "S3_PUBLIC_BASE_URL", "")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Storage{
		client:        s3.NewFromConfig(awsCfg),
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(baseURL, "/"),
		logger:        log.With().Str("serviceName", "s3Storage").Logger(),
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, file FileUpload, folder string) string {
	key := generateObjectKey(folder, file.Filename)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(file.Data),
	}
	if file.ContentType != "" {
		input.ContentType = aws.String(file.ContentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to upload object")
		return ""
	}

	return s.publicBaseURL + "/" + key
}

func (s *S3Storage) Delete(ctx context.Context, publicURL string) bool {
	key, ok := s.keyFromURL(publicURL)
	if !ok {
		s.logger.Warn().Str("url", publicURL).Msg("url does not map to this bucket, skipping delete")
		return false
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to delete object")
		return false
	}
	return true
}

// keyFromURL resolves a public URL back to the storage key it was uploaded
// under.
func (s *S3Storage) keyFromURL(publicURL string) (string, bool) {
	prefix := s.publicBaseURL + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(publicURL, prefix)
	return key, key != ""
}

// generateObjectKey builds a collision-resistant key: timestamp plus a
// random suffix, keeping the original extension.
func generateObjectKey(folder, filename string) string {
	suffix := make([]byte, 4)
	rand.Read(suffix)
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%d-%s%s", strings.Trim(folder, "/"), time.Now().UnixNano(), hex.EncodeToString(suffix), ext)
}

// UploadAll fans the files out concurrently and joins on completion. A
// failed upload yields "" for its slot; the returned slice keeps only the
// successful URLs in submission order, so a "success" may carry fewer
// images than were submitted.
func UploadAll(ctx context.Context, store ObjectStorage, files []FileUpload, folder string) []string {
	if len(files) == 0 {
		return nil
	}

	results := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i] = store.Upload(gctx, file, folder)
			return nil
		})
	}
	g.Wait()

	urls := make([]string, 0, len(results))
	for _, url := range results {
		if url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}
