package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"swappy/backend/internal/config"
)

// ErrObjectNotFound is returned by Download for a missing key.
var ErrObjectNotFound = errors.New("object not found")

// ObjectAPI is the subset of *s3.Client used here.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// IS3Storage defines the interface for S3 operations.
type IS3Storage interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, string, error)
	Download(ctx context.Context, key string) ([]byte, string, error)
	Overwrite(ctx context.Context, key, contentType string, data []byte) error
	PublicURL(key string) string
}

// s3Storage implements IS3Storage.
type s3Storage struct {
	cfg    *config.Config
	client ObjectAPI
	now    func() time.Time
}

// NewS3Storage creates a new S3 storage service from static credentials.
func NewS3Storage(cfg *config.Config) (IS3Storage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3StorageWithClient(cfg, s3.NewFromConfig(awsCfg)), nil
}

// NewS3StorageWithClient wraps an existing client.
func NewS3StorageWithClient(cfg *config.Config, client ObjectAPI) IS3Storage {
	return &s3Storage{cfg: cfg, client: client, now: time.Now}
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename keeps the base name of filename and replaces every run of
// characters outside [A-Za-z0-9._-] with a single underscore.
func SanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = unsafeKeyChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "file"
	}
	return base
}

// ObjectKey builds "uploads/<unixMillis>_<uuid>_<sanitised filename>".
func ObjectKey(at time.Time, filename string) string {
	return fmt.Sprintf("uploads/%d_%s_%s", at.UnixMilli(), uuid.NewString(), SanitizeFilename(filename))
}

func (s *s3Storage) PublicURL(key string) string {
	return strings.TrimRight(s.cfg.ImageBaseS3URL, "/") + "/" + key
}

// Upload stores body under a fresh key and returns its public URL and key.
func (s *s3Storage) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, string, error) {
	key := ObjectKey(s.now(), filename)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.AwsS3Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	fmt.Printf("Uploaded object: %s\n", key)
	return s.PublicURL(key), key, nil
}

// Download returns the object bytes and content type. A missing key yields
// ErrObjectNotFound.
func (s *s3Storage) Download(ctx context.Context, key string) ([]byte, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.AwsS3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, "", fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, "", fmt.Errorf("failed to download object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, aws.ToString(out.ContentType), nil
}

func (s *s3Storage) Overwrite(ctx context.Context, key, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to overwrite object %s: %w", key, err)
	}
	return nil
}
