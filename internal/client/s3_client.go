package client

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	appConfig "campus-events-api/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

const presignExpiry = 5 * time.Minute

// S3ClientInterface defines the object store operations used for event images
type S3ClientInterface interface {
	GenerateFileKey(eventID uuid.UUID, fileExt string) string
	GeneratePresignedURL(ctx context.Context, eventID uuid.UUID, fileName, contentType string, fileSize int64) (uploadURL string, fileKey string, err error)
	FileExists(ctx context.Context, key string) (bool, error)
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(key string) string
	KeyFromURL(fileURL string) string
}

// S3Client wraps AWS S3 client and implements S3ClientInterface
type S3Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	region        string
	endpoint      string // set for MinIO and other S3-compatible stores
}

// NewS3Client creates a new S3 client
func NewS3Client(ctx context.Context, cfg *appConfig.S3Config) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("access key and secret key are required for a custom S3 endpoint")
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	// without a custom endpoint the default credential chain applies (IAM role, ~/.aws)
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Client{
		client:        s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      endpoint,
	}, nil
}

// GenerateFileKey generates a unique S3 file key
// Format: events/{eventId}/{year}/{month}/{uuid}_{timestamp}.ext
func (c *S3Client) GenerateFileKey(eventID uuid.UUID, fileExt string) string {
	return generateEventImageKey(eventID, fileExt, time.Now())
}

func generateEventImageKey(eventID uuid.UUID, fileExt string, now time.Time) string {
	return fmt.Sprintf("events/%s/%s/%s/%s_%d%s",
		eventID, now.Format("2006"), now.Format("01"), uuid.New(), now.Unix(), strings.ToLower(fileExt))
}

// GeneratePresignedURL generates a presigned PUT URL valid for five minutes.
// A positive fileSize is signed as the Content-Length the upload must carry.
func (c *S3Client) GeneratePresignedURL(ctx context.Context, eventID uuid.UUID, fileName, contentType string, fileSize int64) (string, string, error) {
	fileKey := c.GenerateFileKey(eventID, filepath.Ext(fileName))

	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(fileKey),
		ContentType: aws.String(contentType),
	}
	if fileSize > 0 {
		input.ContentLength = aws.Int64(fileSize)
	}

	presignedReq, err := c.presignClient.PresignPutObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = presignExpiry
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return presignedReq.URL, fileKey, nil
}

// FileExists reports whether an object has been uploaded under key
func (c *S3Client) FileExists(ctx context.Context, key string) (bool, error) {
	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check file in S3: %w", err)
}

// DeleteFile deletes a file from S3
func (c *S3Client) DeleteFile(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// GetFileURL returns the public URL for a file
func (c *S3Client) GetFileURL(key string) string {
	if c.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}

// KeyFromURL reverses GetFileURL; it returns "" for URLs this store did not issue
func (c *S3Client) KeyFromURL(fileURL string) string {
	return keyFromURL(fileURL, c.GetFileURL(""))
}

func keyFromURL(fileURL, prefix string) string {
	if fileURL == "" || !strings.HasPrefix(fileURL, prefix) {
		return ""
	}
	return strings.TrimPrefix(fileURL, prefix)
}
