package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/volunteerhub/portal-backend/config"
	"github.com/volunteerhub/portal-backend/pkg/logger"
)

var (
	ErrUnsupportedKind = errors.New("unsupported upload kind")
	ErrContentType     = errors.New("content type is not allowed")
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
)

const presignExpiry = 15 * time.Minute

// UploadKind selects the folder and the accepted files of an upload.
type UploadKind string

const (
	KindCoverImage UploadKind = "cover"
	KindDocument   UploadKind = "document"
	KindLogo       UploadKind = "logo"
)

type uploadRule struct {
	folder       string
	contentTypes []string
	maxSize      int64
}

var uploadRules = map[UploadKind]uploadRule{
	KindCoverImage: {folder: "articles/covers", contentTypes: []string{"image/jpeg", "image/png", "image/webp"}, maxSize: 5 << 20},
	KindDocument:   {folder: "articles/documents", contentTypes: []string{"application/pdf"}, maxSize: 20 << 20},
	KindLogo:       {folder: "ngos/logos", contentTypes: []string{"image/jpeg", "image/png", "image/webp", "image/svg+xml"}, maxSize: 2 << 20},
}

type PresignedURLResponse struct {
	UploadURL string    `json:"upload_url"`
	FileURL   string    `json:"file_url"`
	Key       string    `json:"key"`
	Size      int64     `json:"size"` // the PUT must carry exactly this Content-Length
	ExpiresAt time.Time `json:"expires_at"`
}

// Presigner hands out direct-to-bucket upload URLs.
type Presigner interface {
	PresignUpload(ctx context.Context, kind UploadKind, filename, contentType string, size int64) (*PresignedURLResponse, error)
}

type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	region  string
	baseURL string
}

func NewS3Storage(ctx context.Context, cfg config.S3Config) (*S3Storage, error) {
	var awsCfg aws.Config

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		// environment, shared config or instance role
		var err error
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// ValidateUpload checks contentType and size against the rules of kind.
func ValidateUpload(kind UploadKind, contentType string, size int64) error {
	rule, ok := uploadRules[kind]
	if !ok {
		return ErrUnsupportedKind
	}
	if size > rule.maxSize {
		return fmt.Errorf("%w: %d bytes allowed", ErrFileTooLarge, rule.maxSize)
	}
	for _, allowed := range rule.contentTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrContentType, contentType)
}

func (s *S3Storage) PresignUpload(ctx context.Context, kind UploadKind, filename, contentType string, size int64) (*PresignedURLResponse, error) {
	if err := ValidateUpload(kind, contentType, size); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", uploadRules[kind].folder, uuid.New().String(), strings.ToLower(filepath.Ext(filename)))

	// content length is part of the signature so the bucket rejects a body of any other size
	presignedReq, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		logger.Error("Failed to presign upload", err, map[string]interface{}{
			"key": key,
		})
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedURLResponse{
		UploadURL: presignedReq.URL,
		FileURL:   s.fileURL(key),
		Key:       key,
		Size:      size,
		ExpiresAt: time.Now().Add(presignExpiry),
	}, nil
}

func (s *S3Storage) fileURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
