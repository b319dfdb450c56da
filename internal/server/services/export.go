package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/clientbook/internal/common"
	sc "github.com/dmitrijs2005/clientbook/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ExportUpload describes where a client may upload an export file and
// where it can be downloaded afterwards.
type ExportUpload struct {
	Key         string
	UploadURL   string
	DownloadURL string
	ExpiresAt   time.Time
}

// ExportService hands out presigned object storage URLs for sharing
// spreadsheet exports.
type ExportService struct {
	config *sc.Config
	now    func() time.Time
}

func NewExportService(config *sc.Config) *ExportService {
	return &ExportService{config: config, now: time.Now}
}

func (s *ExportService) storageKey(ownerID, filename string) string {
	d := s.now().UTC()
	return fmt.Sprintf("exports/%s/%d/%02d/%02d/%s/%s", ownerID, d.Year(), d.Month(), d.Day(), uuid.New(), path.Base(filename))
}

func (s *ExportService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// CreateUpload presigns a PUT and a GET for a fresh key under the owner's
// prefix. Both URLs expire after the configured TTL.
func (s *ExportService) CreateUpload(ctx context.Context, ownerID, filename, contentType string) (*ExportUpload, error) {
	if filename == "" || filename == "." || filename == "/" {
		return nil, fmt.Errorf("%w: filename is required", common.ErrValidation)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := s.storageKey(ownerID, filename)
	ttl := s.config.ExportURLTTL
	expires := s.now().Add(ttl)

	put := &s3.PutObjectInput{Bucket: &bucket, Key: &key}
	if contentType != "" {
		put.ContentType = &contentType
	}
	putReq, err := presignPutObject(presignClient, ctx, put, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, err
	}

	getReq, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, err
	}

	return &ExportUpload{
		Key:         key,
		UploadURL:   putReq.URL,
		DownloadURL: getReq.URL,
		ExpiresAt:   expires,
	}, nil
}
