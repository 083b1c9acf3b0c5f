package upload

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3 error codes surfaced at completion time.
const (
	s3ErrNoSuchUpload     = "NoSuchUpload"
	s3ErrInvalidPart      = "InvalidPart"
	s3ErrInvalidPartOrder = "InvalidPartOrder"
	s3ErrEntityTooSmall   = "EntityTooSmall"
)

type S3Backend struct {
	s3Client    *s3.Client
	s3Presigner *s3.PresignClient
	config      *S3Config
}

func NewS3Backend(s3Client *s3.Client, config *S3Config) *S3Backend {
	return &S3Backend{
		s3Client:    s3Client,
		s3Presigner: s3.NewPresignClient(s3Client),
		config:      config,
	}
}

func NewS3BackendWithConfig(cfg *S3Config) (*S3Backend, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          200,
			MaxIdleConnsPerHost:   100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ForceAttemptHTTP2:     true,
		},
		Timeout: 30 * time.Second,
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, err
	}

	awsClient := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.UseAccelerate {
			o.UseAccelerate = true
		}
	})

	return NewS3Backend(awsClient, cfg), nil
}

// ===================================================================================================

func (s *S3Backend) CreateMultipart(ctx context.Context, key, contentType string) (string, error) {
	result, err := s.s3Client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      &s.config.BucketName,
		Key:         &key,
		ContentType: &contentType,
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(result.UploadId), nil
}

func (s *S3Backend) PresignUploadPart(ctx context.Context, params *PresignPartParams) (string, error) {
	expiry := params.Expiry
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	url, err := s.s3Presigner.PresignUploadPart(ctx, &s3.UploadPartInput{
		Bucket:     &s.config.BucketName,
		Key:        &params.Key,
		UploadId:   &params.UploadID,
		PartNumber: aws.Int32(params.PartNumber),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", err
	}
	return url.URL, nil
}

func (s *S3Backend) UploadPart(ctx context.Context, params *UploadPartParams) (*Part, error) {
	resp, err := s.s3Client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:        &s.config.BucketName,
		Key:           &params.Key,
		UploadId:      &params.UploadID,
		PartNumber:    aws.Int32(params.PartNumber),
		Body:          params.Body,
		ContentLength: aws.Int64(params.Size),
	})
	if err != nil {
		return nil, err
	}
	return &Part{
		PartNumber: params.PartNumber,
		ETag:       trimETag(aws.ToString(resp.ETag)),
		Size:       params.Size,
	}, nil
}

// ===================================================================================================

func (s *S3Backend) ListParts(ctx context.Context, key, uploadID string) ([]*Part, error) {
	var parts []*Part

	paginator := s3.NewListPartsPaginator(s.s3Client, &s3.ListPartsInput{
		Bucket:   &s.config.BucketName,
		Key:      &key,
		UploadId: &uploadID,
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, part := range page.Parts {
			parts = append(parts, &Part{
				PartNumber: aws.ToInt32(part.PartNumber),
				ETag:       trimETag(aws.ToString(part.ETag)),
				Size:       aws.ToInt64(part.Size),
			})
		}
	}

	return parts, nil
}

func (s *S3Backend) CompleteMultipart(ctx context.Context, key, uploadID string, parts []*Part) (*ObjectInfo, error) {
	completedParts := make([]types.CompletedPart, len(parts))
	for i, part := range parts {
		completedParts[i] = types.CompletedPart{
			ETag:       aws.String(part.ETag),
			PartNumber: aws.Int32(part.PartNumber),
		}
	}

	res, err := s.s3Client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   &s.config.BucketName,
		Key:      &key,
		UploadId: &uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completedParts,
		},
	})
	if err != nil {
		return nil, err
	}

	return &ObjectInfo{
		Key:          key,
		ETag:         trimETag(aws.ToString(res.ETag)),
		Version:      aws.ToString(res.VersionId),
		Location:     aws.ToString(res.Location),
		LastModified: time.Now().UTC(),
	}, nil
}

func (s *S3Backend) AbortMultipart(ctx context.Context, key, uploadID string) error {
	_, err := s.s3Client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   &s.config.BucketName,
		Key:      &key,
		UploadId: &uploadID,
	})
	return err
}

func (s *S3Backend) ListPendingUploads(ctx context.Context) ([]*PendingUpload, error) {
	var uploads []*PendingUpload

	input := &s3.ListMultipartUploadsInput{
		Bucket: &s.config.BucketName,
	}
	for {
		page, err := s.s3Client.ListMultipartUploads(ctx, input)
		if err != nil {
			return nil, err
		}
		for _, u := range page.Uploads {
			uploads = append(uploads, &PendingUpload{
				Key:       aws.ToString(u.Key),
				UploadID:  aws.ToString(u.UploadId),
				Initiated: aws.ToTime(u.Initiated),
			})
		}
		if !aws.ToBool(page.IsTruncated) {
			break
		}
		input.KeyMarker = page.NextKeyMarker
		input.UploadIdMarker = page.NextUploadIdMarker
	}

	return uploads, nil
}

// ===================================================================================================

func (s *S3Backend) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	url, err := s.s3Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.config.BucketName,
		Key:    &key,
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", err
	}
	return url.URL, nil
}

func (s *S3Backend) DeleteObject(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.config.BucketName,
		Key:    &key,
	})
	return err
}

// ===================================================================================================

func trimETag(etag string) string {
	return strings.ReplaceAll(etag, "\"", "")
}

// s3ErrorCode extracts the S3 API error code, or "" for transport-level failures.
func s3ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

var _ Backend = (*S3Backend)(nil)
