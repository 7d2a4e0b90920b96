package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// S3API 是S3Host用到的客户端方法，测试里可以替换
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Host 把文件作为对象存进S3桶，对象key就是媒体ID
type S3Host struct {
	client  S3API
	bucket  string
	baseURL string
}

var _ Host = (*S3Host)(nil)

// NewS3Host 从环境加载AWS配置；publicBaseURL为空时使用桶的virtual-hosted地址
func NewS3Host(ctx context.Context, bucket, publicBaseURL string) (*S3Host, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}
	return NewS3HostWithClient(s3.NewFromConfig(cfg), bucket, publicBaseURL), nil
}

func NewS3HostWithClient(client S3API, bucket, publicBaseURL string) *S3Host {
	return &S3Host{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (h *S3Host) Upload(ctx context.Context, req UploadRequest, body io.Reader) (*Asset, error) {
	key := path.Join(req.Folder, uuid.NewString()+extension(req.Filename))

	input := &s3.PutObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if req.ContentType != "" {
		input.ContentType = aws.String(req.ContentType)
	}
	if req.Size > 0 {
		input.ContentLength = aws.Int64(req.Size)
	}

	if _, err := h.client.PutObject(ctx, input); err != nil {
		return nil, classifyS3(err)
	}
	return &Asset{ID: key, URL: h.baseURL + "/" + key}, nil
}

// Delete S3删除不存在的key通常也返回成功；个别兼容实现返回NoSuchKey，按ErrNotFound处理
func (h *S3Host) Delete(ctx context.Context, id string, _ Kind) error {
	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func classifyS3(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "EntityTooLarge":
			return fmt.Errorf("%w: %v", ErrTooLarge, err)
		case "InvalidArgument":
			return fmt.Errorf("%w: %v", ErrRejectedFormat, err)
		}
	}
	return fmt.Errorf("failed to upload to S3: %w", err)
}
