package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"VidVault/internal/config"
)

// Kind 告诉媒体托管服务该如何处理资源（Cloudinary的resource_type）
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var (
	// ErrRejectedFormat 托管服务拒绝了文件格式
	ErrRejectedFormat = errors.New("media host rejected the file format")
	// ErrTooLarge 托管服务拒绝了文件大小
	ErrTooLarge = errors.New("media host rejected the file size")
	// ErrNotFound 资源不存在（删除时视为已删除）
	ErrNotFound = errors.New("media not found")
)

// UploadRequest 描述一次上传：目标目录（videos/thumbnails）+ 资源类型 + 声明的内容类型
type UploadRequest struct {
	Folder      string
	Filename    string
	ContentType string
	Size        int64
	Kind        Kind
}

// Asset 是上传成功后托管服务返回的持久URL和ID
type Asset struct {
	ID  string
	URL string
}

// Host 是外部媒体托管服务的客户端
type Host interface {
	Upload(ctx context.Context, req UploadRequest, body io.Reader) (*Asset, error)
	Delete(ctx context.Context, id string, kind Kind) error
}

// NewHost 根据配置创建对应的媒体托管客户端
func NewHost(ctx context.Context, cfg config.MediaConfig) (Host, error) {
	switch cfg.Host {
	case config.MediaCloudinary:
		return NewCloudinaryHost(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	case config.MediaS3:
		return NewS3Host(ctx, cfg.S3Bucket, cfg.S3PublicBaseURL)
	case config.MediaLocal:
		return NewFSHost(cfg.LocalDir, cfg.LocalBaseURL)
	default:
		return nil, fmt.Errorf("unsupported media host %q", cfg.Host)
	}
}

// 保留原始扩展名，方便托管服务和浏览器识别
func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
