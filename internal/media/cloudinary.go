package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryHost 把文件上传到Cloudinary
type CloudinaryHost struct {
	cld *cloudinary.Cloudinary
}

var _ Host = (*CloudinaryHost)(nil)

func NewCloudinaryHost(cloudName, apiKey, apiSecret string) (*CloudinaryHost, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryHost{cld: cld}, nil
}

// Upload 按目录和resource_type上传，返回secure_url和public_id
func (h *CloudinaryHost) Upload(ctx context.Context, req UploadRequest, body io.Reader) (*Asset, error) {
	res, err := h.cld.Upload.Upload(ctx, body, uploader.UploadParams{
		Folder:       req.Folder,
		ResourceType: string(req.Kind),
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	// Cloudinary的业务错误不走err，而是放在响应体的error字段里
	if res.Error.Message != "" {
		return nil, classifyCloudinary(res.Error.Message)
	}
	return &Asset{ID: res.PublicID, URL: res.SecureURL}, nil
}

func (h *CloudinaryHost) Delete(ctx context.Context, id string, kind Kind) error {
	res, err := h.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     id,
		ResourceType: string(kind),
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", res.Error.Message)
	}
	if res.Result == "not found" {
		return ErrNotFound
	}
	return nil
}

func classifyCloudinary(msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "too large"):
		return fmt.Errorf("%w: %s", ErrTooLarge, msg)
	case strings.Contains(lower, "invalid image file"),
		strings.Contains(lower, "invalid video file"),
		strings.Contains(lower, "unsupported"):
		return fmt.Errorf("%w: %s", ErrRejectedFormat, msg)
	default:
		return fmt.Errorf("cloudinary upload: %s", msg)
	}
}
