package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FSHost 把媒体存放在本地目录，由HTTP服务在/media/下提供访问，用于本地开发
type FSHost struct {
	baseDir string
	baseURL string
}

var _ Host = (*FSHost)(nil)

func NewFSHost(baseDir, baseURL string) (*FSHost, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &FSHost{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir 返回本地媒体目录，路由需要用它挂静态文件
func (h *FSHost) Dir() string {
	return h.baseDir
}

func (h *FSHost) Upload(ctx context.Context, req UploadRequest, body io.Reader) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := path.Join(req.Folder, uuid.NewString()+extension(req.Filename))
	fullPath := filepath.Join(h.baseDir, filepath.FromSlash(id))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	out, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create media file: %w", err)
	}
	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write media file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write media file: %w", err)
	}
	return &Asset{ID: id, URL: h.baseURL + "/" + id}, nil
}

func (h *FSHost) Delete(_ context.Context, id string, _ Kind) error {
	clean := path.Clean("/" + id)
	if clean == "/" || strings.Contains(id, "..") {
		return fmt.Errorf("invalid media id %q", id)
	}
	err := os.Remove(filepath.Join(h.baseDir, filepath.FromSlash(clean)))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete media file: %w", err)
	}
	return nil
}
