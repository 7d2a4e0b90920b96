package client

import (
	"VidVault/internal/policy"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Video 是服务端返回的视频记录
type Video struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	ThumbnailURL     string    `json:"thumbnailUrl"`
	VideoURL         string    `json:"videoUrl"`
	ThumbnailMediaID string    `json:"thumbnailMediaId"`
	VideoMediaID     string    `json:"videoMediaId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// File 一个待上传的文件，Open每次返回一个新的读取器
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FileFromPath 从本地路径构建File，内容类型根据文件头判断
func FileFromPath(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect content type of %s: %w", path, err)
	}
	return &File{
		Filename:    filepath.Base(path),
		ContentType: policy.NormalizeContentType(mtype.String()),
		Size:        info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Form 对应上传表单的四个字段
type Form struct {
	Title       string
	Description string
	Video       *File
	Thumbnail   *File
}

func (f Form) submission() policy.Submission {
	s := policy.Submission{Title: f.Title, Description: f.Description}
	if f.Video != nil {
		s.Video = &policy.File{Filename: f.Video.Filename, ContentType: f.Video.ContentType, Size: f.Video.Size}
	}
	if f.Thumbnail != nil {
		s.Thumbnail = &policy.File{Filename: f.Thumbnail.Filename, ContentType: f.Thumbnail.ContentType, Size: f.Thumbnail.Size}
	}
	return s
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limits     policy.Limits
}

type Option func(*Client)

// WithHTTPClient 替换默认的http.Client（例如设置超时）
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLimits 服务端改了大小上限时，客户端也要同步
func WithLimits(l policy.Limits) Option {
	return func(c *Client) { c.limits = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		limits:     policy.DefaultLimits,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List 获取全部视频，最新的在前
func (c *Client) List(ctx context.Context) ([]Video, error) {
	var videos []Video
	if err := c.getJSON(ctx, "/api/videos", &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// Get 获取单个视频；不存在时返回Status为404的*Error
func (c *Client) Get(ctx context.Context, id string) (*Video, error) {
	var video Video
	if err := c.getJSON(ctx, "/api/videos/"+url.PathEscape(id), &video); err != nil {
		return nil, err
	}
	return &video, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
