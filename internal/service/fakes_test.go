package service

import (
	"VidVault/internal/media"
	"VidVault/internal/model"
	"VidVault/internal/repository"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// 内存中的媒体托管服务，可以按目录注入失败
type fakeHost struct {
	mu      sync.Mutex
	fail    map[string]error // folder -> error
	uploads []media.UploadRequest
	stored  map[string]string
	deleted []string
}

func newFakeHost() *fakeHost {
	return &fakeHost{fail: map[string]error{}, stored: map[string]string{}}
}

func (h *fakeHost) Upload(ctx context.Context, req media.UploadRequest, body io.Reader) (*media.Asset, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.uploads = append(h.uploads, req)
	if err := h.fail[req.Folder]; err != nil {
		return nil, err
	}
	id := req.Folder + "/" + uuid.NewString()
	h.stored[id] = string(data)
	return &media.Asset{ID: id, URL: "https://media.example.com/" + id}, nil
}

func (h *fakeHost) Delete(_ context.Context, id string, _ media.Kind) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.stored[id]; !ok {
		return media.ErrNotFound
	}
	delete(h.stored, id)
	h.deleted = append(h.deleted, id)
	return nil
}

func (h *fakeHost) uploadCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.uploads)
}

// 内存仓库
type fakeRepo struct {
	mu        sync.Mutex
	videos    map[string]model.Video
	createErr error
	findCalls int
	now       time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{videos: map[string]model.Video{}, now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *fakeRepo) Create(_ context.Context, v *model.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	r.now = r.now.Add(time.Second)
	v.CreatedAt = r.now
	v.UpdatedAt = r.now
	r.videos[v.ID] = *v
	return nil
}

func (r *fakeRepo) FindAll(_ context.Context) ([]model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Video, 0, len(r.videos))
	for _, v := range r.videos {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	v, ok := r.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

type fakeReporter struct {
	mu      sync.Mutex
	orphans []OrphanMedia
}

func (r *fakeReporter) Report(_ context.Context, orphans []OrphanMedia) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orphans = append(r.orphans, orphans...)
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	videos  map[string]model.Video
	getErr  error
	setHits int
}

func newFakeCache() *fakeCache {
	return &fakeCache{videos: map[string]model.Video{}}
}

func (c *fakeCache) GetVideoCache(_ context.Context, id string) (*model.Video, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	v, ok := c.videos[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (c *fakeCache) SetVideoCache(_ context.Context, v *model.Video) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setHits++
	c.videos[v.ID] = *v
	return nil
}

func payload(name, contentType, content string) FilePayload {
	return FilePayload{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func validInput(title string) UploadInput {
	return UploadInput{
		Title:       title,
		Description: fmt.Sprintf("description of %s", title),
		Files: Files{
			Video:     payload("clip.mp4", "video/mp4", "video-bytes"),
			Thumbnail: payload("cover.png", "image/png", "png-bytes"),
		},
	}
}
