package client

import (
	"VidVault/internal/handler"
	"VidVault/internal/media"
	"VidVault/internal/model"
	"VidVault/internal/policy"
	"VidVault/internal/repository"
	"VidVault/internal/router"
	"VidVault/internal/service"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// 启动一个完整的服务端：内存SQLite + 本地媒体目录
func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(&model.Video{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	host, err := media.NewFSHost(t.TempDir(), "http://localhost/media")
	if err != nil {
		t.Fatalf("NewFSHost: %v", err)
	}
	repo := repository.NewVideoRepository(db)
	h := handler.NewVideoHandler(
		service.NewUploadService(host, repo, nil, policy.DefaultLimits),
		service.NewVideoService(repo, nil),
	)
	r := router.SetupRouter(h, router.Options{MaxBodyBytes: policy.DefaultLimits.MaxRequestBytes()})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func memFile(name, contentType string, content []byte) *File {
	return &File{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

func validForm() Form {
	return Form{
		Title:       "Harbour at dusk",
		Description: "Boats coming in",
		Video:       memFile("clip.mp4", "video/mp4", bytes.Repeat([]byte("v"), 256<<10)),
		Thumbnail:   memFile("cover.png", "image/png", pngHeader),
	}
}

func TestUpload_ThenListAndGet(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL)

	// 进度回调在传输层的goroutine里执行
	var mu sync.Mutex
	var reported []int
	video, err := c.Upload(context.Background(), validForm(), func(p int) {
		mu.Lock()
		reported = append(reported, p)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	mu.Lock()
	progress := append([]int(nil), reported...)
	mu.Unlock()
	if video.ID == "" || video.Title != "Harbour at dusk" || video.Description != "Boats coming in" {
		t.Fatalf("unexpected video %+v", video)
	}

	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Fatalf("progress must end at 100, got %v", progress)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] <= progress[i-1] {
			t.Fatalf("progress must increase, got %v", progress)
		}
	}

	list, err := c.List(context.Background())
	if err != nil || len(list) != 1 || list[0].ID != video.ID {
		t.Fatalf("List = %+v, %v", list, err)
	}
	got, err := c.Get(context.Background(), video.ID)
	if err != nil || got.VideoURL != video.VideoURL {
		t.Fatalf("Get = %+v, %v", got, err)
	}
}

func TestGet_NotFound(t *testing.T) {
	c := New(newServer(t).URL)
	_, err := c.Get(context.Background(), "missing")
	var e *Error
	if !errors.As(err, &e) || e.Status != http.StatusNotFound || e.Message != "Video not found" {
		t.Fatalf("expected 404 Error, got %v", err)
	}
}

func TestUpload_InvalidFormSendsNothing(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	form := validForm()
	form.Title = strings.Repeat("a", 51)
	form.Thumbnail = nil

	_, err := New(srv.URL).Upload(context.Background(), form, nil)
	var verr *policy.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !verr.Has("title", policy.RuleMax) || !verr.Has("thumbnail", policy.RuleRequired) {
		t.Fatalf("unexpected violations %+v", verr.Violations)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatal("no request may be sent for an invalid form")
	}
}

func TestUpload_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"Error uploading files","details":{"asset":"video","reason":"unavailable"}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Upload(context.Background(), validForm(), nil)
	var e *Error
	if !errors.As(err, &e) || e.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 Error, got %v", err)
	}
	if got := HumanMessage(err); got != "Error uploading video. Error uploading files" {
		t.Fatalf("HumanMessage = %q", got)
	}
}

func TestUpload_TooLargeUsesClientLimit(t *testing.T) {
	// 代理层直接返回413，没有JSON正文
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	limits := policy.DefaultLimits
	limits.VideoBytes = 50 << 20
	_, err := New(srv.URL, WithLimits(limits)).Upload(context.Background(), validForm(), nil)
	var e *Error
	if !errors.As(err, &e) || e.Status != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 Error, got %v", err)
	}
	if got := HumanMessage(err); got != "Error uploading video. File size too large. Maximum size is 50MB." {
		t.Fatalf("HumanMessage = %q", got)
	}
}

func TestHumanMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &Error{Status: 400, Message: "Validation failed"}, "Error uploading video. Validation failed"},
		{"network", &Error{Err: errors.New("dial tcp: connection refused")}, "Error uploading video. Network error. Please check your connection."},
		{"too large", &Error{Status: 413}, "Error uploading video. File size too large. Maximum size is 100MB."},
		{"too large with custom limit", &Error{Status: 413, MaxVideoBytes: 50 << 20}, "Error uploading video. File size too large. Maximum size is 50MB."},
		{"other status", &Error{Status: 502}, "Error uploading video. Please try again."},
		{"unknown", errors.New("boom"), "Error uploading video. Please try again."},
		{"local validation", &policy.ValidationError{Violations: []policy.Violation{{Field: "title", Rule: "max", Message: "title must be at most 50 characters"}}},
			"Error uploading video. title must be at most 50 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HumanMessage(tc.err); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFileFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.png")
	if err := os.WriteFile(path, pngHeader, 0644); err != nil {
		t.Fatal(err)
	}
	f, err := FileFromPath(path)
	if err != nil {
		t.Fatalf("FileFromPath: %v", err)
	}
	if f.Filename != "cover.png" || f.ContentType != "image/png" || f.Size != int64(len(pngHeader)) {
		t.Fatalf("unexpected file %+v", f)
	}
}

func TestProgressReader_Monotonic(t *testing.T) {
	var got []int
	r := &progressReader{r: strings.NewReader(strings.Repeat("x", 1000)), total: 1000, fn: func(p int) { got = append(got, p) }}
	buf := make([]byte, 7)
	for {
		if _, err := r.Read(buf); err == io.EOF {
			break
		}
	}
	if len(got) == 0 || got[len(got)-1] != 100 {
		t.Fatalf("expected to end at 100, got %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("not monotonic: %v", got)
		}
	}
}
