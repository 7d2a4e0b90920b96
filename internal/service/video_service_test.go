package service

import (
	"VidVault/internal/model"
	"context"
	"errors"
	"sync"
	"testing"
)

func seedRepo(t *testing.T, repo *fakeRepo, titles ...string) []model.Video {
	t.Helper()
	var out []model.Video
	for _, title := range titles {
		v := &model.Video{Title: title, Description: "d", VideoURL: "v", ThumbnailURL: "t"}
		if err := repo.Create(context.Background(), v); err != nil {
			t.Fatalf("seed %s: %v", title, err)
		}
		out = append(out, *v)
	}
	return out
}

func TestListVideos_NewestFirst(t *testing.T) {
	repo := newFakeRepo()
	svc := NewVideoService(repo, nil)

	empty, err := svc.ListVideos(context.Background())
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v, %v", empty, err)
	}

	seedRepo(t, repo, "t1", "t2", "t3")
	videos, err := svc.ListVideos(context.Background())
	if err != nil {
		t.Fatalf("ListVideos: %v", err)
	}
	if len(videos) != 3 || videos[0].Title != "t3" || videos[2].Title != "t1" {
		t.Fatalf("unexpected order %+v", videos)
	}
}

func TestGetVideo_NotFound(t *testing.T) {
	svc := NewVideoService(newFakeRepo(), newFakeCache())
	if _, err := svc.GetVideo(context.Background(), "missing"); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
}

func TestGetVideo_FillsAndUsesCache(t *testing.T) {
	repo, cache := newFakeRepo(), newFakeCache()
	seeded := seedRepo(t, repo, "cached")
	svc := NewVideoService(repo, cache)

	for i := 0; i < 3; i++ {
		got, err := svc.GetVideo(context.Background(), seeded[0].ID)
		if err != nil {
			t.Fatalf("GetVideo: %v", err)
		}
		if got.Title != "cached" {
			t.Fatalf("unexpected video %+v", got)
		}
	}
	if repo.findCalls != 1 || cache.setHits != 1 {
		t.Fatalf("expected one store read and one cache fill, got find=%d set=%d", repo.findCalls, cache.setHits)
	}
}

func TestGetVideo_CacheErrorFallsBackToStore(t *testing.T) {
	repo, cache := newFakeRepo(), newFakeCache()
	cache.getErr = errors.New("redis: connection refused")
	seeded := seedRepo(t, repo, "fallback")
	svc := NewVideoService(repo, cache)

	got, err := svc.GetVideo(context.Background(), seeded[0].ID)
	if err != nil || got.Title != "fallback" {
		t.Fatalf("expected store fallback, got %+v, %v", got, err)
	}
}

// 大量并发请求同一个ID，结果必须一致
func TestGetVideo_ConcurrentReaders(t *testing.T) {
	repo := newFakeRepo()
	seeded := seedRepo(t, repo, "hot")
	svc := NewVideoService(repo, newFakeCache())

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := svc.GetVideo(context.Background(), seeded[0].ID)
			if err != nil {
				errs <- err
				return
			}
			if v.ID != seeded[0].ID {
				errs <- errors.New("wrong video returned")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
