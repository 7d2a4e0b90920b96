package service

import (
	"VidVault/internal/model"
	"VidVault/internal/repository"
	"VidVault/pkg/logger"
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// VideoService 查询接口：列表和单个视频
type VideoService interface {
	ListVideos(ctx context.Context) ([]model.Video, error)
	GetVideo(ctx context.Context, videoID string) (*model.Video, error)
}

type videoService struct {
	sf singleflight.Group

	videoRepo repository.VideoRepository
	cache     repository.VideoCache
}

// NewVideoService cache可以为nil，此时直接查存储
func NewVideoService(videoRepo repository.VideoRepository, cache repository.VideoCache) VideoService {
	return &videoService{
		videoRepo: videoRepo,
		cache:     cache,
	}
}

// 获取全部视频，按创建时间倒序
func (s *videoService) ListVideos(ctx context.Context) ([]model.Video, error) {
	videos, err := s.videoRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []model.Video{}
	}
	return videos, nil
}

// 根据videoID查找视频：1、查找Redis缓存 2、通过SingleFlight进行存储查找 3、回写缓存
func (s *videoService) GetVideo(ctx context.Context, videoID string) (*model.Video, error) {
	logCtx := logger.Log.WithField("video_id", videoID)

	if s.cache != nil {
		video, err := s.cache.GetVideoCache(ctx, videoID)
		if err == nil && video != nil {
			logCtx.Debug("视频缓存命中")
			return video, nil
		}
		// Redis本身出错，记录日志后降级查存储
		if err != nil {
			logCtx.WithError(err).Warn("读取视频缓存失败")
		}
	}

	// 缓存未命中，同一时间同一ID只查一次存储
	key := fmt.Sprintf("get_video_%s", videoID)
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		dbVideo, dbErr := s.videoRepo.FindByID(ctx, videoID)
		if dbErr != nil {
			return nil, dbErr
		}
		if s.cache != nil {
			if cacheErr := s.cache.SetVideoCache(ctx, dbVideo); cacheErr != nil {
				logCtx.WithError(cacheErr).Warn("写入视频缓存失败")
			}
		}
		return dbVideo, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	// 返回值是interface{}，需要断言
	return result.(*model.Video), nil
}
