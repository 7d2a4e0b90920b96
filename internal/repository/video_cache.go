package repository

import (
	"VidVault/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-redis/redis/v8"
)

// VideoCache 单个视频的Redis缓存，记录不可变，所以只需要过期而不需要失效
type VideoCache interface {
	// 缓存未命中返回 nil, nil
	GetVideoCache(ctx context.Context, videoID string) (*model.Video, error)
	SetVideoCache(ctx context.Context, video *model.Video) error
}

type redisVideoCache struct {
	rdb *redis.Client
}

// NewVideoCache rdb为nil时返回nil，调用方据此跳过缓存
func NewVideoCache(rdb *redis.Client) VideoCache {
	if rdb == nil {
		return nil
	}
	return &redisVideoCache{rdb: rdb}
}

// 返回存储单个视频信息的字符串Key
func keyVideoInfo(videoID string) string {
	return fmt.Sprintf("video:info:%s", videoID)
}

// 从Redis缓存中获取单个Video信息：1、利用VideoID组装key 2、拿key去rdb中寻找videoJSON 3、反序列化
func (c *redisVideoCache) GetVideoCache(ctx context.Context, videoID string) (*model.Video, error) {
	videoJSON, err := c.rdb.Get(ctx, keyVideoInfo(videoID)).Result()
	if err == redis.Nil {
		return nil, nil // 缓存不存在，但是Redis正常工作
	} else if err != nil {
		return nil, err // Redis本身出错了
	}
	var video model.Video
	if err := json.Unmarshal([]byte(videoJSON), &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// 将单个视频信息存入Redis缓存，过期时间加上随机性防止缓存雪崩
func (c *redisVideoCache) SetVideoCache(ctx context.Context, video *model.Video) error {
	videoJSON, err := json.Marshal(video)
	if err != nil {
		return err
	}
	expiration := time.Minute*5 + time.Duration(rand.Intn(60))*time.Second
	return c.rdb.Set(ctx, keyVideoInfo(video.ID), videoJSON, expiration).Err()
}
