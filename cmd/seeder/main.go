// cmd/seeder/main.go

package main

import (
	"VidVault/internal/config"
	"VidVault/internal/model"
	"VidVault/internal/policy"
	"VidVault/internal/repository"
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
)

func main() {
	count := flag.Int("n", 50, "number of videos to create")
	flag.Parse()

	fmt.Println("🚀 开始填充测试数据...")

	// --- 1. 连接元数据存储 ---
	// 和server使用同一份配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}
	ctx := context.Background()
	repo, closeStore, err := repository.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("❌ 无法连接到元数据存储: %v", err)
	}
	defer closeStore(ctx)
	fmt.Printf("✅ %s 连接成功!\n", cfg.Store.Driver)

	// --- 2. 创建视频 ---
	// 创建时间依次错开一分钟，列表按时间倒序时顺序是确定的
	fmt.Println("🎬 正在创建视频...")
	start := time.Now().Add(-time.Duration(*count) * time.Minute)
	created := 0
	for i := 0; i < *count; i++ {
		mediaID := uuid.NewString()
		video := model.Video{
			Title:            truncate(faker.Sentence(), policy.MaxTitleLength),
			Description:      truncate(faker.Paragraph(), policy.MaxDescriptionLength),
			VideoURL:         "https://test.com/videos/" + mediaID + ".mp4",
			ThumbnailURL:     "https://test.com/thumbnails/" + mediaID + ".jpg",
			VideoMediaID:     "videos/" + mediaID,
			ThumbnailMediaID: "thumbnails/" + mediaID,
		}
		video.CreatedAt = start.Add(time.Duration(i) * time.Minute)
		video.UpdatedAt = video.CreatedAt
		if err := repo.Create(ctx, &video); err != nil {
			log.Printf("⚠️ 创建视频失败: %v", err)
			continue
		}
		created++
	}
	fmt.Printf("✅ 成功创建 %d 个视频!\n", created)

	fmt.Println("🎉🎉🎉 所有测试数据填充完毕! 🎉🎉🎉")
}

// 按字符截断，保证种子数据满足标题/简介长度限制
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
