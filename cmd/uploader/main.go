package main

import (
	"VidVault/internal/config"
	"VidVault/pkg/client"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"
)

// 命令行上传：校验 -> 上传并显示进度 -> 成功后打印视频列表
func main() {
	server := flag.String("server", "http://localhost:5000", "API base URL")
	title := flag.String("title", "", "video title (max 50 characters)")
	description := flag.String("description", "", "video description (max 200 characters)")
	videoPath := flag.String("video", "", "path to the video file")
	thumbnailPath := flag.String("thumbnail", "", "path to the thumbnail image")
	timeout := flag.Duration("timeout", 10*time.Minute, "give up waiting after this long")
	flag.Parse()

	form := client.Form{Title: *title, Description: *description}
	var err error
	if *videoPath != "" {
		if form.Video, err = client.FileFromPath(*videoPath); err != nil {
			fail(err)
		}
	}
	if *thumbnailPath != "" {
		if form.Thumbnail, err = client.FileFromPath(*thumbnailPath); err != nil {
			fail(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	// 与服务端读取同样的MAX_VIDEO_MB/MAX_IMAGE_MB，保证本地校验一致
	opts := []client.Option{client.WithHTTPClient(&http.Client{})}
	limits, err := config.LimitsFromEnv()
	if err != nil {
		fail(err)
	}
	opts = append(opts, client.WithLimits(limits))
	c := client.New(*server, opts...)

	video, err := c.Upload(ctx, form, func(percent int) {
		fmt.Fprintf(os.Stderr, "\rUploading... %3d%%", percent)
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, client.HumanMessage(err))
		os.Exit(1)
	}
	fmt.Printf("Uploaded %q (%s)\n", video.Title, video.ID)

	videos, err := c.List(ctx)
	if err != nil {
		fail(err)
	}
	for _, v := range videos {
		fmt.Printf("%s  %-50s  %s\n", v.CreatedAt.Format("2006-01-02 15:04"), v.Title, v.VideoURL)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
