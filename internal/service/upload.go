package service

import (
	"VidVault/internal/media"
	"VidVault/internal/model"
	"VidVault/internal/policy"
	"VidVault/internal/repository"
	"VidVault/pkg/logger"
	"context"
	"io"

	"golang.org/x/sync/errgroup"
)

// 媒体托管服务里的目录
const (
	FolderVideos     = "videos"
	FolderThumbnails = "thumbnails"
)

// FilePayload 一个上传文件：声明的类型、大小，以及按需打开内容的方法
type FilePayload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func (f FilePayload) present() bool {
	return f.Open != nil
}

// Files 显式的两个文件，而不是松散的字段集合
type Files struct {
	Video     FilePayload
	Thumbnail FilePayload
}

type UploadInput struct {
	Title       string
	Description string
	Files       Files
}

func (in UploadInput) submission() policy.Submission {
	s := policy.Submission{Title: in.Title, Description: in.Description}
	if in.Files.Video.present() {
		s.Video = &policy.File{Filename: in.Files.Video.Filename, ContentType: in.Files.Video.ContentType, Size: in.Files.Video.Size}
	}
	if in.Files.Thumbnail.present() {
		s.Thumbnail = &policy.File{Filename: in.Files.Thumbnail.Filename, ContentType: in.Files.Thumbnail.ContentType, Size: in.Files.Thumbnail.Size}
	}
	return s
}

// UploadService 上传管道：校验 -> 并发上传两个文件 -> 写一条记录
type UploadService interface {
	Upload(ctx context.Context, in UploadInput) (*model.Video, error)
}

type uploadService struct {
	host    media.Host
	repo    repository.VideoRepository
	orphans OrphanReporter
	limits  policy.Limits
}

func NewUploadService(host media.Host, repo repository.VideoRepository, orphans OrphanReporter, limits policy.Limits) UploadService {
	if orphans == nil {
		orphans = NopOrphanReporter{}
	}
	return &uploadService{
		host:    host,
		repo:    repo,
		orphans: orphans,
		limits:  limits,
	}
}

// 上传视频：1、在任何网络调用之前校验 2、视频和封面并发上传，任何一个失败都取消另一个 3、两个都成功后才构建并写入记录
// 失败时不会留下任何记录；已经上传成功的那个文件作为孤儿上报
func (s *uploadService) Upload(ctx context.Context, in UploadInput) (*model.Video, error) {
	if err := s.limits.Check(in.submission()); err != nil {
		return nil, err
	}

	logCtx := logger.Log.WithField("title", in.Title)

	var thumbnail, video *media.Asset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		asset, err := s.put(gctx, AssetThumbnail, in.Files.Thumbnail, media.UploadRequest{
			Folder: FolderThumbnails,
			Kind:   media.KindImage,
		})
		if err != nil {
			return err
		}
		thumbnail = asset
		return nil
	})
	g.Go(func() error {
		asset, err := s.put(gctx, AssetVideo, in.Files.Video, media.UploadRequest{
			Folder: FolderVideos,
			Kind:   media.KindVideo,
		})
		if err != nil {
			return err
		}
		video = asset
		return nil
	})

	// Wait返回第一个失败；两个goroutine都结束后才读thumbnail/video
	if err := g.Wait(); err != nil {
		logCtx.WithError(err).Error("媒体上传失败，不创建记录")
		s.reportOrphans(ctx, CauseSiblingUploadFailed, thumbnail, video)
		return nil, err
	}

	record := &model.Video{
		Title:            in.Title,
		Description:      in.Description,
		ThumbnailURL:     thumbnail.URL,
		VideoURL:         video.URL,
		ThumbnailMediaID: thumbnail.ID,
		VideoMediaID:     video.ID,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		logCtx.WithError(err).
			WithField("video_media_id", video.ID).
			WithField("thumbnail_media_id", thumbnail.ID).
			Error("媒体已上传但记录写入失败")
		s.reportOrphans(ctx, CausePersistenceFailed, thumbnail, video)
		return nil, &PersistenceError{Err: err}
	}

	logCtx.WithField("video_id", record.ID).Info("视频记录创建成功")
	return record, nil
}

// 上传单个文件，失败时包装成带文件名和原因的UploadError
func (s *uploadService) put(ctx context.Context, asset Asset, f FilePayload, req media.UploadRequest) (*media.Asset, error) {
	body, err := f.Open()
	if err != nil {
		return nil, &UploadError{Asset: asset, Reason: ReasonUnavailable, Err: err}
	}
	defer body.Close()

	req.Filename = f.Filename
	req.ContentType = policy.NormalizeContentType(f.ContentType)
	req.Size = f.Size

	uploaded, err := s.host.Upload(ctx, req, body)
	if err != nil {
		return nil, &UploadError{Asset: asset, Reason: classifyUploadFailure(err), Err: err}
	}
	logger.Log.WithField("asset", asset).WithField("media_id", uploaded.ID).Info("媒体上传成功")
	return uploaded, nil
}

func (s *uploadService) reportOrphans(ctx context.Context, cause string, thumbnail, video *media.Asset) {
	var orphans []OrphanMedia
	if thumbnail != nil {
		orphans = append(orphans, OrphanMedia{MediaID: thumbnail.ID, Kind: media.KindImage, Cause: cause})
	}
	if video != nil {
		orphans = append(orphans, OrphanMedia{MediaID: video.ID, Kind: media.KindVideo, Cause: cause})
	}
	if len(orphans) == 0 {
		return
	}
	// 请求可能已经被取消，上报不应该跟着失败
	if err := s.orphans.Report(context.WithoutCancel(ctx), orphans); err != nil {
		logger.Log.WithError(err).WithField("count", len(orphans)).Error("孤儿媒体上报失败，需人工清理")
	}
}
