package handler

import (
	"VidVault/internal/dto"
	"VidVault/internal/middleware"
	"VidVault/internal/policy"
	"VidVault/internal/service"
	"VidVault/pkg/logger"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type VideoHandler interface {
	CreateVideo(c *gin.Context)

	ListVideos(c *gin.Context)
	GetVideoByID(c *gin.Context)
}

type videoHandler struct {
	UploadService service.UploadService
	VideoService  service.VideoService
}

func NewVideoHandler(uploadService service.UploadService, videoService service.VideoService) VideoHandler {
	return &videoHandler{UploadService: uploadService, VideoService: videoService}
}

// CreateVideoRequest 是multipart表单，缺失的文件字段为nil，由service统一校验
type CreateVideoRequest struct {
	Title       string                `form:"title"`
	Description string                `form:"description"`
	Video       *multipart.FileHeader `form:"video"`
	Thumbnail   *multipart.FileHeader `form:"thumbnail"`
}

// 创建视频：1、解析multipart表单 2、确定两个文件的内容类型 3、service层校验+上传+写记录 4、将返回的视频结构通过dto传回
func (h *videoHandler) CreateVideo(c *gin.Context) {
	logCtx := logger.Log.WithField("request_id", c.GetString(middleware.RequestIDKey))

	var req CreateVideoRequest
	if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logCtx.WithField("limit", tooLarge.Limit).Warn("请求体超过上限")
			sendErrorResponse(c, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		logCtx.WithError(err).Error("上传表单解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	// 删除解析表单时落盘的临时文件
	if form := c.Request.MultipartForm; form != nil {
		defer form.RemoveAll()
	}

	logCtx = logCtx.WithField("title", req.Title)
	logCtx.Info("开始处理上传视频请求")

	in := service.UploadInput{
		Title:       req.Title,
		Description: req.Description,
		Files: service.Files{
			Video:     filePayload(req.Video),
			Thumbnail: filePayload(req.Thumbnail),
		},
	}
	video, err := h.UploadService.Upload(c.Request.Context(), in)
	if err != nil {
		logCtx.WithError(err).Error("上传视频失败")
		sendServiceError(c, err)
		return
	}
	logCtx.WithField("video_id", video.ID).Info("视频上传成功")

	c.JSON(http.StatusCreated, dto.ToVideoResponse(video))
}

func (h *videoHandler) ListVideos(c *gin.Context) {
	videos, err := h.VideoService.ListVideos(c.Request.Context())
	if err != nil {
		logger.Log.WithError(err).Error("获取视频列表失败")
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToVideoResponses(videos))
}

func (h *videoHandler) GetVideoByID(c *gin.Context) {
	videoID := c.Param("id")
	logCtx := logger.Log.WithField("video_id", videoID)

	video, err := h.VideoService.GetVideo(c.Request.Context(), videoID)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			logCtx.Info("视频不存在")
		} else {
			logCtx.WithError(err).Error("查找视频失败")
		}
		sendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToVideoResponse(video))
}

// 把表单文件转换成service层的FilePayload；声明类型缺失时根据文件头嗅探
func filePayload(fh *multipart.FileHeader) service.FilePayload {
	if fh == nil {
		return service.FilePayload{}
	}
	return service.FilePayload{
		Filename:    fh.Filename,
		ContentType: contentType(fh),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func contentType(fh *multipart.FileHeader) string {
	declared := fh.Header.Get("Content-Type")
	if ct := policy.NormalizeContentType(declared); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	f, err := fh.Open()
	if err != nil {
		return policy.NormalizeContentType(declared)
	}
	defer f.Close()

	head := make([]byte, policy.SniffLen)
	n, _ := io.ReadFull(f, head)
	return policy.DetectContentType(declared, head[:n])
}
