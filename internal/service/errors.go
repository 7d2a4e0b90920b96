package service

import (
	"VidVault/internal/media"
	"errors"
	"fmt"
)

// ErrVideoNotFound 查询不存在的ID，返回404，不算异常
var ErrVideoNotFound = errors.New("video not found")

// Asset 是上传失败的是哪一个文件
type Asset string

const (
	AssetVideo     Asset = "video"
	AssetThumbnail Asset = "thumbnail"
)

// FailureReason 是上传失败的原因分类
type FailureReason string

const (
	ReasonFormat      FailureReason = "format"      // 托管服务拒绝了格式
	ReasonSize        FailureReason = "size"        // 托管服务拒绝了大小
	ReasonUnavailable FailureReason = "unavailable" // 网络、配额、5xx等
)

// UploadError 媒体托管调用失败，此时不会创建任何记录
type UploadError struct {
	Asset  Asset
	Reason FailureReason
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s upload failed (%s): %v", e.Asset, e.Reason, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// PersistenceError 两个媒体都上传成功，但写记录失败；媒体成为孤儿
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save video record: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func classifyUploadFailure(err error) FailureReason {
	switch {
	case errors.Is(err, media.ErrTooLarge):
		return ReasonSize
	case errors.Is(err, media.ErrRejectedFormat):
		return ReasonFormat
	default:
		return ReasonUnavailable
	}
}
