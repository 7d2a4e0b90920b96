package dto

import (
	"VidVault/internal/model"
	"time"
)

// VideoResponse 是API返回给前端的视频记录
type VideoResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	ThumbnailURL     string    `json:"thumbnailUrl"`
	VideoURL         string    `json:"videoUrl"`
	ThumbnailMediaID string    `json:"thumbnailMediaId"`
	VideoMediaID     string    `json:"videoMediaId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ToVideoResponse 把存储模型转换为API响应模型
func ToVideoResponse(video *model.Video) VideoResponse {
	return VideoResponse{
		ID:               video.ID,
		Title:            video.Title,
		Description:      video.Description,
		ThumbnailURL:     video.ThumbnailURL,
		VideoURL:         video.VideoURL,
		ThumbnailMediaID: video.ThumbnailMediaID,
		VideoMediaID:     video.VideoMediaID,
		CreatedAt:        video.CreatedAt,
		UpdatedAt:        video.UpdatedAt,
	}
}

// ToVideoResponses 列表为空时返回 []，而不是 null
func ToVideoResponses(videos []model.Video) []VideoResponse {
	resp := make([]VideoResponse, 0, len(videos))
	for i := range videos {
		resp = append(resp, ToVideoResponse(&videos[i]))
	}
	return resp
}
