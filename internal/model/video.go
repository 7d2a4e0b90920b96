package model

// Video 即VideoRecord：两个媒体都上传成功后才会创建，创建后不再修改
type Video struct {
	BaseModel `bson:",inline"`

	Title       string `gorm:"size:50;not null" bson:"title"`        // 标题，最多50个字符
	Description string `gorm:"size:200;not null" bson:"description"` // 简介，最多200个字符

	ThumbnailURL string `gorm:"not null" bson:"thumbnailUrl"` // 封面地址
	VideoURL     string `gorm:"not null" bson:"videoUrl"`     // 视频播放地址

	// 媒体托管服务里的ID，以后删除媒体时要用
	ThumbnailMediaID string `gorm:"not null" bson:"thumbnailMediaId"`
	VideoMediaID     string `gorm:"not null" bson:"videoMediaId"`
}

func (Video) TableName() string {
	return "videos"
}
