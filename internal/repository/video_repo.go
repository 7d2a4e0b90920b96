package repository

import (
	"VidVault/internal/model"
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("video not found")
	// ErrDuplicateID 主键冲突，UUID理论上不会冲突，出现了说明是重复写入
	ErrDuplicateID = errors.New("duplicate video id")
)

// VideoRepository 元数据存储：只有创建和读取，记录创建后不可变
type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	// 按创建时间倒序返回全部记录
	FindAll(ctx context.Context) ([]model.Video, error)
	FindByID(ctx context.Context, videoID string) (*model.Video, error)
}

type videoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

// Create 单条INSERT本身就是原子的，不需要事务
func (r *videoRepository) Create(ctx context.Context, video *model.Video) error {
	err := r.db.WithContext(ctx).Create(video).Error
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, video.ID)
		}
		return err
	}
	return nil
}

// 按时间倒序查询全部视频，不分页
func (r *videoRepository) FindAll(ctx context.Context) ([]model.Video, error) {
	videos := make([]model.Video, 0)
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepository) FindByID(ctx context.Context, videoID string) (*model.Video, error) {
	var video model.Video
	err := r.db.WithContext(ctx).Where("id = ?", videoID).First(&video).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	// 错误号 1062 就是 "Duplicate entry"
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	// 开启TranslateError时，postgres/sqlite的冲突会被gorm翻译成ErrDuplicatedKey
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
