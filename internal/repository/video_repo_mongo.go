package repository

import (
	"VidVault/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionVideos = "videos"

type mongoVideoRepository struct {
	coll *mongo.Collection
}

// NewMongoVideoRepository 绑定videos集合，并确保createdAt上有倒序索引
func NewMongoVideoRepository(ctx context.Context, db *mongo.Database) (VideoRepository, error) {
	coll := db.Collection(collectionVideos)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("create createdAt index: %w", err)
	}
	return &mongoVideoRepository{coll: coll}, nil
}

// Create Mongo没有gorm那样的钩子，ID和时间戳在这里手动填
func (r *mongoVideoRepository) Create(ctx context.Context, video *model.Video) error {
	if video.ID == "" {
		video.ID = uuid.NewString()
	}
	// Mongo的时间精度是毫秒，先截断，保证返回值和读出来的值一致
	now := time.Now().UTC().Truncate(time.Millisecond)
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	if video.UpdatedAt.IsZero() {
		video.UpdatedAt = video.CreatedAt
	}

	if _, err := r.coll.InsertOne(ctx, video); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, video.ID)
		}
		return err
	}
	return nil
}

func (r *mongoVideoRepository) FindAll(ctx context.Context) ([]model.Video, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	videos := make([]model.Video, 0)
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *mongoVideoRepository) FindByID(ctx context.Context, videoID string) (*model.Video, error) {
	var video model.Video
	err := r.coll.FindOne(ctx, bson.M{"_id": videoID}).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}
