package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ID是不透明的UUID字符串，SQL和Mongo两种存储用同一种ID，客户端不需要关心后端是哪一种
type BaseModel struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id"`
	CreatedAt time.Time `gorm:"index" bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// BeforeCreate gorm钩子，插入前分配ID
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
