package service

import (
	"VidVault/internal/media"
	"VidVault/pkg/logger"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/streadway/amqp"
)

const (
	// 项目名.业务领域.实体/功能
	QueueOrphanMedia = "vidvault.orphan_media.queue"

	CauseSiblingUploadFailed = "sibling_upload_failed"
	CausePersistenceFailed   = "persistence_failed"
)

// OrphanMedia 已经存在于媒体托管服务、但没有任何记录引用的文件
type OrphanMedia struct {
	MediaID string     `json:"media_id"`
	Kind    media.Kind `json:"kind"`
	Cause   string     `json:"cause"`
}

// OrphanReporter 上报孤儿媒体，由消费者异步删除
type OrphanReporter interface {
	Report(ctx context.Context, orphans []OrphanMedia) error
}

// NopOrphanReporter 没有配置RabbitMQ时使用，只记日志
type NopOrphanReporter struct{}

func (NopOrphanReporter) Report(_ context.Context, orphans []OrphanMedia) error {
	for _, o := range orphans {
		logger.Log.WithField("media_id", o.MediaID).
			WithField("kind", o.Kind).
			WithField("cause", o.Cause).
			Warn("孤儿媒体未配置清理队列，需人工清理")
	}
	return nil
}

type amqpOrphanReporter struct {
	conn *amqp.Connection
}

// NewOrphanReporter conn为nil时返回NopOrphanReporter；否则先声明持久化队列（幂等）
func NewOrphanReporter(conn *amqp.Connection) (OrphanReporter, error) {
	if conn == nil {
		return NopOrphanReporter{}, nil
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		QueueOrphanMedia, // name
		true,             // durable: 服务器重启后队列仍在
		false,            // autoDelete
		false,            // exclusive
		false,            // noWait
		nil,              // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", QueueOrphanMedia, err)
	}
	return &amqpOrphanReporter{conn: conn}, nil
}

// 每个孤儿一条消息，消费者逐条删除、逐条确认
func (r *amqpOrphanReporter) Report(_ context.Context, orphans []OrphanMedia) error {
	ch, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	for _, o := range orphans {
		body, err := json.Marshal(o)
		if err != nil {
			return err
		}
		err = ch.Publish(
			"",               // exchange默认交换机
			QueueOrphanMedia, // routing key
			false,            // mandatory
			false,            // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
			})
		if err != nil {
			return err
		}
		logger.Log.WithField("media_id", o.MediaID).WithField("cause", o.Cause).Info("孤儿媒体已加入清理队列")
	}
	return nil
}

// OrphanSweeper 消费端：删除托管服务上的孤儿文件
type OrphanSweeper struct {
	host media.Host
}

func NewOrphanSweeper(host media.Host) *OrphanSweeper {
	return &OrphanSweeper{host: host}
}

// Sweep 文件已经不存在也算成功，重复消费是幂等的
func (s *OrphanSweeper) Sweep(ctx context.Context, o OrphanMedia) error {
	if o.MediaID == "" {
		return errors.New("orphan message has no media id")
	}
	err := s.host.Delete(ctx, o.MediaID, o.Kind)
	if errors.Is(err, media.ErrNotFound) {
		logger.Log.WithField("media_id", o.MediaID).Warn("孤儿媒体已不存在，视为清理完成")
		return nil
	}
	return err
}
