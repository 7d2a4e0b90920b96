package main

import (
	"VidVault/internal/config"
	"VidVault/internal/media"
	"VidVault/internal/service"
	"VidVault/pkg/logger"
	"VidVault/pkg/rabbitmq"
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/streadway/amqp"
)

// 消费者进程：连接RabbitMQ和媒体托管服务，删除上传管道上报的孤儿媒体
func main() {
	cfg, err := config.LoadConsumer()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	if err := logger.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	if cfg.RabbitMQURL == "" {
		logger.Log.Fatal("未配置RABBITMQ_URL，消费者无事可做")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host, err := media.NewHost(ctx, cfg.Media)
	if err != nil {
		logger.Log.Fatalf("媒体托管服务初始化失败: %v", err)
	}

	// 连接RabbitMQ
	rabbitMQConn, err := rabbitmq.InitRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Log.Fatalf("消费者无法连接到RabbitMQ: %v", err)
	}
	defer rabbitMQConn.Close()

	// 和上传端声明同一个持久化队列（幂等），消费者先启动也不会失败
	if _, err := service.NewOrphanReporter(rabbitMQConn); err != nil {
		logger.Log.Fatalf("孤儿媒体队列声明失败: %v", err)
	}

	consumeOrphans(ctx, rabbitMQConn, service.NewOrphanSweeper(host))
}

// 孤儿媒体消费者：1、通过mq的TCP连接创建channel 2、通过ch注册消费者 3、逐条删除托管服务上的文件 4、根据结果Ack/Nack
func consumeOrphans(ctx context.Context, conn *amqp.Connection, sweeper *service.OrphanSweeper) {
	ch, err := conn.Channel()
	if err != nil {
		logger.Log.Fatalf("无法打开Channel: %v", err)
	}
	defer ch.Close()

	// 一次只处理一条，删除失败重新入队时不会堆积在本消费者上
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Log.Fatalf("设置Qos失败: %v", err)
	}

	msgs, err := ch.Consume(
		service.QueueOrphanMedia, // queue
		"",                       // consumer
		false,                    // auto-ack: 处理完成后手动确认
		false,                    // exclusive
		false,                    // no-local
		false,                    // no-wait
		nil,                      // args
	)
	if err != nil {
		logger.Log.Fatalf("无法注册孤儿媒体消费者: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		// msgs是通道，连接断开时会被关闭，循环随之结束
		for d := range msgs {
			handleOrphan(ctx, sweeper, d)
		}
	}()
	logger.Log.Info(" [*] 等待孤儿媒体消息中. 按 CTRL+C 退出")

	select {
	case <-ctx.Done():
		logger.Log.Info("收到退出信号，消费者退出")
	case <-done:
		logger.Log.Warn("消息通道已关闭，消费者退出")
	}
}

func handleOrphan(ctx context.Context, sweeper *service.OrphanSweeper, d amqp.Delivery) {
	logCtx := logger.Log.WithField("body", string(d.Body)).WithField("redelivered", d.Redelivered)
	logCtx.Info("收到一条孤儿媒体消息")

	var msg service.OrphanMedia
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.MediaID == "" {
		logCtx.WithError(err).Error("消息解析失败，直接丢弃")
		// 对于无法解析的“坏消息”，通知mq处理失败，并且不重新入队
		d.Nack(false, false)
		return
	}

	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sweeper.Sweep(sweepCtx, msg); err != nil {
		// 网络、配额等临时错误，要求重试
		logCtx.WithError(err).Error("删除孤儿媒体失败，将进行重试")
		d.Nack(false, true)
		return
	}
	logCtx.WithField("media_id", msg.MediaID).Info("孤儿媒体已删除")
	d.Ack(false)
}
