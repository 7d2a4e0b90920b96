package main

import (
	"VidVault/internal/config"
	"VidVault/internal/handler"
	"VidVault/internal/media"
	"VidVault/internal/repository"
	"VidVault/internal/router"
	"VidVault/internal/service"
	"VidVault/pkg/logger"
	"VidVault/pkg/rabbitmq"
	"VidVault/pkg/redis"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/streadway/amqp"
)

func main() {
	// 加载.env文件和环境变量
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	// 初始化logger
	if err := logger.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 元数据存储
	videoRepo, closeStore, err := repository.Open(ctx, cfg.Store)
	if err != nil {
		logger.Log.Fatalf("无法连接到元数据存储: %v", err)
	}
	defer closeStore(context.Background())

	// Redis是可选的，没配置就不缓存
	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redis.InitRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Log.Fatalf("无法连接到Redis: %v", err)
		}
		defer redisClient.Close()
		logger.Log.Info("Redis连接成功")
	}

	// RabbitMQ是可选的，没配置时孤儿媒体只记日志
	var rabbitMQConn *amqp.Connection
	if cfg.RabbitMQURL != "" {
		rabbitMQConn, err = rabbitmq.InitRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logger.Log.Fatalf("无法连接到RabbitMQ: %v", err)
		}
		defer rabbitMQConn.Close()
		logger.Log.Info("RabbitMQ连接成功")
	}
	orphans, err := service.NewOrphanReporter(rabbitMQConn)
	if err != nil {
		logger.Log.Fatalf("孤儿媒体队列初始化失败: %v", err)
	}

	host, err := media.NewHost(ctx, cfg.Media)
	if err != nil {
		logger.Log.Fatalf("媒体托管服务初始化失败: %v", err)
	}
	logger.Log.WithField("media_host", cfg.Media.Host).Info("媒体托管服务初始化成功")

	uploadService := service.NewUploadService(host, videoRepo, orphans, cfg.Limits)
	videoService := service.NewVideoService(videoRepo, repository.NewVideoCache(redisClient))
	videoHandler := handler.NewVideoHandler(uploadService, videoService)

	opts := router.Options{MaxBodyBytes: cfg.Limits.MaxRequestBytes()}
	if fsHost, ok := host.(*media.FSHost); ok {
		opts.MediaDir = fsHost.Dir()
	}
	r := router.SetupRouter(videoHandler, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.WithCORS(r, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Log.Infof("服务器将在: %s端口启动", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("收到退出信号，开始优雅关闭")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("服务器关闭失败")
	}
	logger.Log.Info("服务器已关闭")
}
