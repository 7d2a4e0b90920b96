package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"VidVault/internal/policy"

	"github.com/joho/godotenv"
)

// 元数据存储驱动
const (
	DriverMongo    = "mongo"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// 媒体托管服务
const (
	MediaCloudinary = "cloudinary"
	MediaS3         = "s3"
	MediaLocal      = "local"
)

type StoreConfig struct {
	Driver        string
	DSN           string // mysql/postgres
	MongoURI      string
	MongoDatabase string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MediaConfig struct {
	Host string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	S3Bucket        string
	S3PublicBaseURL string

	LocalDir     string
	LocalBaseURL string
}

// Config 进程启动时构建一次，之后以参数的方式注入各个组件，不使用包级全局变量
type Config struct {
	Port        string
	Store       StoreConfig
	Redis       RedisConfig // Addr为空表示不启用缓存
	RabbitMQURL string      // 为空表示不投递孤儿媒体清理消息
	Media       MediaConfig
	CORSOrigins []string
	Limits      policy.Limits
	LogLevel    string
	LogFile     string
}

// Load 读取.env（文件不存在不算错误），再从环境变量构建Config并校验
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	return FromEnv()
}

// LoadConsumer 孤儿媒体消费者不访问元数据存储，只校验媒体托管配置
func LoadConsumer() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	return ConsumerFromEnv()
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// FromEnv 只读取当前进程的环境变量，存储和媒体托管配置都要校验
func FromEnv() (*Config, error) {
	cfg, err := readEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateStore(); err != nil {
		return nil, err
	}
	if err := cfg.validateMedia(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConsumerFromEnv 和FromEnv相同，但跳过存储配置的校验
func ConsumerFromEnv() (*Config, error) {
	cfg, err := readEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateMedia(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readEnv() (*Config, error) {
	port := getEnv("PORT", "5000")

	cfg := &Config{
		Port: port,
		Store: StoreConfig{
			Driver:        strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
			DSN:           os.Getenv("DATABASE_DSN"),
			MongoURI:      os.Getenv("MONGODB_URI"),
			MongoDatabase: getEnv("MONGODB_DATABASE", "vidvault"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
		Media: MediaConfig{
			Host:                strings.ToLower(getEnv("MEDIA_HOST", MediaCloudinary)),
			CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			S3Bucket:            os.Getenv("S3_BUCKET_NAME"),
			S3PublicBaseURL:     os.Getenv("S3_PUBLIC_BASE_URL"),
			LocalDir:            getEnv("MEDIA_LOCAL_DIR", "./uploads"),
			LocalBaseURL:        getEnv("MEDIA_PUBLIC_URL", "http://localhost:"+port+"/media"),
		},
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     os.Getenv("LOG_FILE"),
	}

	var err error
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Limits, err = LimitsFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LimitsFromEnv 读取MAX_VIDEO_MB/MAX_IMAGE_MB，未设置时使用默认上限；上传命令行也用它
func LimitsFromEnv() (policy.Limits, error) {
	limits := policy.DefaultLimits
	if mb, err := getInt("MAX_VIDEO_MB", 0); err != nil {
		return limits, err
	} else if mb > 0 {
		limits.VideoBytes = int64(mb) << 20
	}
	if mb, err := getInt("MAX_IMAGE_MB", 0); err != nil {
		return limits, err
	} else if mb > 0 {
		limits.ImageBytes = int64(mb) << 20
	}
	return limits, nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return errors.New("MONGODB_URI is not set")
		}
	case DriverMySQL, DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("DATABASE_DSN is not set")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	return nil
}

func (c *Config) validateMedia() error {
	switch c.Media.Host {
	case MediaCloudinary:
		if c.Media.CloudinaryCloudName == "" || c.Media.CloudinaryAPIKey == "" || c.Media.CloudinaryAPISecret == "" {
			return errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET must be set")
		}
	case MediaS3:
		if c.Media.S3Bucket == "" {
			return errors.New("S3_BUCKET_NAME is not set")
		}
	case MediaLocal:
	default:
		return fmt.Errorf("unsupported MEDIA_HOST %q", c.Media.Host)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
