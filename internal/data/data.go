package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hanna-ai/internal/conf"
	"hanna-ai/internal/model"
)

// Data 持有所有存储句柄。Redis / Minio 未配置时为 nil
type Data struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Minio  *minio.Client
	Bucket string
}

// NewData 连接数据库、Redis、MinIO 并执行迁移。返回的 cleanup 负责关闭连接。
// 中途失败时已打开的连接会先关闭
func NewData(ctx context.Context, cfg *conf.Config, log *zap.Logger) (*Data, func(), error) {
	// 1. 数据库
	db, err := OpenDB(cfg.Data)
	if err != nil {
		return nil, nil, err
	}
	d := &Data{DB: db, Bucket: cfg.Data.MinioBucket}
	fail := func(err error) (*Data, func(), error) {
		d.Close(log)
		return nil, nil, err
	}

	if err := Migrate(db); err != nil {
		return fail(err)
	}
	log.Info("database ready", zap.String("driver", cfg.Data.DatabaseDriver))

	// 2. Redis (可选)
	if cfg.Data.RedisAddr != "" {
		d.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Data.RedisAddr,
			Password: cfg.Data.RedisPassword,
			DB:       cfg.Data.RedisDB,
		})
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			return fail(fmt.Errorf("ping redis: %w", err))
		}
		log.Info("redis ready", zap.String("addr", cfg.Data.RedisAddr))
	}

	// 3. MinIO (可选)
	if cfg.Data.MinioEndpoint != "" {
		mc, err := minio.New(cfg.Data.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Data.MinioAccessKey, cfg.Data.MinioSecretKey, ""),
			Secure: cfg.Data.MinioUseSSL,
		})
		if err != nil {
			return fail(fmt.Errorf("init minio: %w", err))
		}
		if err := ensureBucket(ctx, mc, d.Bucket); err != nil {
			return fail(err)
		}
		d.Minio = mc
		log.Info("minio ready", zap.String("bucket", d.Bucket))
	}

	return d, func() { d.Close(log) }, nil
}

// Close 关闭 Redis 和数据库连接。MinIO 客户端无需关闭
func (d *Data) Close(log *zap.Logger) {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			log.Warn("close redis", zap.Error(err))
		}
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("close database", zap.Error(err))
			}
		}
	}
}

// OpenDB 按驱动打开数据库。sqlite 用于本地开发和测试
func OpenDB(cfg conf.DataConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	switch cfg.DatabaseDriver {
	case "postgres":
		db, err := gorm.Open(postgres.Open(cfg.DatabaseSource), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.DatabaseSource), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		db, err := gorm.Open(sqlite.Open(cfg.DatabaseSource+"?_journal_mode=WAL&_busy_timeout=5000"), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite 单写者
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

// Migrate 自动建表 / 加字段
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.SyncJob{},
		&model.SyncLog{},
		&model.FolderSync{},
		&model.UserCredential{},
	); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	return nil
}

func ensureBucket(ctx context.Context, mc *minio.Client, bucket string) error {
	exists, err := mc.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check minio bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create minio bucket %s: %w", bucket, err)
	}
	return nil
}

// Locker Redis 可用时跨副本加锁，否则退化为进程内锁
func (d *Data) Locker() PassLocker {
	if d.Redis != nil {
		return NewRedisLocker(d.Redis)
	}
	return NewLocalLocker()
}

// Archive 未配置 MinIO 时返回 nil
func (d *Data) Archive() TextArchive {
	if d.Minio == nil {
		return nil
	}
	return NewMinioArchive(d.Minio, d.Bucket)
}
