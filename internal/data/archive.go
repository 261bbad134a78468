package data

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
)

// TextArchive 保存每次同步提取出的文本，便于排查 Chatbase 里的内容从何而来
type TextArchive interface {
	Put(ctx context.Context, key, text string) error
}

// ArchiveKey sync/<userID>/<fileID>.txt，同一文件重复同步会覆盖
func ArchiveKey(userID, fileID string) string {
	return path.Join("sync", userID, fileID+".txt")
}

type MinioArchive struct {
	client *minio.Client
	bucket string
}

func NewMinioArchive(client *minio.Client, bucket string) *MinioArchive {
	return &MinioArchive{client: client, bucket: bucket}
}

func (a *MinioArchive) Put(ctx context.Context, key, text string) error {
	_, err := a.client.PutObject(ctx, a.bucket, key, strings.NewReader(text), int64(len(text)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", a.bucket, key, err)
	}
	return nil
}
