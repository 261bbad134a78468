// Package drive 封装云盘 (Google Drive) 的列目录、下载、导出，以及按 MIME 类型提取文本。
package drive

import (
	"context"
	"time"
)

// Google 原生文档类型
const (
	MimeGoogleDoc    = "application/vnd.google-apps.document"
	MimeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeGoogleSlides = "application/vnd.google-apps.presentation"
	MimeGoogleFolder = "application/vnd.google-apps.folder"
)

// File 文件元数据
type File struct {
	ID           string
	Name         string
	MimeType     string
	ModifiedTime time.Time
}

// Service 一个用户授权后的云盘会话
type Service interface {
	// ListFiles 列出文件夹下未删除的文件；modifiedAfter 为 nil 时列出全部
	ListFiles(ctx context.Context, folderID string, modifiedAfter *time.Time) ([]File, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
	Export(ctx context.Context, fileID, mimeType string) ([]byte, error)
}

// Connector 用 refresh token 建立会话。token 无效时返回 apperr.ErrAuth
type Connector interface {
	Connect(ctx context.Context, refreshToken string) (Service, error)
}
