package drive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/conf"
)

// 单个文件最多读取 20MB，超过直接报错，不同步截断后的内容
const maxDownloadBytes = 20 << 20

const listFields = "nextPageToken, files(id, name, mimeType, modifiedTime)"

type GoogleConnector struct {
	oauth *oauth2.Config
}

func NewGoogleConnector(cfg conf.GoogleConfig) *GoogleConnector {
	return &GoogleConnector{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gdrive.DriveReadonlyScope},
		},
	}
}

// Connect 先换一次 access token，授权被撤销时在这里就失败
func (g *GoogleConnector) Connect(ctx context.Context, refreshToken string) (Service, error) {
	if refreshToken == "" {
		return nil, apperr.New(apperr.ErrAuth, "missing google refresh token")
	}
	ts := g.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	if _, err := ts.Token(); err != nil {
		return nil, apperr.Wrap(apperr.ErrAuth, "google drive authorization failed", err)
	}

	svc, err := gdrive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrExternalService, "create drive client", err)
	}
	return newGoogleService(svc), nil
}

func newGoogleService(svc *gdrive.Service) *googleService {
	return &googleService{files: svc.Files}
}

// Exchange 用前端拿到的授权码换 refresh token
func (g *GoogleConnector) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := g.oauth.Exchange(ctx, code, oauth2.AccessTypeOffline)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrAuth, "exchange google authorization code", err)
	}
	if tok.RefreshToken == "" {
		return "", apperr.New(apperr.ErrAuth, "google did not return a refresh token, re-consent with access_type=offline")
	}
	return tok.RefreshToken, nil
}

type googleService struct {
	files *gdrive.FilesService
}

func (s *googleService) ListFiles(ctx context.Context, folderID string, modifiedAfter *time.Time) ([]File, error) {
	q := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folderID))
	if modifiedAfter != nil {
		q += fmt.Sprintf(" and modifiedTime > '%s'", modifiedAfter.UTC().Format(time.RFC3339))
	}

	var out []File
	err := s.files.List().
		Q(q).
		Fields(listFields).
		PageSize(100).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *gdrive.FileList) error {
			for _, f := range page.Files {
				if f.MimeType == MimeGoogleFolder {
					continue
				}
				// 时间解析失败时保留零值，由调用方决定是否同步
				mod, err := time.Parse(time.RFC3339, f.ModifiedTime)
				if err != nil {
					mod = time.Time{}
				}
				out = append(out, File{ID: f.Id, Name: f.Name, MimeType: f.MimeType, ModifiedTime: mod})
			}
			return nil
		})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrExternalService, "list drive folder", err)
	}
	return out, nil
}

func (s *googleService) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrExternalService, "download drive file", err)
	}
	defer resp.Body.Close()
	return readLimited(resp.Body)
}

func (s *googleService) Export(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	resp, err := s.files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrExternalService, "export drive file", err)
	}
	defer resp.Body.Close()
	return readLimited(resp.Body)
}

// readLimited 多读一个字节判断是否超限
func readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxDownloadBytes+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrExternalService, "read drive file", err)
	}
	if len(body) > maxDownloadBytes {
		return nil, apperr.New(apperr.ErrExternalService, "file exceeds 20MB limit")
	}
	return body, nil
}

// Drive 查询语法里单引号和反斜杠需要转义
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
