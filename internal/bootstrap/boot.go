package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hanna-ai/internal/conf"
	"hanna-ai/internal/data"
	"hanna-ai/internal/drive"
	"hanna-ai/internal/handler"
	"hanna-ai/internal/identity"
	"hanna-ai/internal/knowledge"
	"hanna-ai/internal/middleware"
	"hanna-ai/internal/repository"
	"hanna-ai/internal/scheduler"
	"hanna-ai/internal/service"
	"hanna-ai/internal/utils"
)

const shutdownTimeout = 30 * time.Second

// App 组装好的服务层，serve 和 CLI 子命令共用
type App struct {
	Sync     *service.SyncService
	Handlers handler.Handlers
}

// NewApp 初始化仓储、外部客户端和服务
func NewApp(cfg *conf.Config, d *data.Data, logger *zap.Logger) (*App, error) {
	// 1. 仓储
	jobRepo := repository.NewSyncJobRepository(d.DB)
	logRepo := repository.NewSyncLogRepository(d.DB)
	cursorRepo := repository.NewCursorRepository(d.DB)
	credRepo := repository.NewCredentialRepository(d.DB)
	userRepo := repository.NewUserRepository(d.DB)

	// 2. 外部客户端
	sealer, err := utils.NewSealer(cfg.Crypto.CredentialKey)
	if err != nil {
		return nil, fmt.Errorf("crypto.credential_key: %w", err)
	}
	connector := drive.NewGoogleConnector(cfg.Google)
	kb := knowledge.NewChatbase(cfg.Chatbase)

	// 3. 服务
	credSvc := service.NewCredentialService(credRepo, sealer, connector)
	activity := service.NewActivityLog(logRepo, cfg.Sync.LogLimit)
	executor := service.NewSyncExecutor(
		cfg.Sync,
		credSvc,
		connector,
		kb,
		activity,
		service.NewCursor(cursorRepo),
		jobRepo,
		d.Locker(),
		d.Archive(),
		logger,
	)
	syncSvc := service.NewSyncService(cfg.Sync, jobRepo, activity, executor, scheduler.New(logger), logger)

	// 4. Handler
	return &App{
		Sync: syncSvc,
		Handlers: handler.Handlers{
			Sync:       handler.NewSyncHandler(syncSvc),
			Chat:       handler.NewChatHandler(service.NewChatService(kb, userRepo, cfg.Chatbase.DefaultAgentID)),
			Agent:      handler.NewAgentHandler(service.NewAgentService(kb, logger)),
			Credential: handler.NewCredentialHandler(credSvc),
			Profile:    handler.NewProfileHandler(service.NewProfileService(userRepo)),
		},
	}, nil
}

// NewRouter gin 引擎 + 中间件 + 路由
func NewRouter(cfg *conf.Config, h handler.Handlers, verifier identity.Verifier, logger *zap.Logger) *gin.Engine {
	gin.SetMode(cfg.App.Mode)
	r := gin.New()
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.Recovery(logger))

	// CORS 配置
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", middleware.TraceHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.TraceHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	handler.RegisterRoutes(r, h, middleware.Auth(verifier))
	return r
}

// Run 启动服务，ctx 结束后优雅退出
func Run(ctx context.Context, cfg *conf.Config, logger *zap.Logger) error {
	// 1. 初始化数据层
	d, cleanup, err := data.NewData(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init data layer: %w", err)
	}
	defer cleanup()

	// 2. 初始化服务层
	app, err := NewApp(cfg, d, logger)
	if err != nil {
		return err
	}
	verifier, err := identity.New(ctx, cfg.Auth)
	if err != nil {
		return fmt.Errorf("init identity verifier: %w", err)
	}

	// 3. 从库里恢复定时任务
	if _, err := app.Sync.Recover(ctx); err != nil {
		return err
	}

	// 4. HTTP Server
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           NewRouter(cfg, app.Handlers, verifier, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("hanna-ai server started", zap.String("addr", srv.Addr), zap.String("mode", cfg.App.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
		// 等正在跑的 pass 写完日志和水位线
		if err := app.Sync.Shutdown(shutdownCtx); err != nil {
			logger.Warn("sync shutdown did not finish in time", zap.Error(err))
		}
		return nil
	})
	return g.Wait()
}
