// Package app 负责应用装配：配置、日志、指标、存储、调度器与 HTTP 引擎.
package app

import (
	contextPkg "context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/filevault/pkg/api"
	appcache "github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/configs"
	ctxPkg "github.com/yeisme/filevault/pkg/context"
	"github.com/yeisme/filevault/pkg/internal/jobs"
	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/metrics"
	"github.com/yeisme/filevault/pkg/middleware"
	"github.com/yeisme/filevault/pkg/scheduler"
)

const shutdownTimeout = 15 * time.Second

// App 聚合 HTTP 引擎与后台组件.
type App struct {
	Engine  *gin.Engine
	config  *configs.AppConfig
	manager *storage.Manager
	sched   *scheduler.Scheduler
}

// NewApp 按配置装配应用.初始化失败直接退出进程.
func NewApp(configPath string) *App {
	ctx := contextPkg.Background()

	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	config := configs.GetConfig()

	if !config.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	if err := manager.GetDBClient().Migrate(); err != nil {
		fmt.Printf("Error migrating database: %v\n", err)
		os.Exit(1)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.PrometheusMiddleware(),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.Breaker),
		middleware.AuthMiddleware(config.Auth),
		middleware.RoleMiddleware(),
		middleware.StorageMiddleware(manager),
	)

	if kvClient := manager.GetKVClient(); kvClient != nil {
		cacheCfg := middleware.DefaultCacheConfig(appcache.NewCache(kvClient))
		// 下载流与运维面不走响应缓存
		cacheCfg.Skipper = func(c *gin.Context) bool {
			p := c.Request.URL.Path
			return strings.Contains(p, "/download") ||
				strings.Contains(p, "/health") ||
				strings.Contains(p, "/scheduler")
		}
		engine.Use(middleware.CacheMiddleware(cacheCfg))
	}

	app := &App{
		Engine:  engine,
		config:  config,
		manager: manager,
	}

	// 调度器可整体关闭，关闭后管理接口返回 503
	if config.Scheduler.Enabled {
		sched, err := scheduler.NewScheduler(ctxPkg.WithStorageManager(contextPkg.Background(), manager))
		if err != nil {
			fmt.Printf("Error creating scheduler: %v\n", err)
			os.Exit(1)
		}

		runner, err := jobs.NewRunner(sched, manager)
		if err != nil {
			fmt.Printf("Error registering jobs: %v\n", err)
			os.Exit(1)
		}

		sched.Start()

		app.sched = sched

		engine.Use(middleware.SchedulerMiddleware(runner))
	}

	api.RegisterGroup(engine)

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	return app
}

// Run 启动 HTTP 服务并阻塞到收到退出信号，退出时优雅关闭各组件.
func (a *App) Run() error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Logger().Info().Str("addr", srv.Addr).Msg("http server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Logger().Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := contextPkg.WithTimeout(contextPkg.Background(), shutdownTimeout)
	defer cancel()

	if a.sched != nil {
		if err := a.sched.Shutdown(); err != nil {
			log.Logger().Warn().Err(err).Msg("scheduler shutdown failed")
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	if err := a.manager.Close(); err != nil {
		log.Logger().Warn().Err(err).Msg("storage close failed")
	}

	return nil
}
