package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dynamic-qr-platform/internal/analytics"
	"dynamic-qr-platform/internal/config"
	"dynamic-qr-platform/internal/handler"
	"dynamic-qr-platform/internal/metrics"
	"dynamic-qr-platform/internal/middleware"
	"dynamic-qr-platform/internal/model"
	"dynamic-qr-platform/internal/ratelimit"
	"dynamic-qr-platform/internal/redirect"
	"dynamic-qr-platform/internal/scanlog"
	"dynamic-qr-platform/internal/shortcode"
	"dynamic-qr-platform/internal/store"
	"dynamic-qr-platform/pkg/database"
	auth "dynamic-qr-platform/pkg/jwt"
	"dynamic-qr-platform/pkg/logger"
	"dynamic-qr-platform/pkg/redis"

	_ "dynamic-qr-platform/docs"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redisClient "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Dynamic QR Codes API
// @version 1.0
// @description 动态二维码：扫码跳转、扫码记录与分析
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitLogger(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "日志初始化失败: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Logger.Sync()
	}()
	sugaredLogger := logger.Sugar

	db, err := database.Open(database.Options{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		Charset:  cfg.Database.Charset,
	}, &model.QrCode{}, &model.ScanEvent{})
	if err != nil {
		sugaredLogger.Fatalf("数据库初始化失败: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		sugaredLogger.Fatalf("获取数据库连接失败: %v", err)
	}
	defer sqlDB.Close()
	sugaredLogger.Infof("✅ 数据库连接成功 (%s)", cfg.Database.Driver)

	var rdb *redisClient.Client
	if cfg.Cache.Host != "" {
		rdb, err = redis.NewRedisClient(&redis.Options{
			Host: cfg.Cache.Host, Port: cfg.Cache.Port, Password: cfg.Cache.Password, DB: cfg.Cache.DB,
		})
		if err != nil {
			sugaredLogger.Warnf("缓存连接失败，退回进程内限流且不使用跳转缓存: %v", err)
			rdb = nil
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					sugaredLogger.Errorf("关闭 Redis 连接失败: %v", err)
				}
			}()
			sugaredLogger.Info("✅ 缓存连接成功")
		}
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	limiter := newLimiter(cfg, rdb, logger.Logger)

	qrCodes := store.NewQrCodeStore(db)
	scanEvents := store.NewScanEventStore(db)
	slugCache := store.NewSlugCache(qrCodes, rdb, 10*time.Minute, logger.Logger)

	generator := shortcode.NewGenerator(qrCodes, sugaredLogger)
	generator.Start()
	defer generator.Stop()
	sugaredLogger.Info("✅ 短码生成器已启动")

	sink := scanlog.New(scanEvents, scanlog.Options{
		QueueSize:    cfg.Scan.QueueSize,
		Workers:      cfg.Scan.Workers,
		WritesPerSec: cfg.Scan.WritesPerSec,
		WriteTimeout: cfg.Scan.WriteTimeout,
	}, m, logger.Logger)
	sink.Start()

	redirectRule := cfg.RuleFor(redirect.Route)
	resolver := redirect.NewResolver(slugCache, sink, limiter, redirect.Config{
		Limit:        redirectRule.Limit,
		Window:       redirectRule.Window,
		IPHashSecret: cfg.Scan.IPHashSecret,
	}, m, logger.Logger)

	tokenManager := auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, 0)

	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.Routes{
		Redirect:  handler.NewRedirectHandler(resolver, logger.Logger),
		QrCodes:   handler.NewQrCodeHandler(qrCodes, generator, slugCache, cfg.App.ShortLinkBaseURL, logger.Logger),
		Analytics: handler.NewAnalyticsHandler(analytics.NewService(qrCodes, scanEvents, logger.Logger), logger.Logger),
		Health:    handler.NewHealthHandler(cfg.App.Name, sqlDB, logger.Logger),
		Auth:      middleware.AuthMiddleware(tokenManager),
		RateLimit: func(route string) gin.HandlerFunc {
			return middleware.RateLimit(limiter, route, cfg.RuleFor(route), m, logger.Logger)
		},
		Logger: logger.Logger,
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		sugaredLogger.Infof("🚀 服务启动成功, 访问 http://localhost:%d", cfg.Server.Port)
		sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugaredLogger.Fatalf("服务启动失败: %v", err)
		}
	}()

	<-ctx.Done()
	sugaredLogger.Info("收到退出信号，开始关闭服务")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		sugaredLogger.Errorf("HTTP 服务关闭失败: %v", err)
	}
	// 先停止接收请求，再把队列中剩余的扫码记录写完
	if err := sink.Stop(shutdownCtx); err != nil {
		sugaredLogger.Warnf("扫码记录未写完即退出, 剩余 %d 条: %v", sink.Pending(), err)
	}
	sugaredLogger.Info("服务已关闭")
}

// newLimiter 按配置选择限流桶存储。Redis 不可用时退回进程内存储
func newLimiter(cfg *config.Config, rdb *redisClient.Client, log *zap.Logger) *ratelimit.Limiter {
	if cfg.RateLimit.Store == "redis" && rdb != nil {
		log.Info("限流使用 Redis 存储")
		return ratelimit.NewLimiter(ratelimit.NewRedisStore(rdb), log)
	}
	if cfg.RateLimit.Store == "redis" {
		log.Warn("未配置可用的 Redis，限流退回进程内存储")
	}
	mem := ratelimit.NewMemoryStore(cfg.RateLimit.MaxKeys, cfg.RateLimit.CleanupInterval)
	metrics.RegisterTrackedKeys(prometheus.DefaultRegisterer, mem.Len)
	return ratelimit.NewLimiter(mem, log)
}
