package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger
)

// Options 日志参数
type Options struct {
	Level      string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

// InitLogger 初始化 zap 日志记录器，同时输出到控制台和滚动文件
func InitLogger(opts Options) error {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	core := zapcore.NewCore(getEncoder(), getLogWriter(opts), level)
	Logger = zap.New(core, zap.AddCaller())
	Sugar = Logger.Sugar()

	// 将全局的 zap logger 替换为我们配置好的 logger
	zap.ReplaceGlobals(Logger)
	return nil
}

// getEncoder 控制台格式，ISO8601 时间，大写带颜色的级别
func getEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// getLogWriter 文件路径为空时只写控制台
func getLogWriter(opts Options) zapcore.WriteSyncer {
	stdout := zapcore.AddSync(os.Stdout)
	if opts.File == "" {
		return stdout
	}

	// 使用 lumberjack 实现日志切割和归档
	lumberJackLogger := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSize,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAge,
		Compress:   false,
	}
	return zapcore.NewMultiWriteSyncer(stdout, zapcore.AddSync(lumberJackLogger))
}
