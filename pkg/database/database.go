package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options 数据库连接参数。DSN 非空时直接使用，否则按 Driver 拼接
type Options struct {
	Driver   string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Charset  string
}

// Open 按驱动打开数据库，开启错误翻译以识别唯一键冲突
func Open(opts Options, models ...interface{}) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	connection, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// 自动迁移表
	if len(models) > 0 {
		if err := connection.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}
	return connection, nil
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case "", "mysql":
		dsn := opts.DSN
		if dsn == "" {
			charset := opts.Charset
			if charset == "" {
				charset = "utf8mb4"
			}
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
				opts.User, opts.Password, opts.Host, opts.Port, opts.Name, charset)
		}
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := opts.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				opts.Host, opts.Port, opts.User, opts.Password, opts.Name)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		dsn := opts.DSN
		if dsn == "" {
			dsn = opts.Name + ".db"
		}
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("不支持的数据库驱动: %s", opts.Driver)
}
