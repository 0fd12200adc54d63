package database

import (
	"fmt"
	"skillquest_backend/internal/config"
	"skillquest_backend/internal/model"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "skillquest_backend/pkg/logger"

	"go.uber.org/zap"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := open(d, logger.Warn)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	applog.Log.Info("Database connection established", zap.String("driver", cfg.Driver))

	if migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// OpenSQLite 打开 sqlite 数据库并完成迁移，测试与单机部署共用
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := open(sqlite.Open(dsn), logger.Silent)
	if err != nil {
		return nil, err
	}

	// sqlite 不支持并发写，单连接即可
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func open(d gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	return gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Student{},
		&model.QuizQuestion{},
		&model.QuizAttempt{},
		&model.Badge{},
	)
	if err != nil {
		return err
	}

	applog.Log.Info("Database migration completed")

	return seedQuizBank(db)
}

// 默认题库（如果为空则插入）
func seedQuizBank(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.QuizQuestion{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []model.QuizQuestion{
		{Week: 1, Step: 1, Position: 1, Prompt: "Which keyword declares a variable in Go?", Options: model.Options{"let", "var", "dim", "def"}, Answer: 1},
		{Week: 1, Step: 1, Position: 2, Prompt: "What is the zero value of an int?", Options: model.Options{"nil", "undefined", "0", "-1"}, Answer: 2},
		{Week: 1, Step: 1, Position: 3, Prompt: "Which symbol is the short variable declaration?", Options: model.Options{"=", ":=", "<-", "=>"}, Answer: 1},
		{Week: 1, Step: 2, Position: 1, Prompt: "Which loop keyword does Go provide?", Options: model.Options{"while", "loop", "for", "repeat"}, Answer: 2},
		{Week: 1, Step: 2, Position: 2, Prompt: "How do you exit a loop early?", Options: model.Options{"stop", "break", "exit", "return 0"}, Answer: 1},
		{Week: 2, Step: 1, Position: 1, Prompt: "What does len() return for a slice?", Options: model.Options{"its capacity", "number of elements", "byte size", "last index"}, Answer: 1},
		{Week: 2, Step: 1, Position: 2, Prompt: "Which built-in grows a slice?", Options: model.Options{"push", "add", "append", "extend"}, Answer: 2},
	}
	return db.Create(&defaults).Error
}
