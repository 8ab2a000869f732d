package data

import (
	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"corpushub/pkg/database"
)

// Config 数据库配置别名，便于wire装配
type Config = database.Config

// Data 数据访问层
type Data struct {
	db *gorm.DB
}

// NewDB 创建数据库连接
func NewDB(c *Config, logger log.Logger) (*gorm.DB, error) {
	return database.NewDB(c, logger)
}

// NewData 创建Data实例
func NewData(db *gorm.DB, logger log.Logger) (*Data, func(), error) {
	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
	return &Data{db: db}, cleanup, nil
}
