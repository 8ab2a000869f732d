package data

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"corpushub/cmd/corpus-service/internal/domain"
)

// UserPO 用户持久化对象
type UserPO struct {
	ID        string `gorm:"primaryKey;size:64"`
	Username  string `gorm:"size:128;not null;uniqueIndex:idx_username"`
	CreatedAt time.Time
}

// TableName 表名
func (UserPO) TableName() string {
	return "corpus.users"
}

// UserRepository 用户仓储实现
type UserRepository struct {
	data *Data
	log  *log.Helper
}

// NewUserRepo 创建用户仓储
func NewUserRepo(data *Data, logger log.Logger) domain.UserRepository {
	return &UserRepository{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	po := &UserPO{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}

	if err := r.data.db.WithContext(ctx).Create(po).Error; err != nil {
		r.log.Errorf("failed to create user: %v", err)
		return err
	}
	return nil
}

// GetByID 根据ID获取用户
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var po UserPO
	if err := r.data.db.WithContext(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		r.log.Errorf("failed to get user: %v", err)
		return nil, err
	}
	return toDomainUser(&po), nil
}

// GetByUsername 根据用户名获取用户
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var po UserPO
	if err := r.data.db.WithContext(ctx).Where("username = ?", username).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		r.log.Errorf("failed to get user by username: %v", err)
		return nil, err
	}
	return toDomainUser(&po), nil
}

// toDomainUser 转换为领域对象
func toDomainUser(po *UserPO) *domain.User {
	return &domain.User{
		ID:        po.ID,
		Username:  po.Username,
		CreatedAt: po.CreatedAt,
	}
}
