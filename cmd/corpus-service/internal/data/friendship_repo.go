package data

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"corpushub/cmd/corpus-service/internal/domain"
)

// FriendshipPO 好友关系持久化对象（有向边）
type FriendshipPO struct {
	UserID     string `gorm:"primaryKey;size:64"`
	FriendID   string `gorm:"primaryKey;size:64;index:idx_friend"`
	CreatedAt  time.Time
	AcceptedAt *time.Time
}

// TableName 表名
func (FriendshipPO) TableName() string {
	return "corpus.friendships"
}

// FriendshipRepository 好友关系仓储实现
type FriendshipRepository struct {
	data *Data
	log  *log.Helper
}

// NewFriendshipRepo 创建好友关系仓储
func NewFriendshipRepo(data *Data, logger log.Logger) domain.FriendshipRepository {
	return &FriendshipRepository{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Create 创建待接受的好友关系
func (r *FriendshipRepository) Create(ctx context.Context, friendship *domain.Friendship) error {
	po := &FriendshipPO{
		UserID:     friendship.UserID,
		FriendID:   friendship.FriendID,
		CreatedAt:  friendship.CreatedAt,
		AcceptedAt: friendship.AcceptedAt,
	}

	if err := r.data.db.WithContext(ctx).Create(po).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrFriendshipExists
		}
		r.log.Errorf("failed to create friendship: %v", err)
		return err
	}
	return nil
}

// Accept 接受好友关系
func (r *FriendshipRepository) Accept(ctx context.Context, userID, friendID string) error {
	now := time.Now()
	result := r.data.db.WithContext(ctx).
		Model(&FriendshipPO{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Update("accepted_at", &now)
	if result.Error != nil {
		r.log.Errorf("failed to accept friendship: %v", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrFriendshipNotFound
	}
	return nil
}

// Get 获取好友关系
func (r *FriendshipRepository) Get(ctx context.Context, userID, friendID string) (*domain.Friendship, error) {
	var po FriendshipPO
	if err := r.data.db.WithContext(ctx).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFriendshipNotFound
		}
		r.log.Errorf("failed to get friendship: %v", err)
		return nil, err
	}

	return &domain.Friendship{
		UserID:     po.UserID,
		FriendID:   po.FriendID,
		CreatedAt:  po.CreatedAt,
		AcceptedAt: po.AcceptedAt,
	}, nil
}

// AcceptedOwnerIDs 对viewer存在已接受owner→viewer边的所有owner
func (r *FriendshipRepository) AcceptedOwnerIDs(ctx context.Context, viewerID string) ([]string, error) {
	var ownerIDs []string
	if err := r.data.db.WithContext(ctx).
		Model(&FriendshipPO{}).
		Where("friend_id = ? AND accepted_at IS NOT NULL", viewerID).
		Pluck("user_id", &ownerIDs).Error; err != nil {
		r.log.Errorf("failed to list accepted owners: %v", err)
		return nil, err
	}
	return ownerIDs, nil
}
