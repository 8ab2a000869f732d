package data

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"corpushub/cmd/corpus-service/internal/domain"
)

// ShareGrantPO 授权持久化对象
type ShareGrantPO struct {
	ID            string `gorm:"primaryKey;size:64"`
	CorpusID      string `gorm:"size:128;not null;uniqueIndex:idx_grant_corpus_user"`
	GrantedUserID string `gorm:"size:64;not null;uniqueIndex:idx_grant_corpus_user;index:idx_grant_user"`
	GrantedAt     time.Time
}

// TableName 表名
func (ShareGrantPO) TableName() string {
	return "corpus.share_grants"
}

// ShareGrantRepository 授权仓储实现
type ShareGrantRepository struct {
	data *Data
	log  *log.Helper
}

// NewShareGrantRepo 创建授权仓储
func NewShareGrantRepo(data *Data, logger log.Logger) domain.ShareGrantRepository {
	return &ShareGrantRepository{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Create 创建授权
func (r *ShareGrantRepository) Create(ctx context.Context, grant *domain.ShareGrant) error {
	po := &ShareGrantPO{
		ID:            grant.ID,
		CorpusID:      grant.CorpusID,
		GrantedUserID: grant.GrantedUserID,
		GrantedAt:     grant.GrantedAt,
	}

	if err := r.data.db.WithContext(ctx).Create(po).Error; err != nil {
		r.log.Errorf("failed to create share grant: %v", err)
		return err
	}
	return nil
}

// Exists 是否已存在授权
func (r *ShareGrantRepository) Exists(ctx context.Context, corpusID, userID string) (bool, error) {
	var count int64
	if err := r.data.db.WithContext(ctx).
		Model(&ShareGrantPO{}).
		Where("corpus_id = ? AND granted_user_id = ?", corpusID, userID).
		Count(&count).Error; err != nil {
		r.log.Errorf("failed to check share grant: %v", err)
		return false, err
	}
	return count > 0, nil
}

// CorpusIDsForUser 用户被授权的语料库ID集合
func (r *ShareGrantRepository) CorpusIDsForUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := r.data.db.WithContext(ctx).
		Model(&ShareGrantPO{}).
		Where("granted_user_id = ?", userID).
		Pluck("corpus_id", &ids).Error; err != nil {
		r.log.Errorf("failed to list granted corpus ids: %v", err)
		return nil, err
	}
	return ids, nil
}
