package data

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"corpushub/cmd/corpus-service/internal/domain"
)

// CorpusPO 语料库持久化对象
type CorpusPO struct {
	ID          string `gorm:"primaryKey;size:128"`
	OwnerID     string `gorm:"size:64;not null;index:idx_owner"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Visibility  string `gorm:"size:20;not null;index:idx_visibility"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 表名
func (CorpusPO) TableName() string {
	return "corpus.corpora"
}

// CorpusRepository 语料库仓储实现
type CorpusRepository struct {
	data *Data
	log  *log.Helper
}

// NewCorpusRepo 创建语料库仓储
func NewCorpusRepo(data *Data, logger log.Logger) domain.CorpusRepository {
	return &CorpusRepository{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Create 创建语料库
func (r *CorpusRepository) Create(ctx context.Context, corpus *domain.Corpus) error {
	if err := r.data.db.WithContext(ctx).Create(toCorpusPO(corpus)).Error; err != nil {
		r.log.Errorf("failed to create corpus: %v", err)
		return err
	}
	return nil
}

// Update 更新语料库
func (r *CorpusRepository) Update(ctx context.Context, corpus *domain.Corpus) error {
	result := r.data.db.WithContext(ctx).
		Model(&CorpusPO{}).
		Where("id = ?", corpus.ID).
		Updates(toCorpusPO(corpus))
	if result.Error != nil {
		r.log.Errorf("failed to update corpus: %v", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCorpusNotFound
	}
	return nil
}

// Delete 删除语料库并级联删除文件映射与授权
func (r *CorpusRepository) Delete(ctx context.Context, id string) error {
	return r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&FileMappingPO{}, "corpus_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&ShareGrantPO{}, "corpus_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&CorpusPO{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrCorpusNotFound
		}
		return nil
	})
}

// GetByID 根据ID获取语料库
func (r *CorpusRepository) GetByID(ctx context.Context, id string) (*domain.Corpus, error) {
	var po CorpusPO
	if err := r.data.db.WithContext(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCorpusNotFound
		}
		r.log.Errorf("failed to get corpus: %v", err)
		return nil, err
	}
	return toDomainCorpus(&po), nil
}

// ListByOwner 列出所有者的语料库
func (r *CorpusRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Corpus, error) {
	var pos []CorpusPO
	if err := r.data.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&pos).Error; err != nil {
		r.log.Errorf("failed to list corpora by owner: %v", err)
		return nil, err
	}
	return toDomainCorpora(pos), nil
}

// ListByIDs 根据ID集合获取语料库
func (r *CorpusRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Corpus, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var pos []CorpusPO
	if err := r.data.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&pos).Error; err != nil {
		r.log.Errorf("failed to list corpora by ids: %v", err)
		return nil, err
	}
	return toDomainCorpora(pos), nil
}

// LatestByOwner 所有者最近创建的语料库
func (r *CorpusRepository) LatestByOwner(ctx context.Context, ownerID string) (*domain.Corpus, error) {
	var po CorpusPO
	if err := r.data.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCorpusNotFound
		}
		r.log.Errorf("failed to get latest corpus: %v", err)
		return nil, err
	}
	return toDomainCorpus(&po), nil
}

// ListFriendsVisibleByOwners 指定所有者集合中好友可见的语料库
func (r *CorpusRepository) ListFriendsVisibleByOwners(ctx context.Context, ownerIDs []string) ([]*domain.Corpus, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}

	var pos []CorpusPO
	if err := r.data.db.WithContext(ctx).
		Where("owner_id IN ? AND visibility = ?", ownerIDs, string(domain.VisibilityFriends)).
		Find(&pos).Error; err != nil {
		r.log.Errorf("failed to list friends-visible corpora: %v", err)
		return nil, err
	}
	return toDomainCorpora(pos), nil
}

// ListAll 列出全部本地语料库（对账用）
func (r *CorpusRepository) ListAll(ctx context.Context) ([]*domain.Corpus, error) {
	var pos []CorpusPO
	if err := r.data.db.WithContext(ctx).Find(&pos).Error; err != nil {
		r.log.Errorf("failed to list all corpora: %v", err)
		return nil, err
	}
	return toDomainCorpora(pos), nil
}

// toCorpusPO 转换为持久化对象
func toCorpusPO(c *domain.Corpus) *CorpusPO {
	return &CorpusPO{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		Name:        c.Name,
		Description: c.Description,
		Visibility:  string(c.Visibility),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// toDomainCorpus 转换为领域对象
func toDomainCorpus(po *CorpusPO) *domain.Corpus {
	return &domain.Corpus{
		ID:          po.ID,
		OwnerID:     po.OwnerID,
		Name:        po.Name,
		Description: po.Description,
		Visibility:  domain.Visibility(po.Visibility),
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}
}

func toDomainCorpora(pos []CorpusPO) []*domain.Corpus {
	corpora := make([]*domain.Corpus, 0, len(pos))
	for i := range pos {
		corpora = append(corpora, toDomainCorpus(&pos[i]))
	}
	return corpora
}
