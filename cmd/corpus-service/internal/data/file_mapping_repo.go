package data

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"corpushub/cmd/corpus-service/internal/domain"
)

// FileMappingPO 文件映射持久化对象
//
// 代理ID由数据库自增生成，先于任何远端交互存在。
type FileMappingPO struct {
	SurrogateID  int64  `gorm:"primaryKey;autoIncrement"`
	CorpusID     string `gorm:"size:128;not null;index:idx_mapping_corpus"`
	OriginalName string `gorm:"size:512;not null"`
	CreatedAt    time.Time
}

// TableName 表名
func (FileMappingPO) TableName() string {
	return "corpus.file_mappings"
}

// FileMappingRepository 文件映射仓储实现
type FileMappingRepository struct {
	data *Data
	log  *log.Helper
}

// NewFileMappingRepo 创建文件映射仓储
func NewFileMappingRepo(data *Data, logger log.Logger) domain.FileMappingRepository {
	return &FileMappingRepository{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Create 插入映射，回填数据库生成的代理ID
func (r *FileMappingRepository) Create(ctx context.Context, mapping *domain.FileMapping) error {
	po := &FileMappingPO{
		CorpusID:     mapping.CorpusID,
		OriginalName: mapping.OriginalName,
		CreatedAt:    mapping.CreatedAt,
	}
	if po.CreatedAt.IsZero() {
		po.CreatedAt = time.Now()
	}

	if err := r.data.db.WithContext(ctx).Create(po).Error; err != nil {
		r.log.Errorf("failed to create file mapping: %v", err)
		return err
	}

	mapping.SurrogateID = po.SurrogateID
	mapping.CreatedAt = po.CreatedAt
	return nil
}

// GetBySurrogateID 根据代理ID获取映射
func (r *FileMappingRepository) GetBySurrogateID(ctx context.Context, corpusID string, surrogateID int64) (*domain.FileMapping, error) {
	var po FileMappingPO
	if err := r.data.db.WithContext(ctx).
		Where("corpus_id = ? AND surrogate_id = ?", corpusID, surrogateID).
		First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFileNotFound
		}
		r.log.Errorf("failed to get file mapping: %v", err)
		return nil, err
	}
	return toDomainFileMapping(&po), nil
}

// ListByCorpus 列出语料库的全部映射
func (r *FileMappingRepository) ListByCorpus(ctx context.Context, corpusID string) ([]*domain.FileMapping, error) {
	var pos []FileMappingPO
	if err := r.data.db.WithContext(ctx).
		Where("corpus_id = ?", corpusID).
		Order("surrogate_id ASC").
		Find(&pos).Error; err != nil {
		r.log.Errorf("failed to list file mappings: %v", err)
		return nil, err
	}

	mappings := make([]*domain.FileMapping, 0, len(pos))
	for i := range pos {
		mappings = append(mappings, toDomainFileMapping(&pos[i]))
	}
	return mappings, nil
}

// Delete 删除映射
func (r *FileMappingRepository) Delete(ctx context.Context, corpusID string, surrogateID int64) error {
	if err := r.data.db.WithContext(ctx).
		Delete(&FileMappingPO{}, "corpus_id = ? AND surrogate_id = ?", corpusID, surrogateID).Error; err != nil {
		r.log.Errorf("failed to delete file mapping: %v", err)
		return err
	}
	return nil
}

// toDomainFileMapping 转换为领域对象
func toDomainFileMapping(po *FileMappingPO) *domain.FileMapping {
	return &domain.FileMapping{
		CorpusID:     po.CorpusID,
		SurrogateID:  po.SurrogateID,
		OriginalName: po.OriginalName,
		CreatedAt:    po.CreatedAt,
	}
}
