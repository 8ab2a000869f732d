package biz

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"corpushub/cmd/corpus-service/internal/domain"
	"corpushub/cmd/corpus-service/internal/infra"
)

// DocumentConfig 文档上传配置
type DocumentConfig struct {
	MaxFileSize       int64  // 最大文件字节数，默认20MB
	DefaultCorpusName string // 自动建库时的语料库名
	ChunkMaxTokens    int    // 远端导入分块配置
	ChunkOverlap      int
}

func (c *DocumentConfig) normalize() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 20 * 1024 * 1024
	}
	if c.DefaultCorpusName == "" {
		c.DefaultCorpusName = "default"
	}
	if c.ChunkMaxTokens <= 0 {
		c.ChunkMaxTokens = 500
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = 0
	}
}

// DocumentUsecase 文档用例
type DocumentUsecase struct {
	corpusRepo  domain.CorpusRepository
	mappingRepo domain.FileMappingRepository
	blob        infra.BlobStore
	remote      infra.RemoteCorpusClient
	corpusUC    *CorpusUsecase
	access      *AccessUsecase
	cfg         *DocumentConfig
	log         *log.Helper
}

// NewDocumentUsecase 创建文档用例
func NewDocumentUsecase(
	corpusRepo domain.CorpusRepository,
	mappingRepo domain.FileMappingRepository,
	blob infra.BlobStore,
	remote infra.RemoteCorpusClient,
	corpusUC *CorpusUsecase,
	access *AccessUsecase,
	cfg *DocumentConfig,
	logger log.Logger,
) *DocumentUsecase {
	cfg.normalize()
	return &DocumentUsecase{
		corpusRepo:  corpusRepo,
		mappingRepo: mappingRepo,
		blob:        blob,
		remote:      remote,
		corpusUC:    corpusUC,
		access:      access,
		cfg:         cfg,
		log:         log.NewHelper(log.With(logger, "module", "document")),
	}
}

// UploadResult 上传结果
//
// IndexingPending为真表示字节已落Blob存储但远端导入提交失败：
// 已存储未索引，之后可用同一对象键重新提交导入。
type UploadResult struct {
	CorpusID        string
	SurrogateID     int64
	ObjectName      string
	IndexingPending bool
}

// UploadDocument 上传文档
//
// 顺序约束：先插映射行（取得代理ID），再写Blob，最后提交远端导入。
// 原始文件名只进本地映射表，远端与Blob存储只见代理名。
func (uc *DocumentUsecase) UploadDocument(
	ctx context.Context,
	ownerID, corpusID, originalName string,
	content []byte,
) (*UploadResult, error) {
	if originalName == "" {
		return nil, domain.ErrInvalidFileName
	}
	if int64(len(content)) > uc.cfg.MaxFileSize {
		return nil, fmt.Errorf("file size %d exceeds limit %d", len(content), uc.cfg.MaxFileSize)
	}

	// 1. 解析目标语料库；未指定时回退到最近创建的，没有则自动建库
	corpus, err := uc.resolveCorpus(ctx, ownerID, corpusID)
	if err != nil {
		return nil, err
	}

	// 2. 先插映射行，代理ID在任何远端交互前就已唯一
	mapping := &domain.FileMapping{
		CorpusID:     corpus.ID,
		OriginalName: originalName,
		CreatedAt:    time.Now(),
	}
	if err := uc.mappingRepo.Create(ctx, mapping); err != nil {
		return nil, fmt.Errorf("persist file mapping: %w", err)
	}

	// 3. 以代理名写入Blob存储
	objectName := mapping.BlobObjectName(ownerID)
	contentType := mime.TypeByExtension(filepath.Ext(originalName))
	blobURI, err := uc.blob.Put(ctx, objectName, content, contentType)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	// 4. 提交异步导入。失败不回滚前两步：已存储未索引，可重新提交
	chunking := infra.ChunkingConfig{
		MaxTokens: uc.cfg.ChunkMaxTokens,
		Overlap:   uc.cfg.ChunkOverlap,
	}
	if err := uc.remote.ImportFile(ctx, corpus.ID, blobURI, mapping.SurrogateFileName(), chunking); err != nil {
		uc.log.WithContext(ctx).Warnf("import pending for %s/%d: %v", corpus.ID, mapping.SurrogateID, err)
		return &UploadResult{
			CorpusID:        corpus.ID,
			SurrogateID:     mapping.SurrogateID,
			ObjectName:      objectName,
			IndexingPending: true,
		}, nil
	}

	return &UploadResult{
		CorpusID:    corpus.ID,
		SurrogateID: mapping.SurrogateID,
		ObjectName:  objectName,
	}, nil
}

// resolveCorpus 解析上传目标语料库
func (uc *DocumentUsecase) resolveCorpus(ctx context.Context, ownerID, corpusID string) (*domain.Corpus, error) {
	if corpusID != "" {
		corpus, err := uc.corpusRepo.GetByID(ctx, corpusID)
		if err != nil {
			return nil, err
		}
		// 授权从不授予写权限，上传只对所有者开放
		if !corpus.IsOwnedBy(ownerID) {
			return nil, domain.ErrNotOwner
		}
		return corpus, nil
	}

	corpus, err := uc.corpusRepo.LatestByOwner(ctx, ownerID)
	if err == nil {
		return corpus, nil
	}
	if !errors.Is(err, domain.ErrCorpusNotFound) {
		return nil, err
	}

	return uc.corpusUC.CreateCorpus(ctx, ownerID, uc.cfg.DefaultCorpusName, "", domain.VisibilityPrivate)
}

// DocumentEntry 文档列表条目
type DocumentEntry struct {
	SurrogateID int64  // 无映射时为0
	DisplayName string // 有映射时为原始文件名，否则为代理名
	RemoteName  string
	SizeBytes   int64
}

// ListDocuments 列出语料库文档
//
// 远端条目的显示名替换为本地映射中的原始文件名；没有映射的条目
// 退回代理名本身。
func (uc *DocumentUsecase) ListDocuments(ctx context.Context, userID, corpusID string) ([]*DocumentEntry, error) {
	allowed, err := uc.access.CanAccess(ctx, userID, corpusID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrAccessDenied
	}

	files, err := uc.remote.ListFiles(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("remote list files: %w", err)
	}

	entries := make([]*DocumentEntry, 0, len(files))
	for _, f := range files {
		entry := &DocumentEntry{
			RemoteName: f.Name,
			SizeBytes:  f.SizeBytes,
		}

		surrogateName := f.DisplayName
		if surrogateName == "" {
			surrogateName = f.Name
		}
		entry.DisplayName = surrogateName

		if id, ok := domain.ParseSurrogateID(surrogateName); ok {
			entry.SurrogateID = id
			if mapping, err := uc.mappingRepo.GetBySurrogateID(ctx, corpusID, id); err == nil {
				entry.DisplayName = mapping.OriginalName
			}
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

// DeleteDocument 删除文档（仅所有者）
//
// 以远端删除为准，本地映射清理尽力而为。
func (uc *DocumentUsecase) DeleteDocument(ctx context.Context, userID, corpusID string, surrogateID int64) error {
	corpus, err := uc.corpusRepo.GetByID(ctx, corpusID)
	if err != nil {
		return err
	}
	if !corpus.IsOwnedBy(userID) {
		return domain.ErrNotOwner
	}

	fileName, err := uc.remoteFileName(ctx, corpusID, surrogateID)
	if err != nil {
		return err
	}

	if err := uc.remote.DeleteFile(ctx, corpusID, fileName); err != nil {
		return fmt.Errorf("remote delete file: %w", err)
	}

	if err := uc.mappingRepo.Delete(ctx, corpusID, surrogateID); err != nil {
		uc.log.WithContext(ctx).Warnf("mapping cleanup failed for %s/%d: %v", corpusID, surrogateID, err)
	}
	return nil
}

// remoteFileName 还原远端文件名：优先取映射，映射缺失时查远端列表
func (uc *DocumentUsecase) remoteFileName(ctx context.Context, corpusID string, surrogateID int64) (string, error) {
	mapping, err := uc.mappingRepo.GetBySurrogateID(ctx, corpusID, surrogateID)
	if err == nil {
		return mapping.SurrogateFileName(), nil
	}
	if !errors.Is(err, domain.ErrFileNotFound) {
		return "", err
	}

	files, err := uc.remote.ListFiles(ctx, corpusID)
	if err != nil {
		return "", fmt.Errorf("remote list files: %w", err)
	}
	for _, f := range files {
		name := f.DisplayName
		if name == "" {
			name = f.Name
		}
		if id, ok := domain.ParseSurrogateID(name); ok && id == surrogateID {
			return name, nil
		}
	}
	return "", domain.ErrFileNotFound
}
