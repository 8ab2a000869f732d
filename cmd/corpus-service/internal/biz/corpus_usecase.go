package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"corpushub/cmd/corpus-service/internal/domain"
	"corpushub/cmd/corpus-service/internal/infra"
)

// LifecycleConfig 语料库生命周期配置
type LifecycleConfig struct {
	PollInterval time.Duration // 异步操作轮询间隔，默认12秒
	PollTimeout  time.Duration // 轮询上限，默认5分钟
	MaxListPages int           // 远端枚举页数上限，默认10
	PageSize     int           // 远端枚举页大小，默认100
}

func (c *LifecycleConfig) normalize() {
	if c.PollInterval <= 0 {
		c.PollInterval = 12 * time.Second
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 5 * time.Minute
	}
	if c.MaxListPages <= 0 {
		c.MaxListPages = 10
	}
	if c.PageSize <= 0 {
		c.PageSize = 100
	}
}

// CorpusUsecase 语料库生命周期用例
type CorpusUsecase struct {
	repo       domain.CorpusRepository
	remote     infra.RemoteCorpusClient
	attributor *OwnerAttributor
	cfg        *LifecycleConfig
	log        *log.Helper
}

// NewCorpusUsecase 创建语料库用例
func NewCorpusUsecase(
	repo domain.CorpusRepository,
	remote infra.RemoteCorpusClient,
	cfg *LifecycleConfig,
	logger log.Logger,
) *CorpusUsecase {
	cfg.normalize()
	return &CorpusUsecase{
		repo:       repo,
		remote:     remote,
		attributor: NewOwnerAttributor(),
		cfg:        cfg,
		log:        log.NewHelper(log.With(logger, "module", "corpus")),
	}
}

// CreateCorpus 创建语料库
//
// 远端创建可能同步返回资源，也可能返回操作句柄；后者按固定间隔轮询
// 直到完成或超时。最终的语料库ID只取自完成的操作结果。远端创建成功
// 后本地持久化失败会留下远端孤儿资源，记录日志等待人工对账，不回滚。
func (uc *CorpusUsecase) CreateCorpus(
	ctx context.Context,
	ownerID, name, description string,
	visibility domain.Visibility,
) (*domain.Corpus, error) {
	if name == "" {
		return nil, domain.ErrInvalidCorpusName
	}
	if ownerID == "" {
		return nil, domain.ErrInvalidOwnerID
	}
	if visibility == "" {
		visibility = domain.VisibilityPrivate
	}
	if !visibility.IsValid() {
		return nil, domain.ErrInvalidVisibility
	}

	// 显示名编码所有者，作为对账的兜底归因路径
	displayName := EncodeCorpusDisplayName(ownerID, name)

	result, err := uc.remote.CreateCorpus(ctx, displayName, description)
	if err != nil {
		return nil, fmt.Errorf("remote create corpus: %w", err)
	}

	remoteCorpus := result.Corpus
	if remoteCorpus == nil {
		remoteCorpus, err = uc.waitOperation(ctx, result.Operation.Name)
		if err != nil {
			return nil, err
		}
	}

	corpus := domain.NewCorpus(remoteCorpus.Name, ownerID, name, description, visibility)
	if err := corpus.Validate(); err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, corpus); err != nil {
		// 远端资源已存在，本地记录缺失：孤儿资源，留待对账
		uc.log.WithContext(ctx).Errorf("orphaned remote corpus %s (owner=%s): local persist failed: %v",
			corpus.ID, ownerID, err)
		return nil, fmt.Errorf("persist corpus record: %w", err)
	}

	uc.log.WithContext(ctx).Infof("corpus created: id=%s owner=%s", corpus.ID, ownerID)
	return corpus, nil
}

// waitOperation 轮询异步操作直到完成或超时
//
// 轮询过程中的网络错误视为瞬时问题继续轮询，只有超过时间上限才终止。
func (uc *CorpusUsecase) waitOperation(ctx context.Context, name string) (*infra.RemoteCorpus, error) {
	deadline := time.Now().Add(uc.cfg.PollTimeout)

	for {
		op, err := uc.remote.GetOperation(ctx, name)
		if err != nil {
			uc.log.WithContext(ctx).Warnf("poll operation %s: %v", name, err)
		} else if op.Done {
			if op.Error != nil {
				return nil, fmt.Errorf("%w: operation failed: code=%d message=%s",
					domain.ErrRemoteTerminal, op.Error.Code, op.Error.Message)
			}
			if op.Corpus == nil {
				return nil, fmt.Errorf("%w: operation done without resource", domain.ErrRemoteTerminal)
			}
			return op.Corpus, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: operation=%s", domain.ErrOperationTimeout, name)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(uc.cfg.PollInterval):
		}
	}
}

// CorpusEntrySource 列表条目的归属来源
type CorpusEntrySource string

const (
	CorpusSourceLocal        CorpusEntrySource = "local"        // 本地记录
	CorpusSourceRecovered    CorpusEntrySource = "recovered"    // 从命名约定恢复
	CorpusSourceUnattributed CorpusEntrySource = "unattributed" // 无主（system）
)

// CorpusEntry 对账后的语料库条目
type CorpusEntry struct {
	RemoteID    string
	DisplayName string
	OwnerID     string // 无主时为空
	Name        string
	Visibility  domain.Visibility // 仅本地记录携带
	Source      CorpusEntrySource
}

// CorpusListing 语料库枚举结果
//
// Truncated为真表示触达页数上限、远端仍有未枚举的页；Stale是远端已
// 不存在但本地仍有记录的语料库，留给调用方处理。
type CorpusListing struct {
	Entries   []*CorpusEntry
	Stale     []*domain.Corpus
	Truncated bool
}

// ListCorpora 枚举全部远端语料库并与本地记录对账
func (uc *CorpusUsecase) ListCorpora(ctx context.Context, pageSizeHint int) (*CorpusListing, error) {
	pageSize := pageSizeHint
	if pageSize <= 0 {
		pageSize = uc.cfg.PageSize
	}

	// 1. 按续页令牌翻页，页数设硬上限以约束尾延迟
	var remotes []*infra.RemoteCorpus
	truncated := false
	pageToken := ""

	for page := 0; ; page++ {
		if page >= uc.cfg.MaxListPages {
			truncated = true
			break
		}

		p, err := uc.remote.ListCorpora(ctx, pageToken, pageSize)
		if err != nil {
			return nil, fmt.Errorf("remote list corpora: %w", err)
		}

		remotes = append(remotes, p.Corpora...)
		if p.NextPageToken == "" {
			break
		}
		pageToken = p.NextPageToken
	}

	// 2. 与本地记录合并
	locals, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list local corpora: %w", err)
	}

	localByID := make(map[string]*domain.Corpus, len(locals))
	for _, c := range locals {
		localByID[c.ID] = c
	}

	seen := make(map[string]bool, len(remotes))
	entries := make([]*CorpusEntry, 0, len(remotes))

	for _, rc := range remotes {
		seen[rc.Name] = true

		if local, ok := localByID[rc.Name]; ok {
			entries = append(entries, &CorpusEntry{
				RemoteID:    rc.Name,
				DisplayName: rc.DisplayName,
				OwnerID:     local.OwnerID,
				Name:        local.Name,
				Visibility:  local.Visibility,
				Source:      CorpusSourceLocal,
			})
			continue
		}

		// 3. 本地缺失：尝试从命名约定恢复所有者
		if attr := uc.attributor.Attribute(rc.DisplayName, rc.Description); attr != nil {
			entries = append(entries, &CorpusEntry{
				RemoteID:    rc.Name,
				DisplayName: rc.DisplayName,
				OwnerID:     attr.OwnerID,
				Name:        attr.Name,
				Source:      CorpusSourceRecovered,
			})
			continue
		}

		entries = append(entries, &CorpusEntry{
			RemoteID:    rc.Name,
			DisplayName: rc.DisplayName,
			Name:        rc.DisplayName,
			Source:      CorpusSourceUnattributed,
		})
	}

	// 4. 远端消失的本地记录。截断时无法证明缺失，不标记
	var stale []*domain.Corpus
	if !truncated {
		for _, c := range locals {
			if !seen[c.ID] {
				stale = append(stale, c)
			}
		}
	}

	return &CorpusListing{
		Entries:   entries,
		Stale:     stale,
		Truncated: truncated,
	}, nil
}

// DeleteResult 删除结果
//
// LocalCleanup为假表示远端已删除但本地清理失败，留待下次枚举对账。
type DeleteResult struct {
	LocalCleanup bool
}

// DeleteCorpus 删除语料库（仅所有者，先远端后本地）
func (uc *CorpusUsecase) DeleteCorpus(ctx context.Context, corpusID, requesterID string) (*DeleteResult, error) {
	corpus, err := uc.repo.GetByID(ctx, corpusID)
	if err != nil {
		return nil, err
	}

	// 所有权以本地表为准，远端没有用户概念
	if !corpus.IsOwnedBy(requesterID) {
		return nil, domain.ErrNotOwner
	}

	if err := uc.remote.DeleteCorpus(ctx, corpusID); err != nil {
		return nil, fmt.Errorf("remote delete corpus: %w", err)
	}

	if err := uc.repo.Delete(ctx, corpusID); err != nil {
		uc.log.WithContext(ctx).Errorf("stale local corpus %s: remote deleted but local cleanup failed: %v",
			corpusID, err)
		return &DeleteResult{LocalCleanup: false}, nil
	}

	return &DeleteResult{LocalCleanup: true}, nil
}

// UpdateCorpus 更新语料库信息与可见性（仅所有者）
func (uc *CorpusUsecase) UpdateCorpus(
	ctx context.Context,
	corpusID, requesterID, name, description string,
	visibility domain.Visibility,
) (*domain.Corpus, error) {
	corpus, err := uc.repo.GetByID(ctx, corpusID)
	if err != nil {
		return nil, err
	}
	if !corpus.IsOwnedBy(requesterID) {
		return nil, domain.ErrNotOwner
	}

	corpus.Update(name, description)
	if visibility != "" {
		if err := corpus.SetVisibility(visibility); err != nil {
			return nil, err
		}
	}

	if err := uc.repo.Update(ctx, corpus); err != nil {
		return nil, fmt.Errorf("update corpus record: %w", err)
	}
	return corpus, nil
}
