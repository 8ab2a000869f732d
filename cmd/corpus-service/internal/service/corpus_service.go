package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"corpushub/cmd/corpus-service/internal/biz"
	"corpushub/cmd/corpus-service/internal/domain"
	pkgerrors "corpushub/pkg/errors"
)

// CreateCorpusRequest 创建语料库请求
type CreateCorpusRequest struct {
	UserID      string
	Name        string
	Description string
	Visibility  string
}

// CorpusResponse 语料库响应
type CorpusResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Visibility  string    `json:"visibility"`
	CreatedAt   time.Time `json:"created_at"`
}

// UpdateCorpusRequest 更新语料库请求
type UpdateCorpusRequest struct {
	UserID      string
	CorpusID    string
	Name        string
	Description string
	Visibility  string
}

// DeleteCorpusResponse 删除语料库响应
type DeleteCorpusResponse struct {
	LocalCleanup bool `json:"local_cleanup"`
}

// CorpusEntryResponse 枚举条目响应
type CorpusEntryResponse struct {
	RemoteID    string `json:"remote_id"`
	DisplayName string `json:"display_name"`
	OwnerID     string `json:"owner_id"` // 无主条目固定为system
	Name        string `json:"name"`
	Visibility  string `json:"visibility,omitempty"`
	Source      string `json:"source"`
}

// ListCorporaResponse 枚举响应
type ListCorporaResponse struct {
	Entries   []*CorpusEntryResponse `json:"entries"`
	StaleIDs  []string               `json:"stale_ids,omitempty"`
	Truncated bool                   `json:"truncated"`
}

// AccessibleCorpusResponse 可访问语料库条目
type AccessibleCorpusResponse struct {
	*CorpusResponse
	Reason string `json:"reason"`
}

// UploadDocumentRequest 上传文档请求
type UploadDocumentRequest struct {
	UserID   string
	CorpusID string // 可为空，回退到最近创建的语料库
	FileName string
	Content  []byte
}

// UploadDocumentResponse 上传文档响应
type UploadDocumentResponse struct {
	CorpusID        string `json:"corpus_id"`
	SurrogateID     int64  `json:"surrogate_id"`
	ObjectName      string `json:"object_name"`
	IndexingPending bool   `json:"indexing_pending"`
}

// DocumentResponse 文档条目响应
type DocumentResponse struct {
	SurrogateID int64  `json:"surrogate_id,omitempty"`
	DisplayName string `json:"display_name"`
	SizeBytes   int64  `json:"size_bytes"`
}

// QueryRequest 查询请求
type QueryRequest struct {
	UserID   string
	CorpusID string
	Question string
}

// QueryResponse 查询响应
type QueryResponse struct {
	Answer   string   `json:"answer"`
	Status   string   `json:"status"`
	Passages []string `json:"passages,omitempty"`
}

// ShareCorpusRequest 分享请求
type ShareCorpusRequest struct {
	OwnerID        string
	CorpusID       string
	TargetUsername string
}

// ShareCorpusResponse 分享响应
type ShareCorpusResponse struct {
	GrantID       string    `json:"grant_id"`
	CorpusID      string    `json:"corpus_id"`
	GrantedUserID string    `json:"granted_user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// CorpusService 语料库服务门面
//
// 服务层做两件事：请求/响应结构的转换，以及把领域哨兵错误映射为
// 带错误码的传输层错误。业务规则全部留在用例层。
type CorpusService struct {
	corpusUC *biz.CorpusUsecase
	docUC    *biz.DocumentUsecase
	queryUC  *biz.QueryUsecase
	accessUC *biz.AccessUsecase
	log      *log.Helper
}

// NewCorpusService 创建语料库服务
func NewCorpusService(
	corpusUC *biz.CorpusUsecase,
	docUC *biz.DocumentUsecase,
	queryUC *biz.QueryUsecase,
	accessUC *biz.AccessUsecase,
	logger log.Logger,
) *CorpusService {
	return &CorpusService{
		corpusUC: corpusUC,
		docUC:    docUC,
		queryUC:  queryUC,
		accessUC: accessUC,
		log:      log.NewHelper(logger),
	}
}

// CreateCorpus 创建语料库
func (s *CorpusService) CreateCorpus(ctx context.Context, req *CreateCorpusRequest) (*CorpusResponse, error) {
	corpus, err := s.corpusUC.CreateCorpus(ctx, req.UserID, req.Name, req.Description, domain.Visibility(req.Visibility))
	if err != nil {
		s.log.WithContext(ctx).Errorf("create corpus failed: %v", err)
		return nil, mapDomainError(err)
	}
	return toCorpusResponse(corpus), nil
}

// UpdateCorpus 更新语料库
func (s *CorpusService) UpdateCorpus(ctx context.Context, req *UpdateCorpusRequest) (*CorpusResponse, error) {
	corpus, err := s.corpusUC.UpdateCorpus(ctx, req.CorpusID, req.UserID, req.Name, req.Description, domain.Visibility(req.Visibility))
	if err != nil {
		return nil, mapDomainError(err)
	}
	return toCorpusResponse(corpus), nil
}

// DeleteCorpus 删除语料库
func (s *CorpusService) DeleteCorpus(ctx context.Context, userID, corpusID string) (*DeleteCorpusResponse, error) {
	result, err := s.corpusUC.DeleteCorpus(ctx, corpusID, userID)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return &DeleteCorpusResponse{LocalCleanup: result.LocalCleanup}, nil
}

// ListAllCorpora 枚举全部远端语料库（对账视图）
func (s *CorpusService) ListAllCorpora(ctx context.Context, pageSize int) (*ListCorporaResponse, error) {
	listing, err := s.corpusUC.ListCorpora(ctx, pageSize)
	if err != nil {
		s.log.WithContext(ctx).Errorf("list corpora failed: %v", err)
		return nil, mapDomainError(err)
	}

	resp := &ListCorporaResponse{
		Entries:   make([]*CorpusEntryResponse, 0, len(listing.Entries)),
		Truncated: listing.Truncated,
	}
	for _, e := range listing.Entries {
		ownerID := e.OwnerID
		if e.Source == biz.CorpusSourceUnattributed {
			ownerID = "system"
		}
		resp.Entries = append(resp.Entries, &CorpusEntryResponse{
			RemoteID:    e.RemoteID,
			DisplayName: e.DisplayName,
			OwnerID:     ownerID,
			Name:        e.Name,
			Visibility:  string(e.Visibility),
			Source:      string(e.Source),
		})
	}
	for _, c := range listing.Stale {
		resp.StaleIDs = append(resp.StaleIDs, c.ID)
	}
	return resp, nil
}

// ListAccessibleCorpora 当前用户可访问的语料库
func (s *CorpusService) ListAccessibleCorpora(ctx context.Context, userID string) ([]*AccessibleCorpusResponse, error) {
	accessible, err := s.accessUC.AccessibleCorpora(ctx, userID)
	if err != nil {
		return nil, mapDomainError(err)
	}

	resp := make([]*AccessibleCorpusResponse, 0, len(accessible))
	for _, a := range accessible {
		resp = append(resp, &AccessibleCorpusResponse{
			CorpusResponse: toCorpusResponse(a.Corpus),
			Reason:         string(a.Reason),
		})
	}
	return resp, nil
}

// UploadDocument 上传文档
func (s *CorpusService) UploadDocument(ctx context.Context, req *UploadDocumentRequest) (*UploadDocumentResponse, error) {
	result, err := s.docUC.UploadDocument(ctx, req.UserID, req.CorpusID, req.FileName, req.Content)
	if err != nil {
		s.log.WithContext(ctx).Errorf("upload document failed: %v", err)
		return nil, mapDomainError(err)
	}
	return &UploadDocumentResponse{
		CorpusID:        result.CorpusID,
		SurrogateID:     result.SurrogateID,
		ObjectName:      result.ObjectName,
		IndexingPending: result.IndexingPending,
	}, nil
}

// ListDocuments 列出语料库文档
func (s *CorpusService) ListDocuments(ctx context.Context, userID, corpusID string) ([]*DocumentResponse, error) {
	entries, err := s.docUC.ListDocuments(ctx, userID, corpusID)
	if err != nil {
		return nil, mapDomainError(err)
	}

	resp := make([]*DocumentResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, &DocumentResponse{
			SurrogateID: e.SurrogateID,
			DisplayName: e.DisplayName,
			SizeBytes:   e.SizeBytes,
		})
	}
	return resp, nil
}

// DeleteDocument 删除文档
func (s *CorpusService) DeleteDocument(ctx context.Context, userID, corpusID string, surrogateID int64) error {
	if err := s.docUC.DeleteDocument(ctx, userID, corpusID, surrogateID); err != nil {
		return mapDomainError(err)
	}
	return nil
}

// Query 检索增强查询
func (s *CorpusService) Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	result, err := s.queryUC.Query(ctx, req.UserID, req.CorpusID, req.Question)
	if err != nil {
		s.log.WithContext(ctx).Errorf("query failed: corpus=%s: %v", req.CorpusID, err)
		return nil, mapDomainError(err)
	}
	return &QueryResponse{
		Answer:   result.Answer,
		Status:   string(result.Status),
		Passages: result.Passages,
	}, nil
}

// ShareCorpus 分享语料库
func (s *CorpusService) ShareCorpus(ctx context.Context, req *ShareCorpusRequest) (*ShareCorpusResponse, error) {
	grant, err := s.accessUC.ShareCorpus(ctx, req.OwnerID, req.CorpusID, req.TargetUsername)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return &ShareCorpusResponse{
		GrantID:       grant.ID,
		CorpusID:      grant.CorpusID,
		GrantedUserID: grant.GrantedUserID,
		CreatedAt:     grant.GrantedAt,
	}, nil
}

// AddFriend 发起好友请求
func (s *CorpusService) AddFriend(ctx context.Context, userID, friendID string) error {
	if err := s.accessUC.AddFriend(ctx, userID, friendID); err != nil {
		return mapDomainError(err)
	}
	return nil
}

// AcceptFriend 接受好友请求
func (s *CorpusService) AcceptFriend(ctx context.Context, userID, fromUserID string) error {
	if err := s.accessUC.AcceptFriend(ctx, userID, fromUserID); err != nil {
		return mapDomainError(err)
	}
	return nil
}

func toCorpusResponse(c *domain.Corpus) *CorpusResponse {
	return &CorpusResponse{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		Name:        c.Name,
		Description: c.Description,
		Visibility:  string(c.Visibility),
		CreatedAt:   c.CreatedAt,
	}
}

// mapDomainError 领域哨兵错误到传输层错误码的映射
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrCorpusNotFound),
		errors.Is(err, domain.ErrFileNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrFriendshipNotFound):
		return pkgerrors.NewNotFound("NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrAccessDenied),
		errors.Is(err, domain.ErrNotOwner):
		return pkgerrors.NewAccessDenied("ACCESS_DENIED", err.Error())
	case errors.Is(err, domain.ErrAlreadyShared),
		errors.Is(err, domain.ErrFriendshipExists):
		return pkgerrors.NewConflict("CONFLICT", err.Error())
	case errors.Is(err, domain.ErrNotFriends),
		errors.Is(err, domain.ErrSelfFriendship),
		errors.Is(err, domain.ErrInvalidCorpusID),
		errors.Is(err, domain.ErrInvalidCorpusName),
		errors.Is(err, domain.ErrInvalidOwnerID),
		errors.Is(err, domain.ErrInvalidVisibility),
		errors.Is(err, domain.ErrInvalidFileName):
		return pkgerrors.NewBadRequest("BAD_REQUEST", err.Error())
	case errors.Is(err, domain.ErrRemoteQuota),
		errors.Is(err, domain.ErrRemoteNotReady):
		return pkgerrors.NewRemoteTransient("REMOTE_TRANSIENT", err.Error())
	case errors.Is(err, domain.ErrRemoteTerminal),
		errors.Is(err, domain.ErrOperationTimeout):
		return pkgerrors.NewRemoteTerminal("REMOTE_TERMINAL", err.Error())
	default:
		return pkgerrors.NewPersistence("INTERNAL", err.Error())
	}
}
