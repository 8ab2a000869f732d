package infra

import (
	"context"
	"fmt"

	"corpushub/cmd/corpus-service/internal/domain"
)

// RemoteCorpus 远端语料库资源
type RemoteCorpus struct {
	Name        string `json:"name"` // 远端资源标识（最终的语料库ID）
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// OperationHandle 远端异步操作句柄
//
// 句柄名与最终资源名不同，最终的语料库ID只能从完成的操作结果中取得。
type OperationHandle struct {
	Name string `json:"name"`
}

// Operation 远端异步操作状态
type Operation struct {
	Name   string          `json:"name"`
	Done   bool            `json:"done"`
	Error  *OperationError `json:"error,omitempty"`
	Corpus *RemoteCorpus   `json:"corpus,omitempty"` // Done且成功时携带最终资源
}

// OperationError 远端操作错误
type OperationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CreateCorpusResult 创建语料库的带标签结果：完成的资源或待轮询的操作句柄
type CreateCorpusResult struct {
	Corpus    *RemoteCorpus
	Operation *OperationHandle
}

// CorpusPage 远端语料库列表的一页
type CorpusPage struct {
	Corpora       []*RemoteCorpus `json:"corpora"`
	NextPageToken string          `json:"next_page_token"`
}

// RemoteFile 远端语料库中的文件
type RemoteFile struct {
	Name        string `json:"name"` // 远端文件标识
	DisplayName string `json:"display_name"`
	SizeBytes   int64  `json:"size_bytes"`
}

// Passage 检索到的段落
type Passage struct {
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	FileName string  `json:"file_name"`
}

// ChunkingConfig 远端导入时的分块配置
type ChunkingConfig struct {
	MaxTokens int `json:"max_tokens"`
	Overlap   int `json:"overlap"`
}

// RemoteCorpusClient 远端语料服务客户端
type RemoteCorpusClient interface {
	CreateCorpus(ctx context.Context, displayName, description string) (*CreateCorpusResult, error)
	GetOperation(ctx context.Context, name string) (*Operation, error)
	ListCorpora(ctx context.Context, pageToken string, pageSize int) (*CorpusPage, error)
	DeleteCorpus(ctx context.Context, corpusID string) error
	ListFiles(ctx context.Context, corpusID string) ([]*RemoteFile, error)
	ImportFile(ctx context.Context, corpusID, blobURI, fileName string, chunking ChunkingConfig) error
	DeleteFile(ctx context.Context, corpusID, fileName string) error
	RetrievePassages(ctx context.Context, corpusID, query string, topK int) ([]*Passage, error)
}

// GenerativeClient 远端文本生成服务客户端
type GenerativeClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// remoteError 按HTTP状态与错误码归类远端错误
//
// 429与限流码归为瞬时配额错误；语料库未就绪归为瞬时未就绪错误，
// 查询管线据此判断是否重试；其余一律视为永久错误。
func remoteError(status int, code, message string) error {
	switch {
	case status == 429 || code == "RESOURCE_EXHAUSTED":
		return fmt.Errorf("%w: %s", domain.ErrRemoteQuota, message)
	case code == "CORPUS_NOT_READY" || code == "FAILED_PRECONDITION":
		return fmt.Errorf("%w: %s", domain.ErrRemoteNotReady, message)
	case status == 404:
		return fmt.Errorf("%w: %s", domain.ErrCorpusNotFound, message)
	default:
		return fmt.Errorf("%w: status=%d code=%s message=%s", domain.ErrRemoteTerminal, status, code, message)
	}
}
