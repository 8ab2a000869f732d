package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPCorpusClient 远端语料服务HTTP客户端
//
// 所有请求先经过节流门再发出。
type HTTPCorpusClient struct {
	baseURL    string
	apiKey     string
	gate       *Throttle
	httpClient *http.Client
}

// CorpusClientConfig 语料服务客户端配置
type CorpusClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewHTTPCorpusClient 创建语料服务客户端
func NewHTTPCorpusClient(config *CorpusClientConfig, gate *Throttle) *HTTPCorpusClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &HTTPCorpusClient{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		gate:    gate,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ RemoteCorpusClient = (*HTTPCorpusClient)(nil)

// createCorpusResponse 创建响应：resource与operation二选一
type createCorpusResponse struct {
	Corpus    *RemoteCorpus    `json:"corpus,omitempty"`
	Operation *OperationHandle `json:"operation,omitempty"`
}

// CreateCorpus 创建语料库
func (c *HTTPCorpusClient) CreateCorpus(ctx context.Context, displayName, description string) (*CreateCorpusResult, error) {
	body := map[string]string{
		"display_name": displayName,
		"description":  description,
	}

	var resp createCorpusResponse
	if err := c.do(ctx, "POST", "/v1/corpora", body, &resp); err != nil {
		return nil, err
	}

	if resp.Corpus == nil && resp.Operation == nil {
		return nil, fmt.Errorf("create corpus: response carries neither corpus nor operation")
	}

	return &CreateCorpusResult{
		Corpus:    resp.Corpus,
		Operation: resp.Operation,
	}, nil
}

// GetOperation 查询异步操作状态
func (c *HTTPCorpusClient) GetOperation(ctx context.Context, name string) (*Operation, error) {
	var op Operation
	if err := c.do(ctx, "GET", "/v1/operations/"+url.PathEscape(name), nil, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// ListCorpora 分页列出语料库
func (c *HTTPCorpusClient) ListCorpora(ctx context.Context, pageToken string, pageSize int) (*CorpusPage, error) {
	path := fmt.Sprintf("/v1/corpora?page_size=%d", pageSize)
	if pageToken != "" {
		path += "&page_token=" + url.QueryEscape(pageToken)
	}

	var page CorpusPage
	if err := c.do(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// DeleteCorpus 删除语料库
func (c *HTTPCorpusClient) DeleteCorpus(ctx context.Context, corpusID string) error {
	return c.do(ctx, "DELETE", "/v1/corpora/"+url.PathEscape(corpusID), nil, nil)
}

// ListFiles 列出语料库文件
func (c *HTTPCorpusClient) ListFiles(ctx context.Context, corpusID string) ([]*RemoteFile, error) {
	var resp struct {
		Files []*RemoteFile `json:"files"`
	}
	if err := c.do(ctx, "GET", "/v1/corpora/"+url.PathEscape(corpusID)+"/files", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// ImportFile 异步导入Blob中的文件
func (c *HTTPCorpusClient) ImportFile(ctx context.Context, corpusID, blobURI, fileName string, chunking ChunkingConfig) error {
	body := map[string]interface{}{
		"blob_uri":     blobURI,
		"display_name": fileName,
		"chunking":     chunking,
	}
	return c.do(ctx, "POST", "/v1/corpora/"+url.PathEscape(corpusID)+"/files:import", body, nil)
}

// DeleteFile 删除语料库文件
func (c *HTTPCorpusClient) DeleteFile(ctx context.Context, corpusID, fileName string) error {
	path := "/v1/corpora/" + url.PathEscape(corpusID) + "/files/" + url.PathEscape(fileName)
	return c.do(ctx, "DELETE", path, nil, nil)
}

// RetrievePassages 在指定语料库内检索相关段落
func (c *HTTPCorpusClient) RetrievePassages(ctx context.Context, corpusID, query string, topK int) ([]*Passage, error) {
	body := map[string]interface{}{
		"query": query,
		"top_k": topK,
	}

	var resp struct {
		Passages []*Passage `json:"passages"`
	}
	if err := c.do(ctx, "POST", "/v1/corpora/"+url.PathEscape(corpusID)+":retrieve", body, &resp); err != nil {
		return nil, err
	}
	return resp.Passages, nil
}

// errorBody 远端错误响应体
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do 发送请求并解析响应
func (c *HTTPCorpusClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	// 节流：进程内出站调用统一排队
	if err := c.gate.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(respBody, &eb)
		return remoteError(resp.StatusCode, eb.Code, eb.Message)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
