package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPGenerativeClient 远端文本生成服务HTTP客户端
type HTTPGenerativeClient struct {
	baseURL    string
	apiKey     string
	gate       *Throttle
	httpClient *http.Client
}

// GenerativeClientConfig 生成服务客户端配置
type GenerativeClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewHTTPGenerativeClient 创建生成服务客户端
func NewHTTPGenerativeClient(config *GenerativeClientConfig, gate *Throttle) *HTTPGenerativeClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}

	return &HTTPGenerativeClient{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		gate: gate,
	}
}

var _ GenerativeClient = (*HTTPGenerativeClient)(nil)

// Generate 生成文本
func (c *HTTPGenerativeClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/text:generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		_ = json.Unmarshal(respBody, &eb)
		return "", remoteError(resp.StatusCode, eb.Code, eb.Message)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	return out.Text, nil
}
