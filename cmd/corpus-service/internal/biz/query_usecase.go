package biz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"corpushub/cmd/corpus-service/internal/domain"
	"corpushub/cmd/corpus-service/internal/infra"
	"corpushub/pkg/resilience"
)

// QueryConfig 查询管线配置
type QueryConfig struct {
	MaxRetries   int           // 未就绪重试次数，默认3
	RetryDelay   time.Duration // 重试间隔，默认20秒
	TopK         int           // 检索段落数，默认5
	NoInfoAnswer string        // 零命中时的固定回答
}

func (c *QueryConfig) normalize() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 20 * time.Second
	}
	if c.TopK <= 0 {
		c.TopK = 5
	}
	if c.NoInfoAnswer == "" {
		c.NoInfoAnswer = "未在该语料库中找到相关信息。"
	}
}

// QueryStatus 查询结果状态
type QueryStatus string

const (
	QueryStatusAnswered      QueryStatus = "answered"       // 基于段落生成的回答
	QueryStatusNoInformation QueryStatus = "no_information" // 零命中，固定回答
	QueryStatusDegraded      QueryStatus = "degraded"       // 检索成功但生成失败
)

// QueryResult 查询结果
type QueryResult struct {
	Answer   string
	Status   QueryStatus
	Passages []string
}

// QueryUsecase 检索增强查询用例
type QueryUsecase struct {
	access *AccessUsecase
	remote infra.RemoteCorpusClient
	gen    infra.GenerativeClient
	cfg    *QueryConfig
	log    *log.Helper
}

// NewQueryUsecase 创建查询用例
func NewQueryUsecase(
	access *AccessUsecase,
	remote infra.RemoteCorpusClient,
	gen infra.GenerativeClient,
	cfg *QueryConfig,
	logger log.Logger,
) *QueryUsecase {
	cfg.normalize()
	return &QueryUsecase{
		access: access,
		remote: remote,
		gen:    gen,
		cfg:    cfg,
		log:    log.NewHelper(log.With(logger, "module", "query")),
	}
}

// Query 在指定语料库内检索并生成回答
//
// 检索对"语料库未就绪"类错误做有限次重试（语料库可能仍在初始化），
// 其余错误类立即失败。零命中直接返回固定回答，不调用生成服务。
// 生成失败降级为只报告段落存在，不让整个查询失败。
func (uc *QueryUsecase) Query(ctx context.Context, userID, corpusID, question string) (*QueryResult, error) {
	if question == "" {
		return nil, fmt.Errorf("empty question")
	}

	// 1. 权限检查
	allowed, err := uc.access.CanAccess(ctx, userID, corpusID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrAccessDenied
	}

	// 2. 检索，未就绪时有限次重试
	var passages []*infra.Passage
	retryable := func(err error) bool {
		return errors.Is(err, domain.ErrRemoteNotReady)
	}
	err = resilience.RetryWithFixedDelay(ctx, uc.cfg.MaxRetries, uc.cfg.RetryDelay, retryable, func() error {
		var rerr error
		passages, rerr = uc.remote.RetrievePassages(ctx, corpusID, question, uc.cfg.TopK)
		return rerr
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve passages: %w", err)
	}

	// 3. 零命中：固定回答，不触发生成
	if len(passages) == 0 {
		return &QueryResult{
			Answer: uc.cfg.NoInfoAnswer,
			Status: QueryStatusNoInformation,
		}, nil
	}

	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}

	// 4. 基于段落生成回答，失败时降级
	answer, err := uc.gen.Generate(ctx, buildGroundingPrompt(texts, question))
	if err != nil {
		uc.log.WithContext(ctx).Warnf("generation failed, degrading: %v", err)
		return &QueryResult{
			Answer:   fmt.Sprintf("已找到%d条相关内容，但回答生成暂不可用。", len(passages)),
			Status:   QueryStatusDegraded,
			Passages: texts,
		}, nil
	}

	return &QueryResult{
		Answer:   answer,
		Status:   QueryStatusAnswered,
		Passages: texts,
	}, nil
}

// buildGroundingPrompt 构造基于检索段落的生成提示
func buildGroundingPrompt(passages []string, question string) string {
	var b strings.Builder
	b.WriteString("请仅根据以下资料回答问题。如果资料不足以回答，请说明无法回答。\n\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "资料%d：%s\n", i+1, p)
	}
	b.WriteString("\n问题：")
	b.WriteString(question)
	return b.String()
}
