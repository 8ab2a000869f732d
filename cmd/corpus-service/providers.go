package main

import (
	"corpushub/cmd/corpus-service/internal/biz"
	"corpushub/cmd/corpus-service/internal/data"
	"corpushub/cmd/corpus-service/internal/infra"
	"corpushub/cmd/corpus-service/internal/server"
	"corpushub/pkg/cache"
)

// provideDataConfig converts main Config to data.Config
func provideDataConfig(c *Config) *data.Config {
	return &c.Data.Database
}

// provideStorageConfig converts main Config to infra.MinIOConfig
func provideStorageConfig(c *Config) *infra.MinIOConfig {
	return &infra.MinIOConfig{
		Endpoint:        c.Storage.Endpoint,
		AccessKeyID:     c.Storage.AccessKeyID,
		SecretAccessKey: c.Storage.SecretAccessKey,
		BucketName:      c.Storage.BucketName,
		UseSSL:          c.Storage.UseSSL,
	}
}

// provideCorpusClientConfig converts main Config to infra.CorpusClientConfig
func provideCorpusClientConfig(c *Config) *infra.CorpusClientConfig {
	return &infra.CorpusClientConfig{
		BaseURL: c.Remote.Corpus.BaseURL,
		APIKey:  c.Remote.Corpus.APIKey,
		Timeout: c.Remote.Corpus.Timeout,
	}
}

// provideGenerativeClientConfig converts main Config to infra.GenerativeClientConfig
func provideGenerativeClientConfig(c *Config) *infra.GenerativeClientConfig {
	return &infra.GenerativeClientConfig{
		BaseURL: c.Remote.Generative.BaseURL,
		APIKey:  c.Remote.Generative.APIKey,
		Timeout: c.Remote.Generative.Timeout,
	}
}

// provideThrottle 全局出站节流闸，两个远端客户端共享同一实例
func provideThrottle(c *Config) *infra.Throttle {
	return infra.NewThrottle(c.Remote.Throttle)
}

// provideRedisConfig converts main Config to cache.Config
func provideRedisConfig(c *Config) *cache.Config {
	return &c.Redis
}

// provideServerConfig converts main Config to server.Config
func provideServerConfig(c *Config) *server.Config {
	return &c.Server
}

// provideLifecycleConfig converts main Config to biz.LifecycleConfig
func provideLifecycleConfig(c *Config) *biz.LifecycleConfig {
	return &biz.LifecycleConfig{
		PollInterval: c.Corpus.PollInterval,
		PollTimeout:  c.Corpus.PollTimeout,
		MaxListPages: c.Corpus.MaxListPages,
		PageSize:     c.Corpus.PageSize,
	}
}

// provideDocumentConfig converts main Config to biz.DocumentConfig
func provideDocumentConfig(c *Config) *biz.DocumentConfig {
	return &biz.DocumentConfig{
		MaxFileSize:       c.Document.MaxFileSize,
		DefaultCorpusName: c.Document.DefaultCorpusName,
		ChunkMaxTokens:    c.Document.ChunkMaxTokens,
		ChunkOverlap:      c.Document.ChunkOverlap,
	}
}

// provideQueryConfig converts main Config to biz.QueryConfig
func provideQueryConfig(c *Config) *biz.QueryConfig {
	return &biz.QueryConfig{
		MaxRetries: c.Query.MaxRetries,
		RetryDelay: c.Query.RetryDelay,
		TopK:       c.Query.TopK,
	}
}
