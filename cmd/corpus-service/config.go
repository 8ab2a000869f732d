package main

import (
	"time"

	"corpushub/cmd/corpus-service/internal/data"
	"corpushub/cmd/corpus-service/internal/server"
	"corpushub/pkg/cache"
)

// Config is application config.
type Config struct {
	Server   server.Config `yaml:"server"`
	Data     DataConf      `yaml:"data"`
	Storage  StorageConf   `yaml:"storage"`
	Remote   RemoteConf    `yaml:"remote"`
	Redis    cache.Config  `yaml:"redis"`
	Corpus   LifecycleConf `yaml:"corpus"`
	Document DocumentConf  `yaml:"document"`
	Query    QueryConf     `yaml:"query"`
}

// DataConf is data config.
type DataConf struct {
	Database data.Config `yaml:"database"`
}

// StorageConf is storage config (MinIO).
type StorageConf struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	BucketName      string `yaml:"bucket_name"`
	UseSSL          bool   `yaml:"use_ssl"`
}

// RemoteConf is outbound remote service clients config.
type RemoteConf struct {
	Corpus     ClientConf    `yaml:"corpus"`
	Generative ClientConf    `yaml:"generative"`
	Throttle   time.Duration `yaml:"throttle"` // 全局出站最小间隔
}

type ClientConf struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// LifecycleConf is corpus lifecycle config.
type LifecycleConf struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	PollTimeout  time.Duration `yaml:"poll_timeout"`
	MaxListPages int           `yaml:"max_list_pages"`
	PageSize     int           `yaml:"page_size"`
}

// DocumentConf is document upload config.
type DocumentConf struct {
	MaxFileSize       int64  `yaml:"max_file_size"`
	DefaultCorpusName string `yaml:"default_corpus_name"`
	ChunkMaxTokens    int    `yaml:"chunk_max_tokens"`
	ChunkOverlap      int    `yaml:"chunk_overlap"`
}

// QueryConf is query pipeline config.
type QueryConf struct {
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	TopK       int           `yaml:"top_k"`
}
