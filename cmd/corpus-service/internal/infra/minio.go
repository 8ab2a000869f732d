package infra

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BlobStore Blob存储接口
//
// 原始上传字节以代理对象键存放，Blob存储是可由关系库重建的派生状态。
type BlobStore interface {
	// Put 写入对象，返回可交给远端导入的URI
	Put(ctx context.Context, objectName string, content []byte, contentType string) (string, error)
	// Remove 删除对象（尽力而为的清理）
	Remove(ctx context.Context, objectName string) error
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	BucketName      string `yaml:"bucket_name"`
	UseSSL          bool   `yaml:"use_ssl"`
}

// MinIOBlobStore MinIO Blob存储
type MinIOBlobStore struct {
	client     *minio.Client
	bucketName string
}

// NewMinIOBlobStore 创建MinIO Blob存储
func NewMinIOBlobStore(config *MinIOConfig) (*MinIOBlobStore, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	s := &MinIOBlobStore{
		client:     client,
		bucketName: config.BucketName,
	}

	if err := s.ensureBucket(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

var _ BlobStore = (*MinIOBlobStore)(nil)

// ensureBucket 确保bucket存在
func (s *MinIOBlobStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Put 写入对象
func (s *MinIOBlobStore) Put(ctx context.Context, objectName string, content []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	opts := minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"uploaded_at": time.Now().Format(time.RFC3339),
		},
	}

	_, err := s.client.PutObject(ctx, s.bucketName, objectName, bytes.NewReader(content), int64(len(content)), opts)
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}

	return fmt.Sprintf("minio://%s/%s", s.bucketName, objectName), nil
}

// Remove 删除对象
func (s *MinIOBlobStore) Remove(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}
