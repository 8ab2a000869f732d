package domain

import "time"

// User 用户（仅保留解析分享目标所需的最小字段，认证在上游完成）
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}
