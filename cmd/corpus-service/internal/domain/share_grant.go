package domain

import (
	"time"

	"github.com/google/uuid"
)

// ShareGrant 语料库级别的显式读授权
//
// 独立于好友关系，只授予读/查询权限，不授予写权限。
type ShareGrant struct {
	ID            string
	CorpusID      string
	GrantedUserID string
	GrantedAt     time.Time
}

// NewShareGrant 创建授权记录
func NewShareGrant(corpusID, grantedUserID string) *ShareGrant {
	return &ShareGrant{
		ID:            "grant_" + uuid.New().String(),
		CorpusID:      corpusID,
		GrantedUserID: grantedUserID,
		GrantedAt:     time.Now(),
	}
}
