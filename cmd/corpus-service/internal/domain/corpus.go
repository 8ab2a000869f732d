package domain

import (
	"time"
)

// Visibility 语料库可见性
type Visibility string

const (
	VisibilityPrivate Visibility = "private" // 仅所有者可见
	VisibilityFriends Visibility = "friends" // 已接受的好友可见
	VisibilityPublic  Visibility = "public"  // 公开
)

// IsValid 检查可见性取值
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPrivate, VisibilityFriends, VisibilityPublic:
		return true
	}
	return false
}

// Corpus 语料库聚合根
//
// ID与远端语料库标识一致，是本地记录与远端资源的连接键，创建后不可变。
type Corpus struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Visibility  Visibility
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCorpus 创建语料库记录（ID来自远端创建操作的最终结果）
func NewCorpus(id, ownerID, name, description string, visibility Visibility) *Corpus {
	now := time.Now()
	if visibility == "" {
		visibility = VisibilityPrivate
	}

	return &Corpus{
		ID:          id,
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Visibility:  visibility,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsOwnedBy 检查所有者
func (c *Corpus) IsOwnedBy(userID string) bool {
	return c.OwnerID == userID
}

// SetVisibility 设置可见性
func (c *Corpus) SetVisibility(v Visibility) error {
	if !v.IsValid() {
		return ErrInvalidVisibility
	}
	c.Visibility = v
	c.UpdatedAt = time.Now()
	return nil
}

// Update 更新语料库信息
func (c *Corpus) Update(name, description string) {
	if name != "" {
		c.Name = name
	}
	if description != "" {
		c.Description = description
	}
	c.UpdatedAt = time.Now()
}

// Validate 验证语料库
func (c *Corpus) Validate() error {
	if c.ID == "" {
		return ErrInvalidCorpusID
	}
	if c.OwnerID == "" {
		return ErrInvalidOwnerID
	}
	if c.Name == "" {
		return ErrInvalidCorpusName
	}
	if !c.Visibility.IsValid() {
		return ErrInvalidVisibility
	}
	return nil
}

// AccessReason 访问来源
type AccessReason string

const (
	AccessReasonOwner  AccessReason = "owner"  // 所有者
	AccessReasonGrant  AccessReason = "grant"  // 显式授权
	AccessReasonFriend AccessReason = "friend" // 好友可见
)

// strength 访问来源强度：owner > grant > friend
func (r AccessReason) strength() int {
	switch r {
	case AccessReasonOwner:
		return 3
	case AccessReasonGrant:
		return 2
	case AccessReasonFriend:
		return 1
	}
	return 0
}

// StrongerThan 比较访问来源强度
func (r AccessReason) StrongerThan(other AccessReason) bool {
	return r.strength() > other.strength()
}

// AccessibleCorpus 可访问的语料库及其访问来源
type AccessibleCorpus struct {
	Corpus *Corpus
	Reason AccessReason
}
