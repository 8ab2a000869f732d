package domain

import "time"

// Friendship 好友关系（有向边，两阶段接受）
//
// visibility=friends 的语料库对 FriendID 可读，当且仅当存在
// 所有者→访问者方向且 AcceptedAt 非空的边。
type Friendship struct {
	UserID     string
	FriendID   string
	CreatedAt  time.Time
	AcceptedAt *time.Time // nil表示待接受
}

// NewFriendship 创建待接受的好友关系
func NewFriendship(userID, friendID string) *Friendship {
	return &Friendship{
		UserID:    userID,
		FriendID:  friendID,
		CreatedAt: time.Now(),
	}
}

// Accept 接受好友关系
func (f *Friendship) Accept() {
	now := time.Now()
	f.AcceptedAt = &now
}

// IsAccepted 是否已接受
func (f *Friendship) IsAccepted() bool {
	return f.AcceptedAt != nil
}
