package domain

import "context"

// CorpusRepository 语料库仓储
type CorpusRepository interface {
	Create(ctx context.Context, corpus *Corpus) error
	Update(ctx context.Context, corpus *Corpus) error
	// Delete 删除语料库并级联删除文件映射与授权（单事务）
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Corpus, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Corpus, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Corpus, error)
	// LatestByOwner 所有者最近创建的语料库，没有则返回ErrCorpusNotFound
	LatestByOwner(ctx context.Context, ownerID string) (*Corpus, error)
	// ListFriendsVisibleByOwners 指定所有者集合中visibility=friends的语料库
	ListFriendsVisibleByOwners(ctx context.Context, ownerIDs []string) ([]*Corpus, error)
	ListAll(ctx context.Context) ([]*Corpus, error)
}

// FileMappingRepository 文件映射仓储
type FileMappingRepository interface {
	// Create 插入映射并由存储层回填SurrogateID
	Create(ctx context.Context, mapping *FileMapping) error
	GetBySurrogateID(ctx context.Context, corpusID string, surrogateID int64) (*FileMapping, error)
	ListByCorpus(ctx context.Context, corpusID string) ([]*FileMapping, error)
	Delete(ctx context.Context, corpusID string, surrogateID int64) error
}

// FriendshipRepository 好友关系仓储
type FriendshipRepository interface {
	Create(ctx context.Context, friendship *Friendship) error
	Accept(ctx context.Context, userID, friendID string) error
	Get(ctx context.Context, userID, friendID string) (*Friendship, error)
	// AcceptedOwnerIDs 对viewer存在已接受的owner→viewer边的所有owner
	AcceptedOwnerIDs(ctx context.Context, viewerID string) ([]string, error)
}

// ShareGrantRepository 授权仓储
type ShareGrantRepository interface {
	Create(ctx context.Context, grant *ShareGrant) error
	Exists(ctx context.Context, corpusID, userID string) (bool, error)
	CorpusIDsForUser(ctx context.Context, userID string) ([]string, error)
}

// UserRepository 用户仓储
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
