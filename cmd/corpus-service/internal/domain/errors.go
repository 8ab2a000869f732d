package domain

import "errors"

var (
	// Corpus errors
	ErrCorpusNotFound    = errors.New("corpus not found")
	ErrInvalidCorpusID   = errors.New("invalid corpus id")
	ErrInvalidCorpusName = errors.New("invalid corpus name")
	ErrInvalidOwnerID    = errors.New("invalid owner id")
	ErrInvalidVisibility = errors.New("invalid visibility")

	// FileMapping errors
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidFileName = errors.New("invalid file name")

	// Access errors
	ErrAccessDenied  = errors.New("access denied")
	ErrNotOwner      = errors.New("requester is not the corpus owner")
	ErrAlreadyShared = errors.New("corpus already shared with user")
	ErrNotFriends    = errors.New("no accepted friendship with target user")

	// Friendship errors
	ErrFriendshipNotFound = errors.New("friendship not found")
	ErrFriendshipExists   = errors.New("friendship already exists")
	ErrSelfFriendship     = errors.New("cannot befriend self")

	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Remote service errors
	ErrRemoteNotReady   = errors.New("remote corpus not ready")       // 瞬时：语料库仍在初始化
	ErrRemoteQuota      = errors.New("remote quota exceeded")         // 瞬时：配额/限流
	ErrRemoteTerminal   = errors.New("remote request failed")         // 永久：不重试
	ErrOperationTimeout = errors.New("remote operation polling timed out")
)
