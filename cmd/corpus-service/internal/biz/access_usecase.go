package biz

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"corpushub/cmd/corpus-service/internal/domain"
)

// AccessUsecase 访问控制用例
//
// 分享状态（好友接受、新授权）在请求之外变化，必须即时生效，因此每次
// 调用都重新读取最新的关系数据，不做缓存。
type AccessUsecase struct {
	corpusRepo domain.CorpusRepository
	friendRepo domain.FriendshipRepository
	grantRepo  domain.ShareGrantRepository
	userRepo   domain.UserRepository
	log        *log.Helper
}

// NewAccessUsecase 创建访问控制用例
func NewAccessUsecase(
	corpusRepo domain.CorpusRepository,
	friendRepo domain.FriendshipRepository,
	grantRepo domain.ShareGrantRepository,
	userRepo domain.UserRepository,
	logger log.Logger,
) *AccessUsecase {
	return &AccessUsecase{
		corpusRepo: corpusRepo,
		friendRepo: friendRepo,
		grantRepo:  grantRepo,
		userRepo:   userRepo,
		log:        log.NewHelper(log.With(logger, "module", "access")),
	}
}

// CanAccess 用户是否可以读取语料库
//
// 满足任一条件即可：所有者；visibility=friends且存在已接受的
// 所有者→用户好友边；存在显式授权。public语料库任何人可读。
func (uc *AccessUsecase) CanAccess(ctx context.Context, userID, corpusID string) (bool, error) {
	corpus, err := uc.corpusRepo.GetByID(ctx, corpusID)
	if err != nil {
		return false, err
	}

	if corpus.IsOwnedBy(userID) {
		return true, nil
	}

	if corpus.Visibility == domain.VisibilityPublic {
		return true, nil
	}

	if corpus.Visibility == domain.VisibilityFriends {
		friendship, err := uc.friendRepo.Get(ctx, corpus.OwnerID, userID)
		if err == nil && friendship.IsAccepted() {
			return true, nil
		}
		if err != nil && !errors.Is(err, domain.ErrFriendshipNotFound) {
			return false, err
		}
	}

	granted, err := uc.grantRepo.Exists(ctx, corpusID, userID)
	if err != nil {
		return false, err
	}
	return granted, nil
}

// ShareCorpus 将语料库分享给指定用户名的用户
//
// 分享以好友关系为前提，授权本身记录为无条件的读权限。重复分享返回
// 错误而不是静默成功，让调用方察觉误操作。
func (uc *AccessUsecase) ShareCorpus(ctx context.Context, ownerID, corpusID, targetUsername string) (*domain.ShareGrant, error) {
	corpus, err := uc.corpusRepo.GetByID(ctx, corpusID)
	if err != nil {
		return nil, err
	}
	if !corpus.IsOwnedBy(ownerID) {
		return nil, domain.ErrNotOwner
	}

	target, err := uc.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == ownerID {
		return nil, fmt.Errorf("%w: cannot share with self", domain.ErrAlreadyShared)
	}

	friendship, err := uc.friendRepo.Get(ctx, ownerID, target.ID)
	if err != nil {
		if errors.Is(err, domain.ErrFriendshipNotFound) {
			return nil, domain.ErrNotFriends
		}
		return nil, err
	}
	if !friendship.IsAccepted() {
		return nil, domain.ErrNotFriends
	}

	exists, err := uc.grantRepo.Exists(ctx, corpusID, target.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrAlreadyShared
	}

	grant := domain.NewShareGrant(corpusID, target.ID)
	if err := uc.grantRepo.Create(ctx, grant); err != nil {
		return nil, fmt.Errorf("persist share grant: %w", err)
	}

	uc.log.WithContext(ctx).Infof("corpus %s shared: owner=%s target=%s", corpusID, ownerID, target.ID)
	return grant, nil
}

// AccessibleCorpora 用户可访问的语料库集合
//
// 自有、好友可见、显式授权三路合并，按语料库ID去重，保留最强的
// 访问来源：owner > grant > friend。
func (uc *AccessUsecase) AccessibleCorpora(ctx context.Context, userID string) ([]*domain.AccessibleCorpus, error) {
	byID := make(map[string]*domain.AccessibleCorpus)
	var order []string

	add := func(corpus *domain.Corpus, reason domain.AccessReason) {
		if existing, ok := byID[corpus.ID]; ok {
			if reason.StrongerThan(existing.Reason) {
				existing.Reason = reason
			}
			return
		}
		byID[corpus.ID] = &domain.AccessibleCorpus{Corpus: corpus, Reason: reason}
		order = append(order, corpus.ID)
	}

	owned, err := uc.corpusRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned corpora: %w", err)
	}
	for _, c := range owned {
		add(c, domain.AccessReasonOwner)
	}

	grantedIDs, err := uc.grantRepo.CorpusIDsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list granted corpus ids: %w", err)
	}
	granted, err := uc.corpusRepo.ListByIDs(ctx, grantedIDs)
	if err != nil {
		return nil, fmt.Errorf("list granted corpora: %w", err)
	}
	for _, c := range granted {
		add(c, domain.AccessReasonGrant)
	}

	ownerIDs, err := uc.friendRepo.AcceptedOwnerIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accepted owners: %w", err)
	}
	friendVisible, err := uc.corpusRepo.ListFriendsVisibleByOwners(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("list friends-visible corpora: %w", err)
	}
	for _, c := range friendVisible {
		add(c, domain.AccessReasonFriend)
	}

	result := make([]*domain.AccessibleCorpus, 0, len(order))
	for _, id := range order {
		result = append(result, byID[id])
	}
	return result, nil
}

// AddFriend 发起好友请求（有向边，待接受）
func (uc *AccessUsecase) AddFriend(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return domain.ErrSelfFriendship
	}
	if _, err := uc.userRepo.GetByID(ctx, friendID); err != nil {
		return err
	}

	if existing, err := uc.friendRepo.Get(ctx, userID, friendID); err == nil && existing != nil {
		return domain.ErrFriendshipExists
	} else if err != nil && !errors.Is(err, domain.ErrFriendshipNotFound) {
		return err
	}

	return uc.friendRepo.Create(ctx, domain.NewFriendship(userID, friendID))
}

// AcceptFriend 接受来自fromUserID的好友请求
func (uc *AccessUsecase) AcceptFriend(ctx context.Context, requesterID, fromUserID string) error {
	return uc.friendRepo.Accept(ctx, fromUserID, requesterID)
}
