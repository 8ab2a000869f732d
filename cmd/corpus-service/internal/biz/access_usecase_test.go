package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"corpushub/cmd/corpus-service/internal/domain"
)

type accessFixture struct {
	corpusRepo *fakeCorpusRepo
	friendRepo *fakeFriendshipRepo
	grantRepo  *fakeGrantRepo
	userRepo   *fakeUserRepo
	uc         *AccessUsecase
}

func newAccessFixture(users ...*domain.User) *accessFixture {
	f := &accessFixture{
		corpusRepo: newFakeCorpusRepo(),
		friendRepo: newFakeFriendshipRepo(),
		grantRepo:  newFakeGrantRepo(),
		userRepo:   newFakeUserRepo(users...),
	}
	f.uc = NewAccessUsecase(f.corpusRepo, f.friendRepo, f.grantRepo, f.userRepo, testLogger())
	return f
}

func (f *accessFixture) addCorpus(id, owner string, v domain.Visibility) {
	_ = f.corpusRepo.Create(context.Background(), domain.NewCorpus(id, owner, "corpus-"+id, "", v))
}

func (f *accessFixture) addAcceptedFriendship(owner, friend string) {
	_ = f.friendRepo.Create(context.Background(), domain.NewFriendship(owner, friend))
	_ = f.friendRepo.Accept(context.Background(), owner, friend)
}

func TestCanAccess(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(f *accessFixture)
		user  string
		want  bool
	}{
		{
			name:  "owner always allowed",
			setup: func(f *accessFixture) { f.addCorpus("c1", "owner", domain.VisibilityPrivate) },
			user:  "owner",
			want:  true,
		},
		{
			name:  "stranger denied on private",
			setup: func(f *accessFixture) { f.addCorpus("c1", "owner", domain.VisibilityPrivate) },
			user:  "stranger",
			want:  false,
		},
		{
			name:  "anyone allowed on public",
			setup: func(f *accessFixture) { f.addCorpus("c1", "owner", domain.VisibilityPublic) },
			user:  "stranger",
			want:  true,
		},
		{
			name: "accepted friend allowed on friends visibility",
			setup: func(f *accessFixture) {
				f.addCorpus("c1", "owner", domain.VisibilityFriends)
				f.addAcceptedFriendship("owner", "friend")
			},
			user: "friend",
			want: true,
		},
		{
			name: "pending friendship denied",
			setup: func(f *accessFixture) {
				f.addCorpus("c1", "owner", domain.VisibilityFriends)
				_ = f.friendRepo.Create(ctx, domain.NewFriendship("owner", "friend"))
			},
			user: "friend",
			want: false,
		},
		{
			name: "reverse direction edge does not count",
			setup: func(f *accessFixture) {
				f.addCorpus("c1", "owner", domain.VisibilityFriends)
				f.addAcceptedFriendship("friend", "owner")
			},
			user: "friend",
			want: false,
		},
		{
			name: "friendship alone not enough for private",
			setup: func(f *accessFixture) {
				f.addCorpus("c1", "owner", domain.VisibilityPrivate)
				f.addAcceptedFriendship("owner", "friend")
			},
			user: "friend",
			want: false,
		},
		{
			name: "explicit grant allowed on private",
			setup: func(f *accessFixture) {
				f.addCorpus("c1", "owner", domain.VisibilityPrivate)
				_ = f.grantRepo.Create(ctx, domain.NewShareGrant("c1", "grantee"))
			},
			user: "grantee",
			want: true,
		},
		{
			name: "grant survives friendship removal semantics",
			setup: func(f *accessFixture) {
				// 授权一旦建立就独立于好友关系存在
				f.addCorpus("c1", "owner", domain.VisibilityPrivate)
				_ = f.grantRepo.Create(ctx, domain.NewShareGrant("c1", "ex-friend"))
			},
			user: "ex-friend",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAccessFixture()
			tt.setup(f)

			got, err := f.uc.CanAccess(ctx, tt.user, "c1")
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanAccessUnknownCorpus(t *testing.T) {
	f := newAccessFixture()
	_, err := f.uc.CanAccess(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, domain.ErrCorpusNotFound)
}

func TestShareCorpus(t *testing.T) {
	ctx := context.Background()
	owner := &domain.User{ID: "owner", Username: "owner-name"}
	friend := &domain.User{ID: "friend", Username: "friend-name"}

	t.Run("success with accepted friendship", func(t *testing.T) {
		f := newAccessFixture(owner, friend)
		f.addCorpus("c1", "owner", domain.VisibilityPrivate)
		f.addAcceptedFriendship("owner", "friend")

		grant, err := f.uc.ShareCorpus(ctx, "owner", "c1", "friend-name")

		assert.NoError(t, err)
		assert.Equal(t, "c1", grant.CorpusID)
		assert.Equal(t, "friend", grant.GrantedUserID)

		allowed, err := f.uc.CanAccess(ctx, "friend", "c1")
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("non-owner cannot share", func(t *testing.T) {
		f := newAccessFixture(owner, friend)
		f.addCorpus("c1", "owner", domain.VisibilityPrivate)

		_, err := f.uc.ShareCorpus(ctx, "friend", "c1", "owner-name")
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})

	t.Run("no friendship rejected", func(t *testing.T) {
		f := newAccessFixture(owner, friend)
		f.addCorpus("c1", "owner", domain.VisibilityPrivate)

		_, err := f.uc.ShareCorpus(ctx, "owner", "c1", "friend-name")
		assert.ErrorIs(t, err, domain.ErrNotFriends)
	})

	t.Run("pending friendship rejected", func(t *testing.T) {
		f := newAccessFixture(owner, friend)
		f.addCorpus("c1", "owner", domain.VisibilityPrivate)
		_ = f.friendRepo.Create(ctx, domain.NewFriendship("owner", "friend"))

		_, err := f.uc.ShareCorpus(ctx, "owner", "c1", "friend-name")
		assert.ErrorIs(t, err, domain.ErrNotFriends)
	})

	t.Run("duplicate share rejected", func(t *testing.T) {
		f := newAccessFixture(owner, friend)
		f.addCorpus("c1", "owner", domain.VisibilityPrivate)
		f.addAcceptedFriendship("owner", "friend")

		_, err := f.uc.ShareCorpus(ctx, "owner", "c1", "friend-name")
		assert.NoError(t, err)

		_, err = f.uc.ShareCorpus(ctx, "owner", "c1", "friend-name")
		assert.ErrorIs(t, err, domain.ErrAlreadyShared)
	})

	t.Run("unknown target user", func(t *testing.T) {
		f := newAccessFixture(owner)
		f.addCorpus("c1", "owner", domain.VisibilityPrivate)

		_, err := f.uc.ShareCorpus(ctx, "owner", "c1", "nobody")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestAccessibleCorpora(t *testing.T) {
	ctx := context.Background()
	f := newAccessFixture(
		&domain.User{ID: "viewer", Username: "viewer"},
		&domain.User{ID: "alice", Username: "alice"},
	)

	// viewer自有一个；alice有一个friends可见的和一个显式授权的
	f.addCorpus("mine", "viewer", domain.VisibilityPrivate)
	f.addCorpus("alice-friends", "alice", domain.VisibilityFriends)
	f.addCorpus("alice-granted", "alice", domain.VisibilityPrivate)
	f.addAcceptedFriendship("alice", "viewer")
	_ = f.grantRepo.Create(ctx, domain.NewShareGrant("alice-granted", "viewer"))

	result, err := f.uc.AccessibleCorpora(ctx, "viewer")

	assert.NoError(t, err)
	assert.Len(t, result, 3)

	reasons := make(map[string]domain.AccessReason, len(result))
	for _, a := range result {
		reasons[a.Corpus.ID] = a.Reason
	}
	assert.Equal(t, domain.AccessReasonOwner, reasons["mine"])
	assert.Equal(t, domain.AccessReasonFriend, reasons["alice-friends"])
	assert.Equal(t, domain.AccessReasonGrant, reasons["alice-granted"])
}

// 同一语料库既是授权又是好友可见：去重并保留更强的访问来源
func TestAccessibleCorporaDedupeKeepsStrongest(t *testing.T) {
	ctx := context.Background()
	f := newAccessFixture()

	f.addCorpus("both", "alice", domain.VisibilityFriends)
	f.addAcceptedFriendship("alice", "viewer")
	_ = f.grantRepo.Create(ctx, domain.NewShareGrant("both", "viewer"))

	result, err := f.uc.AccessibleCorpora(ctx, "viewer")

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, domain.AccessReasonGrant, result[0].Reason)
}

func TestAddFriend(t *testing.T) {
	ctx := context.Background()
	alice := &domain.User{ID: "alice", Username: "alice"}
	bob := &domain.User{ID: "bob", Username: "bob"}

	t.Run("creates pending edge", func(t *testing.T) {
		f := newAccessFixture(alice, bob)

		assert.NoError(t, f.uc.AddFriend(ctx, "alice", "bob"))

		edge, err := f.friendRepo.Get(ctx, "alice", "bob")
		assert.NoError(t, err)
		assert.False(t, edge.IsAccepted())
	})

	t.Run("self friendship rejected", func(t *testing.T) {
		f := newAccessFixture(alice)
		assert.ErrorIs(t, f.uc.AddFriend(ctx, "alice", "alice"), domain.ErrSelfFriendship)
	})

	t.Run("unknown target rejected", func(t *testing.T) {
		f := newAccessFixture(alice)
		assert.ErrorIs(t, f.uc.AddFriend(ctx, "alice", "ghost"), domain.ErrUserNotFound)
	})

	t.Run("duplicate rejected", func(t *testing.T) {
		f := newAccessFixture(alice, bob)
		assert.NoError(t, f.uc.AddFriend(ctx, "alice", "bob"))
		assert.ErrorIs(t, f.uc.AddFriend(ctx, "alice", "bob"), domain.ErrFriendshipExists)
	})
}

func TestAcceptFriend(t *testing.T) {
	ctx := context.Background()
	alice := &domain.User{ID: "alice", Username: "alice"}
	bob := &domain.User{ID: "bob", Username: "bob"}

	t.Run("accept marks edge", func(t *testing.T) {
		f := newAccessFixture(alice, bob)
		assert.NoError(t, f.uc.AddFriend(ctx, "alice", "bob"))

		assert.NoError(t, f.uc.AcceptFriend(ctx, "bob", "alice"))

		edge, err := f.friendRepo.Get(ctx, "alice", "bob")
		assert.NoError(t, err)
		assert.True(t, edge.IsAccepted())
	})

	t.Run("accept without request fails", func(t *testing.T) {
		f := newAccessFixture(alice, bob)
		assert.ErrorIs(t, f.uc.AcceptFriend(ctx, "bob", "alice"), domain.ErrFriendshipNotFound)
	})
}
