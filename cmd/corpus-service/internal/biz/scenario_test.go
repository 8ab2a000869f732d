package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpushub/cmd/corpus-service/internal/domain"
	"corpushub/cmd/corpus-service/internal/infra"
)

// 贯穿场景：建库、上传非ASCII文档、陌生人被拒、好友接受后经可见性
// 切换获得查询权限。所有远端交互走替身。
func TestCorpusSharingScenario(t *testing.T) {
	ctx := context.Background()

	corpusRepo := newFakeCorpusRepo()
	mappingRepo := newFakeMappingRepo()
	friendRepo := newFakeFriendshipRepo()
	grantRepo := newFakeGrantRepo()
	userRepo := newFakeUserRepo(
		&domain.User{ID: "alice", Username: "alice"},
		&domain.User{ID: "bob", Username: "bob"},
	)
	blob := newFakeBlobStore()

	remote := &fakeRemoteClient{
		createFn: func(displayName, _ string) (*infra.CreateCorpusResult, error) {
			return &infra.CreateCorpusResult{
				Corpus: &infra.RemoteCorpus{Name: "corpora/alice-1", DisplayName: displayName},
			}, nil
		},
		listFiles: func(string) ([]*infra.RemoteFile, error) {
			return []*infra.RemoteFile{{Name: "files/x", DisplayName: "1.txt", SizeBytes: 5}}, nil
		},
		retrieveFn: func(string, string, int) ([]*infra.Passage, error) {
			return []*infra.Passage{{Text: "笔记内容", Score: 0.8}}, nil
		},
	}
	gen := &fakeGenClient{response: "基于笔记的回答"}

	corpusUC := NewCorpusUsecase(corpusRepo, remote, &LifecycleConfig{
		PollInterval: time.Millisecond,
		PollTimeout:  time.Second,
	}, testLogger())
	accessUC := NewAccessUsecase(corpusRepo, friendRepo, grantRepo, userRepo, testLogger())
	docUC := NewDocumentUsecase(corpusRepo, mappingRepo, blob, remote, corpusUC, accessUC, &DocumentConfig{}, testLogger())
	queryUC := NewQueryUsecase(accessUC, remote, gen, &QueryConfig{RetryDelay: time.Millisecond}, testLogger())

	// 1. alice建私有库并上传中文名文档
	corpus, err := corpusUC.CreateCorpus(ctx, "alice", "notes", "", domain.VisibilityPrivate)
	require.NoError(t, err)

	upload, err := docUC.UploadDocument(ctx, "alice", corpus.ID, "笔记.txt", []byte("hello"))
	require.NoError(t, err)
	assert.False(t, upload.IndexingPending)

	// 2. 列表还原原始文件名
	entries, err := docUC.ListDocuments(ctx, "alice", corpus.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "笔记.txt", entries[0].DisplayName)

	// 3. bob此时无权查询
	_, err = queryUC.Query(ctx, "bob", corpus.ID, "笔记里写了什么？")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	// 4. 建立好友关系并把库切为好友可见
	require.NoError(t, accessUC.AddFriend(ctx, "alice", "bob"))
	require.NoError(t, accessUC.AcceptFriend(ctx, "bob", "alice"))
	_, err = corpusUC.UpdateCorpus(ctx, corpus.ID, "alice", "", "", domain.VisibilityFriends)
	require.NoError(t, err)

	// 5. bob立即获得查询权限（无缓存延迟）
	result, err := queryUC.Query(ctx, "bob", corpus.ID, "笔记里写了什么？")
	require.NoError(t, err)
	assert.Equal(t, QueryStatusAnswered, result.Status)
	assert.Equal(t, "基于笔记的回答", result.Answer)

	// 6. bob在可访问列表中看到该库，来源为friend
	accessible, err := accessUC.AccessibleCorpora(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, accessible, 1)
	assert.Equal(t, domain.AccessReasonFriend, accessible[0].Reason)

	// 7. 可见性对写权限无影响：bob不能删文档
	err = docUC.DeleteDocument(ctx, "bob", corpus.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}
