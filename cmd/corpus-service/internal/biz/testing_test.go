package biz

import (
	"context"
	"fmt"
	"sync"

	"corpushub/cmd/corpus-service/internal/domain"
	"corpushub/cmd/corpus-service/internal/infra"
)

// 业务层测试共用的内存仓储与远端客户端替身。

type fakeCorpusRepo struct {
	mu       sync.Mutex
	corpora  map[string]*domain.Corpus
	order    []string
	failNext error
}

func newFakeCorpusRepo() *fakeCorpusRepo {
	return &fakeCorpusRepo{corpora: make(map[string]*domain.Corpus)}
}

func (r *fakeCorpusRepo) Create(_ context.Context, corpus *domain.Corpus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	c := *corpus
	r.corpora[c.ID] = &c
	r.order = append(r.order, c.ID)
	return nil
}

func (r *fakeCorpusRepo) Update(_ context.Context, corpus *domain.Corpus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.corpora[corpus.ID]; !ok {
		return domain.ErrCorpusNotFound
	}
	c := *corpus
	r.corpora[c.ID] = &c
	return nil
}

func (r *fakeCorpusRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	if _, ok := r.corpora[id]; !ok {
		return domain.ErrCorpusNotFound
	}
	delete(r.corpora, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeCorpusRepo) GetByID(_ context.Context, id string) (*domain.Corpus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.corpora[id]
	if !ok {
		return nil, domain.ErrCorpusNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCorpusRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.Corpus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.Corpus
	for _, id := range r.order {
		if c := r.corpora[id]; c != nil && c.OwnerID == ownerID {
			cp := *c
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeCorpusRepo) ListByIDs(_ context.Context, ids []string) ([]*domain.Corpus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.Corpus
	for _, id := range ids {
		if c, ok := r.corpora[id]; ok {
			cp := *c
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeCorpusRepo) LatestByOwner(_ context.Context, ownerID string) (*domain.Corpus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.order) - 1; i >= 0; i-- {
		if c := r.corpora[r.order[i]]; c != nil && c.OwnerID == ownerID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCorpusNotFound
}

func (r *fakeCorpusRepo) ListFriendsVisibleByOwners(_ context.Context, ownerIDs []string) ([]*domain.Corpus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owners := make(map[string]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = true
	}
	var result []*domain.Corpus
	for _, id := range r.order {
		if c := r.corpora[id]; c != nil && owners[c.OwnerID] && c.Visibility == domain.VisibilityFriends {
			cp := *c
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeCorpusRepo) ListAll(_ context.Context) ([]*domain.Corpus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*domain.Corpus, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.corpora[id]
		result = append(result, &cp)
	}
	return result, nil
}

type fakeMappingRepo struct {
	mu       sync.Mutex
	nextID   int64
	mappings map[string]*domain.FileMapping // key: corpusID/surrogateID
	failNext error
}

func newFakeMappingRepo() *fakeMappingRepo {
	return &fakeMappingRepo{mappings: make(map[string]*domain.FileMapping)}
}

func mappingKey(corpusID string, surrogateID int64) string {
	return fmt.Sprintf("%s/%d", corpusID, surrogateID)
}

func (r *fakeMappingRepo) Create(_ context.Context, mapping *domain.FileMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.nextID++
	mapping.SurrogateID = r.nextID
	m := *mapping
	r.mappings[mappingKey(m.CorpusID, m.SurrogateID)] = &m
	return nil
}

func (r *fakeMappingRepo) GetBySurrogateID(_ context.Context, corpusID string, surrogateID int64) (*domain.FileMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mappings[mappingKey(corpusID, surrogateID)]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMappingRepo) ListByCorpus(_ context.Context, corpusID string) ([]*domain.FileMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.FileMapping
	for _, m := range r.mappings {
		if m.CorpusID == corpusID {
			cp := *m
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeMappingRepo) Delete(_ context.Context, corpusID string, surrogateID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := mappingKey(corpusID, surrogateID)
	if _, ok := r.mappings[key]; !ok {
		return domain.ErrFileNotFound
	}
	delete(r.mappings, key)
	return nil
}

type fakeFriendshipRepo struct {
	mu    sync.Mutex
	edges map[string]*domain.Friendship // key: userID→friendID
}

func newFakeFriendshipRepo() *fakeFriendshipRepo {
	return &fakeFriendshipRepo{edges: make(map[string]*domain.Friendship)}
}

func edgeKey(userID, friendID string) string {
	return userID + "→" + friendID
}

func (r *fakeFriendshipRepo) Create(_ context.Context, f *domain.Friendship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := edgeKey(f.UserID, f.FriendID)
	if _, ok := r.edges[key]; ok {
		return domain.ErrFriendshipExists
	}
	cp := *f
	r.edges[key] = &cp
	return nil
}

func (r *fakeFriendshipRepo) Accept(_ context.Context, userID, friendID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.edges[edgeKey(userID, friendID)]
	if !ok {
		return domain.ErrFriendshipNotFound
	}
	f.Accept()
	return nil
}

func (r *fakeFriendshipRepo) Get(_ context.Context, userID, friendID string) (*domain.Friendship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.edges[edgeKey(userID, friendID)]
	if !ok {
		return nil, domain.ErrFriendshipNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFriendshipRepo) AcceptedOwnerIDs(_ context.Context, viewerID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var owners []string
	for _, f := range r.edges {
		if f.FriendID == viewerID && f.IsAccepted() {
			owners = append(owners, f.UserID)
		}
	}
	return owners, nil
}

type fakeGrantRepo struct {
	mu     sync.Mutex
	grants []*domain.ShareGrant
}

func newFakeGrantRepo() *fakeGrantRepo {
	return &fakeGrantRepo{}
}

func (r *fakeGrantRepo) Create(_ context.Context, g *domain.ShareGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *g
	r.grants = append(r.grants, &cp)
	return nil
}

func (r *fakeGrantRepo) Exists(_ context.Context, corpusID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.grants {
		if g.CorpusID == corpusID && g.GrantedUserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeGrantRepo) CorpusIDsForUser(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, g := range r.grants {
		if g.GrantedUserID == userID {
			ids = append(ids, g.CorpusID)
		}
	}
	return ids, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// fakeRemoteClient 远端语料服务替身，各方法行为可按测试逐项覆盖。
type fakeRemoteClient struct {
	mu sync.Mutex

	createFn   func(displayName, description string) (*infra.CreateCorpusResult, error)
	getOpFn    func(name string) (*infra.Operation, error)
	listFn     func(pageToken string, pageSize int) (*infra.CorpusPage, error)
	deleteFn   func(corpusID string) error
	listFiles  func(corpusID string) ([]*infra.RemoteFile, error)
	importFn   func(corpusID, blobURI, fileName string) error
	deleteFile func(corpusID, fileName string) error
	retrieveFn func(corpusID, query string, topK int) ([]*infra.Passage, error)

	getOpCalls    int
	retrieveCalls int
	importCalls   []string
}

func (f *fakeRemoteClient) CreateCorpus(_ context.Context, displayName, description string) (*infra.CreateCorpusResult, error) {
	if f.createFn != nil {
		return f.createFn(displayName, description)
	}
	return &infra.CreateCorpusResult{
		Corpus: &infra.RemoteCorpus{Name: "corpora/auto", DisplayName: displayName, Description: description},
	}, nil
}

func (f *fakeRemoteClient) GetOperation(_ context.Context, name string) (*infra.Operation, error) {
	f.mu.Lock()
	f.getOpCalls++
	f.mu.Unlock()
	if f.getOpFn != nil {
		return f.getOpFn(name)
	}
	return &infra.Operation{Name: name, Done: true, Corpus: &infra.RemoteCorpus{Name: "corpora/auto"}}, nil
}

func (f *fakeRemoteClient) ListCorpora(_ context.Context, pageToken string, pageSize int) (*infra.CorpusPage, error) {
	if f.listFn != nil {
		return f.listFn(pageToken, pageSize)
	}
	return &infra.CorpusPage{}, nil
}

func (f *fakeRemoteClient) DeleteCorpus(_ context.Context, corpusID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(corpusID)
	}
	return nil
}

func (f *fakeRemoteClient) ListFiles(_ context.Context, corpusID string) ([]*infra.RemoteFile, error) {
	if f.listFiles != nil {
		return f.listFiles(corpusID)
	}
	return nil, nil
}

func (f *fakeRemoteClient) ImportFile(_ context.Context, corpusID, blobURI, fileName string, _ infra.ChunkingConfig) error {
	f.mu.Lock()
	f.importCalls = append(f.importCalls, fileName)
	f.mu.Unlock()
	if f.importFn != nil {
		return f.importFn(corpusID, blobURI, fileName)
	}
	return nil
}

func (f *fakeRemoteClient) DeleteFile(_ context.Context, corpusID, fileName string) error {
	if f.deleteFile != nil {
		return f.deleteFile(corpusID, fileName)
	}
	return nil
}

func (f *fakeRemoteClient) RetrievePassages(_ context.Context, corpusID, query string, topK int) ([]*infra.Passage, error) {
	f.mu.Lock()
	f.retrieveCalls++
	f.mu.Unlock()
	if f.retrieveFn != nil {
		return f.retrieveFn(corpusID, query, topK)
	}
	return nil, nil
}

type fakeGenClient struct {
	mu       sync.Mutex
	calls    int
	response string
	err      error
}

func (f *fakeGenClient) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if f.response != "" {
		return f.response, nil
	}
	return "generated answer", nil
}

// fakeBlobStore 记录写入顺序的Blob存储替身
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []string
	err     error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Put(_ context.Context, objectName string, content []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.objects[objectName] = content
	f.puts = append(f.puts, objectName)
	return "minio://test-bucket/" + objectName, nil
}

func (f *fakeBlobStore) Remove(_ context.Context, objectName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, objectName)
	return nil
}
