package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GoArmGo/PhotoHub/internal/auth"
	"github.com/GoArmGo/PhotoHub/internal/core/ports"
	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/GoArmGo/PhotoHub/internal/logger"
	"github.com/GoArmGo/PhotoHub/internal/messaging/payloads"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type edge [2]uuid.UUID

// memStore: потокобезопасная in-memory реализация портов хранилища
// с теми же ограничениями уникальности, что и схема
type memStore struct {
	mu  sync.Mutex
	seq int64

	users      map[uuid.UUID]*domain.User
	photos     map[uuid.UUID]*domain.Photo
	photoSeq   map[uuid.UUID]int64
	photoTags  map[uuid.UUID][]uuid.UUID
	tags       map[string]domain.Tag
	tagByID    map[uuid.UUID]domain.Tag
	cols       map[uuid.UUID]*domain.Collection
	colSeq     map[uuid.UUID]int64
	members    map[uuid.UUID][]uuid.UUID
	likes      map[edge]bool
	follows    map[edge]int64
	downloads  []domain.Download
	tagCreates int
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[uuid.UUID]*domain.User{},
		photos:    map[uuid.UUID]*domain.Photo{},
		photoSeq:  map[uuid.UUID]int64{},
		photoTags: map[uuid.UUID][]uuid.UUID{},
		tags:      map[string]domain.Tag{},
		tagByID:   map[uuid.UUID]domain.Tag{},
		cols:      map[uuid.UUID]*domain.Collection{},
		colSeq:    map[uuid.UUID]int64{},
		members:   map[uuid.UUID][]uuid.UUID{},
		likes:     map[edge]bool{},
		follows:   map[edge]int64{},
	}
}

func (m *memStore) next() int64 {
	m.seq++
	return m.seq
}

// --- users

func (m *memStore) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return domain.ErrConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) GetUsersByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uuid.UUID]domain.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = *u
		}
	}
	return out, nil
}

func (m *memStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.GetUserByUsername(ctx, username)
	return err == nil, nil
}

func (m *memStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) UpdateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) GetUserStats(_ context.Context, userID uuid.UUID) (domain.UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s domain.UserStats
	for _, p := range m.photos {
		if p.UserID == userID {
			s.PhotosCount++
		}
	}
	for _, c := range m.cols {
		if c.UserID == userID {
			s.CollectionsCount++
		}
	}
	for e := range m.follows {
		if e[1] == userID {
			s.FollowersCount++
		}
		if e[0] == userID {
			s.FollowingCount++
		}
	}
	return s, nil
}

// --- photos and tags

func (m *memStore) GetOrCreateTags(_ context.Context, names []string) ([]domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Tag, 0, len(names))
	for _, n := range names {
		t, ok := m.tags[n]
		if !ok {
			t = domain.Tag{ID: uuid.New(), Name: n}
			m.tags[n] = t
			m.tagByID[t.ID] = t
			m.tagCreates++
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memStore) SavePhoto(_ context.Context, photo *domain.Photo, tagIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[photo.UserID]; !ok {
		return domain.ErrNotFound
	}
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	photo.CreatedAt = time.Now()
	photo.UpdatedAt = photo.CreatedAt
	cp := *photo
	cp.Tags = nil
	m.photos[photo.ID] = &cp
	m.photoSeq[photo.ID] = m.next()
	m.photoTags[photo.ID] = append([]uuid.UUID(nil), tagIDs...)
	return nil
}

func (m *memStore) photoCopy(id uuid.UUID) *domain.Photo {
	p := *m.photos[id]
	p.Tags = []domain.Tag{}
	for _, tid := range m.photoTags[id] {
		p.Tags = append(p.Tags, m.tagByID[tid])
	}
	sort.Slice(p.Tags, func(i, j int) bool { return p.Tags[i].Name < p.Tags[j].Name })
	return &p
}

func (m *memStore) GetPhotoByID(_ context.Context, id uuid.UUID) (*domain.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.photos[id]; !ok {
		return nil, domain.ErrNotFound
	}
	return m.photoCopy(id), nil
}

func (m *memStore) IncrementViews(_ context.Context, id uuid.UUID) (*domain.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.photos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.ViewsCount++
	return m.photoCopy(id), nil
}

func (m *memStore) UpdatePhoto(_ context.Context, photo *domain.Photo, tagIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.photos[photo.ID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Title = photo.Title
	p.Description = photo.Description
	p.UpdatedAt = time.Now()
	if tagIDs != nil {
		m.photoTags[photo.ID] = append([]uuid.UUID(nil), tagIDs...)
	}
	return nil
}

func (m *memStore) SetThumbnail(_ context.Context, id uuid.UUID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.photos[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.ThumbnailKey = &key
	return nil
}

func (m *memStore) DeletePhoto(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.photos[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.photoTags, id)
	for cid, ids := range m.members {
		m.members[cid] = without(ids, id)
	}
	for e := range m.likes {
		if e[1] == id {
			delete(m.likes, e)
		}
	}
	kept := m.downloads[:0]
	for _, d := range m.downloads {
		if d.PhotoID != id {
			kept = append(kept, d)
		}
	}
	m.downloads = kept
	delete(m.photos, id)
	delete(m.photoSeq, id)
	return nil
}

func (m *memStore) ListPhotos(_ context.Context, f ports.PhotoFilter, page domain.PageRequest) ([]domain.Photo, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.Photo
	for id := range m.photos {
		p := m.photoCopy(id)
		if f.Keyword != "" {
			kw := strings.ToLower(f.Keyword)
			desc := ""
			if p.Description != nil {
				desc = *p.Description
			}
			if !strings.Contains(strings.ToLower(p.Title), kw) && !strings.Contains(strings.ToLower(desc), kw) {
				continue
			}
		}
		if f.TagName != "" && !contains(p.TagNames(), f.TagName) {
			continue
		}
		if f.UserID != uuid.Nil && p.UserID != f.UserID {
			continue
		}
		if f.LikedBy != uuid.Nil && !m.likes[edge{f.LikedBy, p.ID}] {
			continue
		}
		if f.CollectionID != uuid.Nil && !containsID(m.members[f.CollectionID], p.ID) {
			continue
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if f.Order == ports.OrderPopular && a.LikesCount != b.LikesCount {
			return a.LikesCount > b.LikesCount
		}
		if f.Order == ports.OrderTrending && a.ViewsCount != b.ViewsCount {
			return a.ViewsCount > b.ViewsCount
		}
		return m.photoSeq[a.ID] > m.photoSeq[b.ID]
	})

	out := []domain.Photo{}
	for i := page.Offset(); i < len(matched) && i < page.Offset()+page.Limit(); i++ {
		out = append(out, *matched[i])
	}
	return out, int64(len(matched)), nil
}

// --- collections

func (m *memStore) SaveCollection(_ context.Context, c *domain.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.cols[c.ID] = &cp
	m.colSeq[c.ID] = m.next()
	return nil
}

func (m *memStore) GetCollectionByID(_ context.Context, id uuid.UUID) (*domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cols[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) UpdateCollection(_ context.Context, c *domain.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cols[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	m.cols[c.ID] = &cp
	return nil
}

func (m *memStore) DeleteCollection(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cols[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.members, id)
	delete(m.cols, id)
	return nil
}

func (m *memStore) ListCollections(_ context.Context, f ports.CollectionFilter, page domain.PageRequest) ([]domain.Collection, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []domain.Collection
	for _, c := range m.cols {
		if f.UserID != uuid.Nil && c.UserID != f.UserID {
			continue
		}
		if f.PublicOnly && c.IsPrivate {
			continue
		}
		matched = append(matched, *c)
	}
	sort.Slice(matched, func(i, j int) bool { return m.colSeq[matched[i].ID] > m.colSeq[matched[j].ID] })

	out := []domain.Collection{}
	for i := page.Offset(); i < len(matched) && i < page.Offset()+page.Limit(); i++ {
		out = append(out, matched[i])
	}
	return out, int64(len(matched)), nil
}

func (m *memStore) AddPhoto(_ context.Context, collectionID, photoID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cols[collectionID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := m.photos[photoID]; !ok {
		return domain.ErrNotFound
	}
	if containsID(m.members[collectionID], photoID) {
		return domain.ErrConflict
	}
	m.members[collectionID] = append(m.members[collectionID], photoID)
	return nil
}

func (m *memStore) RemovePhoto(_ context.Context, collectionID, photoID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !containsID(m.members[collectionID], photoID) {
		return domain.ErrConflict
	}
	m.members[collectionID] = without(m.members[collectionID], photoID)
	return nil
}

func (m *memStore) Members(_ context.Context, ids []uuid.UUID, coverLimit int) (map[uuid.UUID]domain.CollectionMembers, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uuid.UUID]domain.CollectionMembers{}
	for _, id := range ids {
		var cm domain.CollectionMembers
		for i, pid := range m.members[id] {
			if i < coverLimit {
				cm.CoverKeys = append(cm.CoverKeys, m.photos[pid].ImageKey)
			}
			cm.PhotosCount++
		}
		out[id] = cm
	}
	return out, nil
}

// --- engagement

func (m *memStore) AddLike(_ context.Context, userID, photoID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.photos[photoID]
	if !ok {
		return domain.ErrNotFound
	}
	if m.likes[edge{userID, photoID}] {
		return domain.ErrConflict
	}
	m.likes[edge{userID, photoID}] = true
	p.LikesCount++
	return nil
}

func (m *memStore) RemoveLike(_ context.Context, userID, photoID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.likes[edge{userID, photoID}] {
		return domain.ErrConflict
	}
	delete(m.likes, edge{userID, photoID})
	if p, ok := m.photos[photoID]; ok && p.LikesCount > 0 {
		p.LikesCount--
	}
	return nil
}

func (m *memStore) LikedPhotoIDs(_ context.Context, userID uuid.UUID, photoIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uuid.UUID]bool{}
	for _, id := range photoIDs {
		if m.likes[edge{userID, id}] {
			out[id] = true
		}
	}
	return out, nil
}

func (m *memStore) AddFollow(_ context.Context, followerID, followingID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if followerID == followingID {
		return domain.ErrValidation
	}
	if _, ok := m.users[followingID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := m.follows[edge{followerID, followingID}]; ok {
		return domain.ErrConflict
	}
	m.follows[edge{followerID, followingID}] = m.next()
	return nil
}

func (m *memStore) RemoveFollow(_ context.Context, followerID, followingID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.follows[edge{followerID, followingID}]; !ok {
		return domain.ErrConflict
	}
	delete(m.follows, edge{followerID, followingID})
	return nil
}

func (m *memStore) IsFollowing(_ context.Context, followerID, followingID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.follows[edge{followerID, followingID}]
	return ok, nil
}

func (m *memStore) ListFollowerIDs(_ context.Context, userID uuid.UUID, page domain.PageRequest) ([]uuid.UUID, int64, error) {
	return m.listEdges(userID, page, 1, 0)
}

func (m *memStore) ListFollowingIDs(_ context.Context, userID uuid.UUID, page domain.PageRequest) ([]uuid.UUID, int64, error) {
	return m.listEdges(userID, page, 0, 1)
}

func (m *memStore) listEdges(userID uuid.UUID, page domain.PageRequest, match, pick int) ([]uuid.UUID, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	type item struct {
		id  uuid.UUID
		seq int64
	}
	var items []item
	for e, seq := range m.follows {
		if e[match] == userID {
			items = append(items, item{e[pick], seq})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].seq > items[j].seq })
	out := []uuid.UUID{}
	for i := page.Offset(); i < len(items) && i < page.Offset()+page.Limit(); i++ {
		out = append(out, items[i].id)
	}
	return out, int64(len(items)), nil
}

func (m *memStore) RecordDownload(_ context.Context, d *domain.Download) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.photos[d.PhotoID]
	if !ok {
		return domain.ErrNotFound
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	p.DownloadsCount++
	m.downloads = append(m.downloads, *d)
	return nil
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, it := range ids {
		if it == id {
			return true
		}
	}
	return false
}

func without(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, it := range ids {
		if it != id {
			out = append(out, it)
		}
	}
	return out
}

// --- collaborators

type fakeFiles struct {
	mu        sync.Mutex
	n         int
	objects   map[string][]byte
	deleted   []string
	uploadErr error
	deleteErr error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{objects: map[string][]byte{}}
}

func (f *fakeFiles) UploadFile(_ context.Context, folder string, r io.Reader, _ int64, _ string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	key := fmt.Sprintf("%s/%d", folder, f.n)
	f.objects[key] = data
	return key, nil
}

func (f *fakeFiles) FileURL(key string) string {
	return "http://files.test/bucket/" + key
}

func (f *fakeFiles) GetFile(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeFiles) DeleteFile(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

var validImage = []byte("IMG:pixels")

// fakeImages принимает данные с префиксом IMG как изображение 1200x800
type fakeImages struct{}

func (fakeImages) Inspect(data []byte) (ports.ImageMeta, error) {
	if !bytes.HasPrefix(data, []byte("IMG")) {
		return ports.ImageMeta{}, domain.ErrInvalidMedia
	}
	return ports.ImageMeta{Width: 1200, Height: 800, Format: "jpeg", ContentType: "image/jpeg", Color: "#112233"}, nil
}

func (fakeImages) Thumbnail(data []byte, _ int) ([]byte, error) {
	if !bytes.HasPrefix(data, []byte("IMG")) {
		return nil, domain.ErrInvalidMedia
	}
	return []byte("THUMB"), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []payloads.PhotoUploadedPayload
	err    error
}

func (p *fakePublisher) PublishPhotoUploaded(_ context.Context, payload payloads.PhotoUploadedPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, payload)
	return nil
}

// --- environment

type testEnv struct {
	store       *memStore
	files       *fakeFiles
	publisher   *fakePublisher
	photos      PhotoUseCase
	collections CollectionUseCase
	engagement  EngagementUseCase
	users       UserUseCase
	auth        AuthUseCase
	thumbnails  *ThumbnailProcessor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	files := newFakeFiles()
	pub := &fakePublisher{}
	log := logger.Discard()
	asm := NewAssembler(files, store, store, store)

	return &testEnv{
		store:       store,
		files:       files,
		publisher:   pub,
		photos:      NewPhotoUseCase(store, store, store, files, fakeImages{}, pub, asm, log),
		collections: NewCollectionUseCase(store, store, store, asm, log),
		engagement:  NewEngagementUseCase(store, store, store, files, asm, log),
		users:       NewUserUseCase(store, store, files, fakeImages{}, asm, log),
		auth:        NewAuthUseCase(store, auth.NewTokenManager("test-secret", time.Hour), asm, log),
		thumbnails:  NewThumbnailProcessor(store, files, fakeImages{}, 400, log),
	}
}

func (e *testEnv) user(t *testing.T, username string) uuid.UUID {
	t.Helper()
	u := &domain.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u.ID
}

func (e *testEnv) photo(t *testing.T, owner uuid.UUID, title string, tags ...string) *PhotoResponse {
	t.Helper()
	p, err := e.photos.Upload(context.Background(), UploadPhotoInput{
		OwnerID: owner,
		Title:   title,
		Tags:    tags,
		Data:    validImage,
	})
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }
