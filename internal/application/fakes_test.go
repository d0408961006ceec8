package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tonearm/tonearm/internal/domain/entity"
	"github.com/tonearm/tonearm/internal/domain/repository"
	"github.com/tonearm/tonearm/internal/infrastructure/spotify"
	"github.com/tonearm/tonearm/pkg/apperr"
	"github.com/tonearm/tonearm/pkg/mailer"
)

// In-memory fakes shared by the service tests. They mimic the constraint
// behavior of the real Postgres repositories: case-insensitive uniqueness
// on users, one review/status per (user, album), unique follow pairs.

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*entity.User

	createErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int64]*entity.User{}}
}

// add seeds a user directly, bypassing uniqueness checks.
func (r *memUserRepo) add(u *entity.User) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	r.users[u.ID] = &cp
	return u
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if strings.EqualFold(e.Username, u.Username) {
			return apperr.FieldConflict("username", "Username already taken")
		}
		if strings.EqualFold(e.Email, u.Email) {
			return apperr.FieldConflict("email", "Email already registered")
		}
	}
	r.nextID++
	u.ID = r.nextID
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *memUserRepo) UsernameTaken(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) EmailTaken(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return apperr.NotFound("User")
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sortedLocked()
	if offset >= len(all) {
		return []*entity.User{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]*entity.User, 0, end-offset)
	for _, u := range all[offset:end] {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *memUserRepo) sortedLocked() []*entity.User {
	all := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

var _ repository.UserRepository = (*memUserRepo)(nil)

type followEdge struct {
	follower  int64
	following int64
	at        time.Time
}

type memFollowRepo struct {
	mu    sync.Mutex
	users *memUserRepo
	edges []followEdge
}

func newMemFollowRepo(users *memUserRepo) *memFollowRepo {
	return &memFollowRepo{users: users}
}

func (r *memFollowRepo) Create(_ context.Context, f *entity.Follow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		if e.follower == f.FollowerID && e.following == f.FollowingID {
			return apperr.Conflict("Already following this user")
		}
	}
	r.edges = append(r.edges, followEdge{follower: f.FollowerID, following: f.FollowingID, at: time.Now().UTC()})
	return nil
}

func (r *memFollowRepo) Delete(_ context.Context, followerID, followingID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.edges {
		if e.follower == followerID && e.following == followingID {
			r.edges = append(r.edges[:i], r.edges[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Follow")
}

func (r *memFollowRepo) Exists(_ context.Context, followerID, followingID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		if e.follower == followerID && e.following == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memFollowRepo) FollowersOf(ctx context.Context, userID int64) ([]*entity.User, error) {
	r.mu.Lock()
	ids := make([]int64, 0)
	for i := len(r.edges) - 1; i >= 0; i-- {
		if r.edges[i].following == userID {
			ids = append(ids, r.edges[i].follower)
		}
	}
	r.mu.Unlock()
	return r.lookup(ctx, ids)
}

func (r *memFollowRepo) FollowingOf(ctx context.Context, userID int64) ([]*entity.User, error) {
	r.mu.Lock()
	ids := make([]int64, 0)
	for i := len(r.edges) - 1; i >= 0; i-- {
		if r.edges[i].follower == userID {
			ids = append(ids, r.edges[i].following)
		}
	}
	r.mu.Unlock()
	return r.lookup(ctx, ids)
}

func (r *memFollowRepo) CountFollowers(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.edges {
		if e.following == userID {
			n++
		}
	}
	return n, nil
}

func (r *memFollowRepo) CountFollowing(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.edges {
		if e.follower == userID {
			n++
		}
	}
	return n, nil
}

func (r *memFollowRepo) mutualIDs(subjectID, viewerID int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	followsSubject := map[int64]bool{}
	for _, e := range r.edges {
		if e.following == subjectID {
			followsSubject[e.follower] = true
		}
	}
	ids := make([]int64, 0)
	for i := len(r.edges) - 1; i >= 0; i-- {
		if r.edges[i].following == viewerID && followsSubject[r.edges[i].follower] {
			ids = append(ids, r.edges[i].follower)
		}
	}
	return ids
}

func (r *memFollowRepo) MutualFollowers(ctx context.Context, subjectID, viewerID int64, limit int) ([]*entity.User, error) {
	ids := r.mutualIDs(subjectID, viewerID)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return r.lookup(ctx, ids)
}

func (r *memFollowRepo) CountMutualFollowers(_ context.Context, subjectID, viewerID int64) (int64, error) {
	return int64(len(r.mutualIDs(subjectID, viewerID))), nil
}

func (r *memFollowRepo) lookup(ctx context.Context, ids []int64) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		u, err := r.users.GetByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

var _ repository.FollowRepository = (*memFollowRepo)(nil)

type memReviewRepo struct {
	mu      sync.Mutex
	nextID  int64
	reviews map[int64]*entity.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{reviews: map[int64]*entity.Review{}}
}

func (r *memReviewRepo) Upsert(_ context.Context, rev *entity.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, e := range r.reviews {
		if e.UserID == rev.UserID && e.SpotifyAlbumID == rev.SpotifyAlbumID {
			e.Content = rev.Content
			e.Rating = rev.Rating
			e.UpdatedAt = now
			*rev = *e
			return nil
		}
	}
	r.nextID++
	rev.ID = r.nextID
	rev.CreatedAt = now
	rev.UpdatedAt = now
	cp := *rev
	r.reviews[rev.ID] = &cp
	return nil
}

func (r *memReviewRepo) GetByID(_ context.Context, id int64) (*entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return nil, apperr.NotFound("Review")
	}
	cp := *rev
	return &cp, nil
}

func (r *memReviewRepo) Update(_ context.Context, rev *entity.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[rev.ID]; !ok {
		return apperr.NotFound("Review")
	}
	rev.UpdatedAt = time.Now().UTC()
	cp := *rev
	r.reviews[rev.ID] = &cp
	return nil
}

func (r *memReviewRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return apperr.NotFound("Review")
	}
	delete(r.reviews, id)
	return nil
}

func matchReview(f repository.ReviewFilter, rev *entity.Review) bool {
	if f.UserID != nil && rev.UserID != *f.UserID {
		return false
	}
	if f.SpotifyAlbumID != "" && rev.SpotifyAlbumID != f.SpotifyAlbumID {
		return false
	}
	return true
}

func (r *memReviewRepo) List(_ context.Context, f repository.ReviewFilter, limit, offset int) ([]*entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*entity.Review, 0)
	for _, rev := range r.reviews {
		if matchReview(f, rev) {
			all = append(all, rev)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return []*entity.Review{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]*entity.Review, 0, end-offset)
	for _, rev := range all[offset:end] {
		cp := *rev
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memReviewRepo) Count(_ context.Context, f repository.ReviewFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rev := range r.reviews {
		if matchReview(f, rev) {
			n++
		}
	}
	return n, nil
}

var _ repository.ReviewRepository = (*memReviewRepo)(nil)

type memStatusRepo struct {
	mu       sync.Mutex
	nextID   int64
	statuses map[int64]*entity.AlbumStatus
}

func newMemStatusRepo() *memStatusRepo {
	return &memStatusRepo{statuses: map[int64]*entity.AlbumStatus{}}
}

func (r *memStatusRepo) Upsert(_ context.Context, st *entity.AlbumStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, e := range r.statuses {
		if e.UserID == st.UserID && e.SpotifyAlbumID == st.SpotifyAlbumID {
			e.Status = st.Status
			e.IsFavorite = st.IsFavorite
			e.UpdatedAt = now
			*st = *e
			return nil
		}
	}
	r.nextID++
	st.ID = r.nextID
	st.CreatedAt = now
	st.UpdatedAt = now
	cp := *st
	r.statuses[st.ID] = &cp
	return nil
}

func (r *memStatusRepo) GetByID(_ context.Context, id int64) (*entity.AlbumStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.statuses[id]
	if !ok {
		return nil, apperr.NotFound("Status")
	}
	cp := *st
	return &cp, nil
}

func (r *memStatusRepo) Update(_ context.Context, st *entity.AlbumStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.statuses[st.ID]; !ok {
		return apperr.NotFound("Status")
	}
	st.UpdatedAt = time.Now().UTC()
	cp := *st
	r.statuses[st.ID] = &cp
	return nil
}

func (r *memStatusRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.statuses[id]; !ok {
		return apperr.NotFound("Status")
	}
	delete(r.statuses, id)
	return nil
}

func matchStatus(f repository.StatusFilter, st *entity.AlbumStatus) bool {
	if f.UserID != nil && st.UserID != *f.UserID {
		return false
	}
	if f.SpotifyAlbumID != "" && st.SpotifyAlbumID != f.SpotifyAlbumID {
		return false
	}
	if f.Status != "" && st.Status != f.Status {
		return false
	}
	if f.IsFavorite != nil && st.IsFavorite != *f.IsFavorite {
		return false
	}
	return true
}

func (r *memStatusRepo) List(_ context.Context, f repository.StatusFilter, limit, offset int) ([]*entity.AlbumStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*entity.AlbumStatus, 0)
	for _, st := range r.statuses {
		if matchStatus(f, st) {
			all = append(all, st)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return []*entity.AlbumStatus{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]*entity.AlbumStatus, 0, end-offset)
	for _, st := range all[offset:end] {
		cp := *st
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memStatusRepo) Count(_ context.Context, f repository.StatusFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, st := range r.statuses {
		if matchStatus(f, st) {
			n++
		}
	}
	return n, nil
}

var _ repository.StatusRepository = (*memStatusRepo)(nil)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (q *recordingQueue) PublishJSON(_ context.Context, body any) error {
	if q.err != nil {
		return q.err
	}
	job, ok := body.(mailer.EmailJob)
	if !ok {
		return nil
	}
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
	return nil
}

func (q *recordingQueue) sent() []mailer.EmailJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]mailer.EmailJob(nil), q.jobs...)
}

type recordingIndexer struct {
	mu  sync.Mutex
	ids []int64
}

func (i *recordingIndexer) IndexUser(_ context.Context, u *entity.User) {
	i.mu.Lock()
	i.ids = append(i.ids, u.ID)
	i.mu.Unlock()
}

type fakeCatalog struct {
	albums      map[string]spotify.Album
	getCalls    int
	searchTotal int64
	searchItems []spotify.Album
	lastQuery   string
	lastLimit   int
	lastOffset  int
	tokens      *spotify.UserTokens
	exchangeErr error
}

func (c *fakeCatalog) GetAlbum(_ context.Context, id string) (*spotify.Album, error) {
	c.getCalls++
	a, ok := c.albums[id]
	if !ok {
		return nil, apperr.NotFound("Album")
	}
	return &a, nil
}

func (c *fakeCatalog) SearchAlbums(_ context.Context, q string, limit, offset int) (int64, []spotify.Album, error) {
	c.lastQuery, c.lastLimit, c.lastOffset = q, limit, offset
	return c.searchTotal, c.searchItems, nil
}

func (c *fakeCatalog) AuthorizeURL(state string) string {
	return "https://accounts.example/authorize?state=" + state
}

func (c *fakeCatalog) ExchangeCode(_ context.Context, code string) (*spotify.UserTokens, error) {
	if c.exchangeErr != nil {
		return nil, c.exchangeErr
	}
	return c.tokens, nil
}

var _ Catalog = (*fakeCatalog)(nil)
