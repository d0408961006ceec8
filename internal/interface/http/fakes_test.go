package handlers

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/tonearm/tonearm/internal/domain/entity"
	"github.com/tonearm/tonearm/internal/domain/repository"
	"github.com/tonearm/tonearm/internal/infrastructure/spotify"
	"github.com/tonearm/tonearm/pkg/apperr"
)

// In-memory repositories backing the routed handlers under test. They keep
// the Postgres implementations' error contract: apperr values on conflict
// and not-found, uniqueness checked case-insensitively.

type memUsers struct {
	seq  int64
	rows map[int64]*entity.User
}

func newMemUsers() *memUsers { return &memUsers{rows: map[int64]*entity.User{}} }

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	for _, row := range m.rows {
		if strings.EqualFold(row.Username, u.Username) {
			return apperr.FieldConflict("username", "Username already taken")
		}
		if strings.EqualFold(row.Email, u.Email) {
			return apperr.FieldConflict("email", "Email already registered")
		}
	}
	m.seq++
	u.ID = m.seq
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	m.rows[u.ID] = u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	u, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return u, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range m.rows {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memUsers) UsernameTaken(_ context.Context, username string) (bool, error) {
	for _, u := range m.rows {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) EmailTaken(_ context.Context, email string) (bool, error) {
	for _, u := range m.rows {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	if _, ok := m.rows[u.ID]; !ok {
		return apperr.NotFound("User")
	}
	m.rows[u.ID] = u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(m.rows, id)
	return nil
}

func (m *memUsers) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	all := m.sorted()
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memUsers) Count(_ context.Context) (int64, error) {
	return int64(len(m.rows)), nil
}

func (m *memUsers) sorted() []*entity.User {
	out := make([]*entity.User, 0, len(m.rows))
	for _, u := range m.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type followEdge struct {
	follower  int64
	following int64
	at        time.Time
}

type memFollows struct {
	users *memUsers
	seq   int64
	edges []followEdge
}

func (m *memFollows) Create(_ context.Context, f *entity.Follow) error {
	for _, e := range m.edges {
		if e.follower == f.FollowerID && e.following == f.FollowingID {
			return apperr.Conflict("Already following this user")
		}
	}
	if _, ok := m.users.rows[f.FollowerID]; !ok {
		return apperr.NotFound("User")
	}
	if _, ok := m.users.rows[f.FollowingID]; !ok {
		return apperr.NotFound("User")
	}
	m.seq++
	f.ID = m.seq
	f.CreatedAt = time.Now().UTC()
	m.edges = append(m.edges, followEdge{follower: f.FollowerID, following: f.FollowingID, at: f.CreatedAt})
	return nil
}

func (m *memFollows) Delete(_ context.Context, followerID, followingID int64) error {
	for i, e := range m.edges {
		if e.follower == followerID && e.following == followingID {
			m.edges = append(m.edges[:i], m.edges[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Follow")
}

func (m *memFollows) Exists(_ context.Context, followerID, followingID int64) (bool, error) {
	for _, e := range m.edges {
		if e.follower == followerID && e.following == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memFollows) FollowersOf(_ context.Context, userID int64) ([]*entity.User, error) {
	var out []*entity.User
	for i := len(m.edges) - 1; i >= 0; i-- {
		if m.edges[i].following == userID {
			out = append(out, m.users.rows[m.edges[i].follower])
		}
	}
	return out, nil
}

func (m *memFollows) FollowingOf(_ context.Context, userID int64) ([]*entity.User, error) {
	var out []*entity.User
	for i := len(m.edges) - 1; i >= 0; i-- {
		if m.edges[i].follower == userID {
			out = append(out, m.users.rows[m.edges[i].following])
		}
	}
	return out, nil
}

func (m *memFollows) CountFollowers(ctx context.Context, userID int64) (int64, error) {
	followers, _ := m.FollowersOf(ctx, userID)
	return int64(len(followers)), nil
}

func (m *memFollows) CountFollowing(ctx context.Context, userID int64) (int64, error) {
	following, _ := m.FollowingOf(ctx, userID)
	return int64(len(following)), nil
}

func (m *memFollows) MutualFollowers(ctx context.Context, subjectID, viewerID int64, limit int) ([]*entity.User, error) {
	var out []*entity.User
	followers, _ := m.FollowersOf(ctx, subjectID)
	for _, u := range followers {
		if ok, _ := m.Exists(ctx, u.ID, viewerID); ok {
			out = append(out, u)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memFollows) CountMutualFollowers(ctx context.Context, subjectID, viewerID int64) (int64, error) {
	var n int64
	followers, _ := m.FollowersOf(ctx, subjectID)
	for _, u := range followers {
		if ok, _ := m.Exists(ctx, u.ID, viewerID); ok {
			n++
		}
	}
	return n, nil
}

type memReviews struct {
	seq  int64
	rows map[int64]*entity.Review
}

func newMemReviews() *memReviews { return &memReviews{rows: map[int64]*entity.Review{}} }

func (m *memReviews) Upsert(_ context.Context, r *entity.Review) error {
	now := time.Now().UTC()
	for _, row := range m.rows {
		if row.UserID == r.UserID && row.SpotifyAlbumID == r.SpotifyAlbumID {
			r.ID = row.ID
			r.CreatedAt = row.CreatedAt
			r.UpdatedAt = now
			m.rows[r.ID] = r
			return nil
		}
	}
	m.seq++
	r.ID = m.seq
	r.CreatedAt, r.UpdatedAt = now, now
	m.rows[r.ID] = r
	return nil
}

func (m *memReviews) GetByID(_ context.Context, id int64) (*entity.Review, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound("Review")
	}
	return r, nil
}

func (m *memReviews) Update(_ context.Context, r *entity.Review) error {
	if _, ok := m.rows[r.ID]; !ok {
		return apperr.NotFound("Review")
	}
	r.UpdatedAt = time.Now().UTC()
	m.rows[r.ID] = r
	return nil
}

func (m *memReviews) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return apperr.NotFound("Review")
	}
	delete(m.rows, id)
	return nil
}

func matchReview(r *entity.Review, f repository.ReviewFilter) bool {
	if f.UserID != nil && r.UserID != *f.UserID {
		return false
	}
	if f.SpotifyAlbumID != "" && r.SpotifyAlbumID != f.SpotifyAlbumID {
		return false
	}
	return true
}

func (m *memReviews) List(_ context.Context, f repository.ReviewFilter, limit, offset int) ([]*entity.Review, error) {
	var all []*entity.Review
	for _, r := range m.rows {
		if matchReview(r, f) {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memReviews) Count(_ context.Context, f repository.ReviewFilter) (int64, error) {
	var n int64
	for _, r := range m.rows {
		if matchReview(r, f) {
			n++
		}
	}
	return n, nil
}

type memStatuses struct {
	seq  int64
	rows map[int64]*entity.AlbumStatus
}

func newMemStatuses() *memStatuses { return &memStatuses{rows: map[int64]*entity.AlbumStatus{}} }

func (m *memStatuses) Upsert(_ context.Context, s *entity.AlbumStatus) error {
	now := time.Now().UTC()
	for _, row := range m.rows {
		if row.UserID == s.UserID && row.SpotifyAlbumID == s.SpotifyAlbumID {
			s.ID = row.ID
			s.CreatedAt = row.CreatedAt
			s.UpdatedAt = now
			m.rows[s.ID] = s
			return nil
		}
	}
	m.seq++
	s.ID = m.seq
	s.CreatedAt, s.UpdatedAt = now, now
	m.rows[s.ID] = s
	return nil
}

func (m *memStatuses) GetByID(_ context.Context, id int64) (*entity.AlbumStatus, error) {
	s, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound("Status")
	}
	return s, nil
}

func (m *memStatuses) Update(_ context.Context, s *entity.AlbumStatus) error {
	if _, ok := m.rows[s.ID]; !ok {
		return apperr.NotFound("Status")
	}
	s.UpdatedAt = time.Now().UTC()
	m.rows[s.ID] = s
	return nil
}

func (m *memStatuses) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return apperr.NotFound("Status")
	}
	delete(m.rows, id)
	return nil
}

func matchStatus(s *entity.AlbumStatus, f repository.StatusFilter) bool {
	if f.UserID != nil && s.UserID != *f.UserID {
		return false
	}
	if f.SpotifyAlbumID != "" && s.SpotifyAlbumID != f.SpotifyAlbumID {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.IsFavorite != nil && s.IsFavorite != *f.IsFavorite {
		return false
	}
	return true
}

func (m *memStatuses) List(_ context.Context, f repository.StatusFilter, limit, offset int) ([]*entity.AlbumStatus, error) {
	var all []*entity.AlbumStatus
	for _, s := range m.rows {
		if matchStatus(s, f) {
			all = append(all, s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memStatuses) Count(_ context.Context, f repository.StatusFilter) (int64, error) {
	var n int64
	for _, s := range m.rows {
		if matchStatus(s, f) {
			n++
		}
	}
	return n, nil
}

// stubCatalog serves canned albums in place of the Spotify client.
type stubCatalog struct {
	albums map[string]*spotify.Album
	hits   []spotify.Album
	tokens *spotify.UserTokens
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{albums: map[string]*spotify.Album{}}
}

func (s *stubCatalog) add(a spotify.Album) {
	s.albums[a.ID] = &a
	s.hits = append(s.hits, a)
}

func (s *stubCatalog) GetAlbum(_ context.Context, id string) (*spotify.Album, error) {
	a, ok := s.albums[id]
	if !ok {
		return nil, apperr.NotFound("Album")
	}
	return a, nil
}

func (s *stubCatalog) SearchAlbums(_ context.Context, _ string, limit, offset int) (int64, []spotify.Album, error) {
	if offset >= len(s.hits) {
		return int64(len(s.hits)), nil, nil
	}
	end := offset + limit
	if end > len(s.hits) {
		end = len(s.hits)
	}
	return int64(len(s.hits)), s.hits[offset:end], nil
}

func (s *stubCatalog) AuthorizeURL(state string) string {
	return "https://accounts.example/authorize?state=" + state
}

func (s *stubCatalog) ExchangeCode(_ context.Context, code string) (*spotify.UserTokens, error) {
	if s.tokens == nil {
		return nil, apperr.Auth("Could not validate credentials")
	}
	return s.tokens, nil
}

var (
	_ repository.UserRepository   = (*memUsers)(nil)
	_ repository.FollowRepository = (*memFollows)(nil)
	_ repository.ReviewRepository = (*memReviews)(nil)
	_ repository.StatusRepository = (*memStatuses)(nil)
)
