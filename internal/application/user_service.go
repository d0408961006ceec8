package application

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/tonearm/tonearm/internal/domain/entity"
	"github.com/tonearm/tonearm/internal/domain/repository"
	"github.com/tonearm/tonearm/pkg/helpers"
)

// UserSearchHit is one result from the search index. Email is indexed for
// matching but never returned.
type UserSearchHit struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
}

// ProfilePictureUpload is the result of requesting a profile picture
// upload: a presigned PUT URL and the public URL stored on the profile.
type ProfilePictureUpload struct {
	UploadURL      string
	ProfilePicture string
}

// UserService owns account reads, deletion, profile picture uploads and the
// Elasticsearch mirror of the users table. ES and S3 are optional; without
// them search returns nothing and uploads are rejected.
type UserService struct {
	Users        repository.UserRepository
	ES           *elasticsearch.Client
	ESUsersIndex string
	S3           *helpers.S3Storage
	Logger       *logrus.Logger
}

func NewUserService(users repository.UserRepository, es *elasticsearch.Client, esUsersIndex string, s3 *helpers.S3Storage, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, ES: es, ESUsersIndex: esUsersIndex, S3: s3, Logger: logger}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return s.Users.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return s.Users.GetByUsername(ctx, username)
}

// List returns one page of accounts plus the total count.
func (s *UserService) List(ctx context.Context, page helpers.Page) (int64, []*entity.User, error) {
	total, err := s.Users.Count(ctx)
	if err != nil {
		return 0, nil, err
	}
	users, err := s.Users.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return 0, nil, err
	}
	return total, users, nil
}

// Delete removes an account. Only the owner may delete it; the follow
// edges, reviews and statuses go with it via ON DELETE CASCADE.
func (s *UserService) Delete(ctx context.Context, actor *entity.User, targetID int64) error {
	target, err := s.Users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := requireOwner(actor.ID, target.ID, "delete", "user"); err != nil {
		return err
	}
	if err := s.Users.Delete(ctx, target.ID); err != nil {
		return err
	}
	s.removeFromIndex(ctx, target.ID)
	return nil
}

// PresignProfilePicture reserves an object key, presigns a PUT for the
// client to upload to, and stores the resulting public URL on the profile.
func (s *UserService) PresignProfilePicture(ctx context.Context, user *entity.User, filename, contentType string) (*ProfilePictureUpload, error) {
	if s.S3 == nil {
		return nil, errors.New("profile picture storage is not configured")
	}
	key := helpers.RandomObjectKey("avatars") + strings.ToLower(filepath.Ext(filename))
	uploadURL, err := s.S3.PresignUpload(ctx, key, contentType)
	if err != nil {
		return nil, err
	}
	publicURL := s.S3.PublicURL(key)
	user.ProfilePicture = &publicURL
	if err := s.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.IndexUser(ctx, user)
	return &ProfilePictureUpload{UploadURL: uploadURL, ProfilePicture: publicURL}, nil
}

// IndexUser mirrors an account into Elasticsearch. Best-effort: failures
// are logged and swallowed so account writes never depend on the index.
func (s *UserService) IndexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":              u.ID,
		"username":        u.Username,
		"email":           u.Email,
		"profile_picture": u.ProfilePicture,
		"created_at":      u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":      u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: strconv.FormatInt(u.ID, 10), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

func (s *UserService) removeFromIndex(ctx context.Context, id int64) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// SearchUsers performs a multi_match search on username and email.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) (int64, []UserSearchHit, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return 0, []UserSearchHit{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "email"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source UserSearchHit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, nil, err
	}

	out := make([]UserSearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return parsed.Hits.Total.Value, out, nil
}
