// Package spotify implements the Spotify Web API client used for album
// lookups, album search, and per-user account linking. Service-level calls
// authenticate with a cached client-credentials token; the user link flow
// uses the authorization-code grant.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tonearm/tonearm/pkg/apperr"
)

// Config carries the catalog credentials and endpoints. The URL fields are
// overridable so tests can point the client at a local server.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	APIBase      string
}

type Client struct {
	cfg   Config
	http  *http.Client
	cache *tokenCache
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: 10 * time.Second},
		cache: &tokenCache{},
	}
}

// Album is the catalog album shape exposed to the rest of the service.
type Album struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Year     *int   `json:"year"`
	CoverURL string `json:"cover_url"`
}

// UserTokens is the result of an authorization-code exchange.
type UserTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type albumPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	Artists     []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

func mapAlbum(p albumPayload) Album {
	a := Album{ID: p.ID, Title: p.Name}
	if len(p.Artists) > 0 {
		a.Artist = p.Artists[0].Name
	}
	if len(p.Images) > 0 {
		a.CoverURL = p.Images[0].URL
	}
	// release_date is "2016", "2016-08" or "2016-08-20"
	if len(p.ReleaseDate) >= 4 {
		if y, err := strconv.Atoi(p.ReleaseDate[:4]); err == nil {
			a.Year = &y
		}
	}
	return a
}

// GetAlbum fetches one album by its catalog id.
func (c *Client) GetAlbum(ctx context.Context, id string) (*Album, error) {
	body, err := c.apiGet(ctx, "/albums/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var p albumPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("spotify: decode album: %w", err)
	}
	a := mapAlbum(p)
	return &a, nil
}

// SearchAlbums queries the catalog and passes its paging envelope through.
func (c *Client) SearchAlbums(ctx context.Context, q string, limit, offset int) (int64, []Album, error) {
	query := url.Values{}
	query.Set("q", q)
	query.Set("type", "album")
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	body, err := c.apiGet(ctx, "/search", query)
	if err != nil {
		return 0, nil, err
	}

	var p struct {
		Albums struct {
			Total int64          `json:"total"`
			Items []albumPayload `json:"items"`
		} `json:"albums"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return 0, nil, fmt.Errorf("spotify: decode search: %w", err)
	}

	items := make([]Album, 0, len(p.Albums.Items))
	for _, raw := range p.Albums.Items {
		items = append(items, mapAlbum(raw))
	}
	return p.Albums.Total, items, nil
}

// AuthorizeURL builds the user-facing authorization URL for account linking.
// state binds the callback to the initiating user.
func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", c.cfg.RedirectURI)
	q.Set("scope", "user-read-email")
	q.Set("state", state)
	return c.cfg.AuthURL + "?" + q.Encode()
}

// ExchangeCode trades an authorization code for the user's token pair.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*UserTokens, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.cfg.RedirectURI)

	var p struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := c.postToken(ctx, form, &p); err != nil {
		return nil, err
	}
	return &UserTokens{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(p.ExpiresIn) * time.Second).UTC(),
	}, nil
}

// fetchClientToken requests a fresh client-credentials token. Called by the
// cache under its lock.
func (c *Client) fetchClientToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	var p struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := c.postToken(ctx, form, &p); err != nil {
		return "", 0, err
	}
	if p.AccessToken == "" {
		return "", 0, fmt.Errorf("spotify: token response missing access_token")
	}
	return p.AccessToken, time.Duration(p.ExpiresIn) * time.Second, nil
}

func (c *Client) postToken(ctx context.Context, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("spotify: token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify: token endpoint returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// apiGet performs an authenticated GET against the catalog. A 401 answer
// invalidates the cached token and retries once with a fresh one. A 404
// maps to the domain not-found error; every resource this client reads is
// an album.
func (c *Client) apiGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var lastStatus int
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.cache.getOrRefresh(ctx, c.fetchClientToken)
		if err != nil {
			return nil, err
		}

		u := c.cfg.APIBase + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("spotify: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("spotify: read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusUnauthorized:
			lastStatus = resp.StatusCode
			c.cache.invalidate()
			continue
		case resp.StatusCode == http.StatusNotFound:
			return nil, apperr.NotFound("Album")
		default:
			return nil, fmt.Errorf("spotify: api returned %d", resp.StatusCode)
		}
	}
	return nil, fmt.Errorf("spotify: api returned %d after token refresh", lastStatus)
}
