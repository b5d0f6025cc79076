package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"forge-research/internal/model"

	"golang.org/x/time/rate"
)

// ErrSessionRateLimit is returned once a session's request budget is spent.
var ErrSessionRateLimit = errors.New("reddit: session request budget exhausted")

// Client talks to the platform content API using OAuth2 client credentials.
// The bearer token and the inter-call rate limiter are shared across all
// sessions and guarded for concurrent use.
type Client struct {
	baseURL      string
	authURL      string
	clientID     string
	clientSecret string
	userAgent    string
	client       *http.Client
	limiter      *rate.Limiter

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

type Config struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	BaseURL      string        // e.g., "https://oauth.reddit.com"
	AuthURL      string        // token endpoint
	MinInterval  time.Duration // minimum delay between outbound calls
	Timeout      time.Duration // per-call HTTP timeout
}

// tokenRefreshWindow is how long before reported expiry a token is refetched.
const tokenRefreshWindow = 60 * time.Second

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://oauth.reddit.com"
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = "https://www.reddit.com/api/v1/access_token"
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 1100 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		authURL:      cfg.AuthURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		userAgent:    cfg.UserAgent,
		client:       &http.Client{Timeout: cfg.Timeout},
		limiter:      rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
	}
}

// Session returns a view of the client with a per-run call budget. Listing and
// thread calls count against the budget; token refreshes do not.
func (c *Client) Session(maxCalls int) *Session {
	if maxCalls <= 0 {
		maxCalls = 30
	}
	return &Session{c: c, remaining: maxCalls}
}

// Session enforces the per-run request cap on top of a shared Client.
type Session struct {
	c         *Client
	mu        sync.Mutex
	remaining int
}

func (s *Session) spend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remaining <= 0 {
		return ErrSessionRateLimit
	}
	s.remaining--
	return nil
}

// HotPosts fetches a community's hot listing, dropping stickied entries and
// anything without a title.
func (s *Session) HotPosts(ctx context.Context, community string, limit int) ([]model.Post, error) {
	if err := s.spend(); err != nil {
		return nil, err
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	path := fmt.Sprintf("/r/%s/hot", url.PathEscape(community))
	var lst listing
	if err := s.c.get(ctx, path, q, &lst); err != nil {
		return nil, err
	}
	posts := make([]model.Post, 0, len(lst.Data.Children))
	for _, ch := range lst.Data.Children {
		p := ch.Data
		if strings.TrimSpace(p.Title) == "" || p.Stickied {
			continue
		}
		posts = append(posts, convertPost(p))
	}
	return posts, nil
}

// Thread fetches a post with its comment tree. It returns (nil, nil) when the
// platform has no data for the id or the tree is empty after filtering.
func (s *Session) Thread(ctx context.Context, postID string) (*model.Thread, error) {
	if err := s.spend(); err != nil {
		return nil, err
	}
	q := url.Values{"limit": {"50"}, "depth": {strconv.Itoa(maxCommentDepth)}}
	path := fmt.Sprintf("/comments/%s", url.PathEscape(postID))

	var raw []json.RawMessage
	if err := s.c.get(ctx, path, q, &raw); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if len(raw) < 2 {
		return nil, nil
	}
	var postLst listing
	if err := json.Unmarshal(raw[0], &postLst); err != nil {
		return nil, fmt.Errorf("reddit: thread post payload: %w", err)
	}
	if len(postLst.Data.Children) == 0 {
		return nil, nil
	}
	post := convertPost(postLst.Data.Children[0].Data)

	var commentLst commentListing
	if err := json.Unmarshal(raw[1], &commentLst); err != nil {
		return nil, fmt.Errorf("reddit: thread comment payload: %w", err)
	}
	comments := parseComments(commentLst.Data.Children, 1)
	if len(comments) == 0 {
		return nil, nil
	}
	return &model.Thread{Post: post, Comments: comments}, nil
}

// get performs a rate-limited, authenticated GET and decodes the JSON body.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: string(b)}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ensureToken returns a bearer token, fetching a fresh one when the cached
// token is within the refresh window of its expiry.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenRefreshWindow)) {
		return c.token, nil
	}
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("reddit: token status %d: %s", resp.StatusCode, string(b))
	}
	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("reddit: token payload: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("reddit: token response missing access_token")
	}
	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.token, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("reddit: status %d: %s", e.code, e.body)
}
