package pixiv

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

const (
	appBaseURL   = "https://app-api.pixiv.net"
	oauthURL     = "https://oauth.secure.pixiv.net/auth/token"
	imageReferer = "https://app-api.pixiv.net/"

	// Official app credentials; the API refuses token grants from
	// anything else.
	clientID     = "MOBrBDS8blbauoSck0ZfDbtuzpyT"
	clientSecret = "lsACyCD94FhDUtGTXi3QzcFE2uU1hqtDaKeqrdwj"
	hashSecret   = "28c1fdd170a5204386cb1313c7077b34f83e4aaf4aa829ce78c231e05b0bae2c"
)

// Client talks to the remote API. It is constructed once at process start
// and passed into every component that needs it; there is no package-level
// client handle.
type Client struct {
	httpClient *http.Client
	userAgent  string

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	userID       int64
}

func NewClient(httpClient *http.Client, userAgent string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// UserID returns the id of the authenticated account, or 0 before the
// first successful authentication.
func (c *Client) UserID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Client) RefreshToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshToken
}

func (c *Client) SetRefreshToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshToken = strings.TrimSpace(token)
}

// IsAuthExpiry reports whether the error is an expired-grant response,
// recoverable by a refresh-token exchange.
func (e *APIError) IsAuthExpiry() bool {
	return strings.Contains(strings.ToLower(e.Message), "invalid_grant")
}

type authResponse struct {
	Response struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		User         struct {
			ID json.Number `json:"id"`
		} `json:"user"`
	} `json:"response"`
}

// Login performs the initial password-based authentication and returns
// the refresh token to persist for later runs.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	}
	if err := c.authRequest(ctx, form); err != nil {
		return "", err
	}
	return c.RefreshToken(), nil
}

// Authenticate exchanges the stored refresh token for a fresh access
// token. The retry gate calls this when a request fails with an expired
// grant.
func (c *Client) Authenticate(ctx context.Context) error {
	token := c.RefreshToken()
	if token == "" {
		return fmt.Errorf("no refresh token available")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {token},
	}
	return c.authRequest(ctx, form)
}

func (c *Client) authRequest(ctx context.Context, form url.Values) error {
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	form.Set("get_secure_url", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oauthURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}

	// The OAuth endpoint rejects requests without a client-time hash.
	now := time.Now().UTC().Format("2006-01-02T15:04:05+00:00")
	req.Header.Set("X-Client-Time", now)
	req.Header.Set("X-Client-Hash", fmt.Sprintf("%x", md5.Sum([]byte(now+hashSecret))))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-us")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp.StatusCode, body)
	}

	var parsed authResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("failed to unmarshal auth response: %w", err)
	}
	if parsed.Response.AccessToken == "" {
		return &DecodeError{Entity: "auth", Field: "response.access_token"}
	}

	uid, err := parsed.Response.User.ID.Int64()
	if err != nil {
		return &DecodeError{Entity: "auth", Field: "response.user.id"}
	}

	c.mu.Lock()
	c.accessToken = parsed.Response.AccessToken
	if parsed.Response.RefreshToken != "" {
		c.refreshToken = parsed.Response.RefreshToken
	}
	c.userID = uid
	c.mu.Unlock()

	return nil
}

// get performs an authenticated GET against the app API and unmarshals
// the response body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		appBaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-us")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response for %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp.StatusCode, body)
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response for %s: %w", path, err)
	}

	return nil
}

// decodeAPIError turns a non-200 response into an APIError, falling back
// to the raw body when the payload has no recognizable error shape.
func decodeAPIError(status int, body []byte) error {
	var payload struct {
		Error struct {
			Message     string `json:"message"`
			UserMessage string `json:"user_message"`
		} `json:"error"`
		Errors struct {
			System struct {
				Message string `json:"message"`
			} `json:"system"`
		} `json:"errors"`
	}

	if err := sonic.Unmarshal(body, &payload); err == nil {
		msg := payload.Error.Message
		if msg == "" {
			msg = payload.Error.UserMessage
		}
		if msg == "" {
			msg = payload.Errors.System.Message
		}
		if msg != "" {
			return &APIError{Status: status, Message: msg}
		}
	}

	return &APIError{Status: status, Message: string(body)}
}

// Download fetches url into dir, writing through a temp file so a partial
// fetch never looks like a finished page. An empty name means the last
// path segment of the URL. Existing files are overwritten.
func (c *Client) Download(ctx context.Context, rawURL, dir, name string) error {
	if name == "" {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid download URL %q: %w", rawURL, err)
		}
		name = filepath.Base(parsed.Path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}
	// The image CDN refuses requests without an app referer.
	req.Header.Set("Referer", imageReferer)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s failed: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return decodeAPIError(resp.StatusCode, body)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}

	return nil
}
