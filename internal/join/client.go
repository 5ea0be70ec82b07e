package join

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Config holds registration API settings.
type Config struct {
	BaseURL   string        `env:"BASE_URL" envDefault:"https://joinrpg.ru"`
	ProjectID int           `env:"PROJECT_ID" envDefault:"329"`
	Login     string        `env:"USER"`
	Password  string        `env:"PASSWORD"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"120s"`
}

const tokenPath = "/x-api/token"

// Client talks to the JoinRPG game API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a new API client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CharacterLink returns the API path of a character record.
func (c *Client) CharacterLink(id int) string {
	return fmt.Sprintf("%s/%d/", c.charactersPath(), id)
}

func (c *Client) charactersPath() string {
	return fmt.Sprintf("/x-game-api/%d/characters", c.cfg.ProjectID)
}

// Login exchanges the configured credentials for a bearer token.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.cfg.Login)
	form.Set("password", c.cfg.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("join.Login: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(req, &out); err != nil {
		return fmt.Errorf("join.Login: %w", err)
	}
	if out.AccessToken == "" {
		return fmt.Errorf("join.Login: empty access token")
	}
	c.mu.Lock()
	c.token = out.AccessToken
	c.mu.Unlock()
	return nil
}

// CharacterList returns characters modified since the given time.
func (c *Client) CharacterList(ctx context.Context, since time.Time) ([]Character, error) {
	params := url.Values{}
	params.Set("modifiedSince", since.Format("2006-01-02T15:04:00.000"))

	var list []Character
	if err := c.get(ctx, c.charactersPath()+"?"+params.Encode(), &list); err != nil {
		return nil, fmt.Errorf("join.CharacterList: %w", err)
	}
	return list, nil
}

// Character fetches a full character record by its API link.
func (c *Client) Character(ctx context.Context, link string) (*CharacterInfo, error) {
	var ch CharacterInfo
	if err := c.get(ctx, link, &ch); err != nil {
		return nil, fmt.Errorf("join.Character %s: %w", link, err)
	}
	return &ch, nil
}

// Metadata fetches the project field definitions.
func (c *Client) Metadata(ctx context.Context) (*Metadata, error) {
	var m Metadata
	path := fmt.Sprintf("/x-game-api/%d/metadata/fields", c.cfg.ProjectID)
	if err := c.get(ctx, path, &m); err != nil {
		return nil, fmt.Errorf("join.Metadata: %w", err)
	}
	return &m, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token == "" {
		return ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Body: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		httpErr := &HTTPError{StatusCode: resp.StatusCode}
		var apiErr struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			httpErr.Code, httpErr.Description = apiErr.Error, apiErr.Description
		} else {
			httpErr.Body = string(respBody)
		}
		return httpErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
