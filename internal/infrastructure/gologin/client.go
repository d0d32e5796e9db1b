package gologin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"
)

const DefaultAPIURL = "https://api.gologin.com"

// Client talks to the GoLogin REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  output.LoggerPort
}

type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Logger  output.LoggerPort
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAPIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
	}
}

type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gologin %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OS        string    `json:"os"`
	Navigator Navigator `json:"navigator"`
	Proxy     Proxy     `json:"proxy"`

	// Set for "gologin" and "tor" proxy modes.
	AutoProxyServer   string `json:"autoProxyServer"`
	AutoProxyUsername string `json:"autoProxyUsername"`
	AutoProxyPassword string `json:"autoProxyPassword"`
}

type Navigator struct {
	UserAgent  string `json:"userAgent"`
	Resolution string `json:"resolution"`
	Language   string `json:"language"`
	Platform   string `json:"platform"`
}

type Proxy struct {
	Mode     string `json:"mode"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) Profile(ctx context.Context, profileID string) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/browser/"+url.PathEscape(profileID), nil, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = profileID
	}
	return &p, nil
}

func (c *Client) Cookies(ctx context.Context, profileID string) ([]entity.Cookie, error) {
	var raw []apiCookie
	if err := c.do(ctx, http.MethodGet, "/browser/"+url.PathEscape(profileID)+"/cookies", nil, &raw); err != nil {
		return nil, err
	}
	return fromAPICookies(raw), nil
}

func (c *Client) UploadCookies(ctx context.Context, profileID string, cookies []entity.Cookie) error {
	return c.do(ctx, http.MethodPost, "/browser/"+url.PathEscape(profileID)+"/cookies", toAPICookies(cookies), nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gologin %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if c.logger != nil {
		c.logger.Debug("GoLogin API call",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"duration", time.Since(start))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
