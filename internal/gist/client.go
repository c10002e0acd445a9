package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lox/notion-gist/internal/config"
)

const apiVersion = "2022-11-28"

// Error is a non-success response from the GitHub API.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gist API %s %s failed (%d): %s", e.Method, e.Path, e.StatusCode, e.Message)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// File is one file of a gist as returned by the API.
type File struct {
	Filename string `json:"filename"`
	Size     int    `json:"size"`
	RawURL   string `json:"raw_url"`
	Content  string `json:"content"`
}

type Gist struct {
	ID      string          `json:"id"`
	HTMLURL string          `json:"html_url"`
	Files   map[string]File `json:"files"`
}

func NewClient(cfg config.GistConfig) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, fmt.Errorf("gist token is required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = config.DefaultGistBaseURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}, nil
}

// UpdateFile replaces the content of one file of a gist. The GitHub API
// deletes a file whose content is empty, so callers must not pass "".
func (c *Client) UpdateFile(ctx context.Context, gistID, filename, content string) (*Gist, error) {
	gistID = strings.TrimSpace(gistID)
	if gistID == "" {
		return nil, fmt.Errorf("gist ID is required")
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("gist filename is required")
	}
	if content == "" {
		return nil, fmt.Errorf("refusing to publish empty content to %s (it would delete the file)", filename)
	}

	payload := map[string]any{
		"files": map[string]any{
			filename: map[string]any{
				"content": content,
			},
		},
	}

	var out Gist
	if err := c.doJSON(ctx, http.MethodPatch, "/gists/"+url.PathEscape(gistID), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyToken checks the token against GET /user and returns the login.
func (c *Client) VerifyToken(ctx context.Context) (string, error) {
	var user struct {
		Login string `json:"login"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/user", nil, &user); err != nil {
		return "", err
	}
	if strings.TrimSpace(user.Login) == "" {
		return "", fmt.Errorf("verify gist token: empty login in response")
	}
	return user.Login, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/vnd.github+json")
	req.Header.Set("authorization", "Bearer "+c.token)
	req.Header.Set("x-github-api-version", apiVersion)
	if payload != nil {
		req.Header.Set("content-type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		message := strings.TrimSpace(string(respBody))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		} else {
			var errResp struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(respBody, &errResp); err == nil && strings.TrimSpace(errResp.Message) != "" {
				message = strings.TrimSpace(errResp.Message)
			}
		}
		return &Error{Method: method, Path: path, StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse gist API response for %s %s: %w", method, path, err)
	}
	return nil
}
