package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lox/notion-gist/internal/config"
)

const (
	defaultBaseURL      = config.DefaultNotionBaseURL
	defaultNotionAPIRev = config.DefaultNotionVersion

	// maxPageSize is the largest page_size the children endpoint accepts.
	maxPageSize = 100
)

type Client struct {
	httpClient    *http.Client
	baseURL       string
	notionVersion string
	token         string
}

func NewClient(cfg config.APIConfig, token string) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("Notion API token is required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	notionVersion := strings.TrimSpace(cfg.NotionVersion)
	if notionVersion == "" {
		notionVersion = defaultNotionAPIRev
	}

	return &Client{
		httpClient:    &http.Client{Timeout: 20 * time.Second},
		baseURL:       baseURL,
		notionVersion: notionVersion,
		token:         token,
	}, nil
}

// ListBlockChildren fetches one page of the children of blockID. An empty
// cursor requests the first page.
func (c *Client) ListBlockChildren(ctx context.Context, blockID, cursor string) (*BlockChildren, error) {
	blockID = strings.TrimSpace(blockID)
	if blockID == "" {
		return nil, fmt.Errorf("block ID is required")
	}

	query := url.Values{}
	query.Set("page_size", strconv.Itoa(maxPageSize))
	if cursor != "" {
		query.Set("start_cursor", cursor)
	}

	var out BlockChildren
	path := "/blocks/" + url.PathEscape(blockID) + "/children?" + query.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyToken(ctx context.Context) error {
	var me struct {
		Object string `json:"object"`
		ID     string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, &me); err != nil {
		return err
	}
	if strings.TrimSpace(me.ID) == "" {
		return fmt.Errorf("verify Notion API token: empty user id in response")
	}
	return nil
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
	req.Header.Set("accept", "application/json")
	req.Header.Set("authorization", "Bearer "+c.token)
	req.Header.Set("notion-version", c.notionVersion)
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
		return newError(method, path, resp, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse Notion API response for %s %s: %w", method, path, err)
	}
	return nil
}
