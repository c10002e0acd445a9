package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Error is a non-success response from the Notion API.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("Notion API %s %s failed (%d): %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// IsStatusError reports whether err carries a Notion API error response.
func IsStatusError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr)
}

// IsRetryable reports whether err is a rate limit or a server-side failure.
func IsRetryable(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
}

func newError(method, path string, resp *http.Response, body []byte) *Error {
	e := &Error{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}

	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	} else {
		var errResp struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil {
			e.Code = strings.TrimSpace(errResp.Code)
			if msg := strings.TrimSpace(errResp.Message); msg != "" {
				e.Message = msg
			}
		}
	}

	if s := strings.TrimSpace(resp.Header.Get("Retry-After")); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			e.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return e
}
