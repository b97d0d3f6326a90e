package api

import (
	"fmt"
	"net/url"
	"strings"
)

// NewClientFromCredentials validates the project URL and key and returns a
// client for them. Errors are AuthenticationError so the CLI can point the
// user at `auth login`.
func NewClientFromCredentials(baseURL, apiKey string, opts ...ClientOption) (PostsAPI, error) {
	baseURL = strings.TrimSpace(baseURL)
	apiKey = strings.TrimSpace(apiKey)

	if baseURL == "" {
		return nil, AuthenticationError{Message: "no project URL configured"}
	}
	if apiKey == "" {
		return nil, AuthenticationError{Message: "no API key configured"}
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return nil, ValidationError{Message: fmt.Sprintf("invalid project URL: %q", baseURL)}
	}

	return NewClient(baseURL, apiKey, opts...), nil
}
