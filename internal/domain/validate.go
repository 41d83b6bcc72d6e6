package domain

import (
	"net/url"
	"strings"
)

// ValidateURL checks that raw parses as an absolute URL.
// Returns the trimmed URL on success.
func ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &ValidationError{Field: "url", Reason: "must not be empty"}
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", &ValidationError{Field: "url", Reason: err.Error()}
	}
	if !u.IsAbs() || u.Host == "" {
		return "", &ValidationError{Field: "url", Reason: "must be an absolute URL"}
	}

	return trimmed, nil
}

// NewBookmarkInput normalizes the creation input: url and title are
// trimmed, and title falls back to the trimmed url when blank.
func NewBookmarkInput(rawURL, rawTitle string) (urlStr, title string, err error) {
	urlStr, err = ValidateURL(rawURL)
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(rawTitle)
	if title == "" {
		title = urlStr
	}

	return urlStr, title, nil
}
