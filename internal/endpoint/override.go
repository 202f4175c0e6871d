// Package endpoint derives the analysis server URLs a quality gate check requests.
package endpoint

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrInvalidURL is returned when a URL or override authority cannot be parsed
var ErrInvalidURL = errors.New("invalid url")

// Rewrite replaces the scheme, userinfo and host:port of original with those of
// overrideAuthority. Path, query and fragment of original are kept unchanged; any path
// on overrideAuthority is ignored.
func Rewrite(original, overrideAuthority string) (string, error) {
	u, err := parseAbsolute(original)
	if err != nil {
		return "", err
	}
	o, err := parseAbsolute(overrideAuthority)
	if err != nil {
		return "", err
	}

	u.Scheme = o.Scheme
	u.User = o.User
	u.Host = o.Host
	return u.String(), nil
}

func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidURL, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q: scheme and host are required", ErrInvalidURL, raw)
	}
	return u, nil
}
