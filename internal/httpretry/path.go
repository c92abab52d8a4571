package httpretry

import "net/url"

const maxURLLength = 50

// SafePath returns the path of rawURL for logs and error messages so query
// strings never leak. Strings that are not absolute URLs are truncated.
func SafePath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		if len(rawURL) > maxURLLength {
			return rawURL[:maxURLLength] + "..."
		}
		return rawURL
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}
