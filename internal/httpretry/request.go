package httpretry

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// Request describes one logical call. Body is replayed on every attempt.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte

	readErr error
}

// FormRequest builds a POST with an application/x-www-form-urlencoded body.
func FormRequest(rawURL string, header http.Header, form url.Values) Request {
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	return Request{
		Method: http.MethodPost,
		URL:    rawURL,
		Header: h,
		Body:   []byte(form.Encode()),
	}
}

// JSONRequest builds a POST with body encoded as JSON.
func JSONRequest(rawURL string, header http.Header, body any) (Request, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return Request{}, err
	}
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Content-Type", "application/json")
	return Request{
		Method: http.MethodPost,
		URL:    rawURL,
		Header: h,
		Body:   b,
	}, nil
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}
