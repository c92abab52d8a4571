package foreup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/example/tee-time-sniper/internal/httpretry"
	"github.com/rs/zerolog"
)

const (
	loginPath        = "/booking/users/login"
	pendingPath      = "/booking/pending_reservation"
	reservationsPath = "/booking/users/reservations"
)

// Config selects the ForeUP deployment and course to book against.
type Config struct {
	BaseURL string
	APIKey  string
	Course  Course
}

func DefaultConfig() Config {
	return Config{BaseURL: DefaultBaseURL, APIKey: DefaultAPIKey, Course: SunkenMeadow()}
}

// Client talks to the ForeUP golfer booking API. Every call goes through the
// retrying client; nothing is retried here on top of that.
type Client struct {
	rc  *httpretry.Client
	cfg Config
	log zerolog.Logger
}

func New(rc *httpretry.Client, cfg Config, log zerolog.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{rc: rc, cfg: cfg, log: log.With().Str("component", "foreup").Logger()}
}

func (c *Client) Course() Course { return c.cfg.Course }

type loginResponse struct {
	JWT string `json:"jwt" validate:"required"`
}

// Login exchanges account credentials for a short-lived JWT.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{
		"username":         {email},
		"password":         {password},
		"booking_class_id": {""},
		"api_key":          {c.cfg.APIKey},
		"course_id":        {itoa(c.cfg.Course.ID)},
	}

	var out loginResponse
	if err := c.rc.DoJSON(ctx, httpretry.FormRequest(c.url(loginPath), c.baseHeader(), form), &out); err != nil {
		return "", fmt.Errorf("foreup login: %w", err)
	}
	c.log.Debug().Msg("login succeeded")
	return out.JWT, nil
}

func (c *Client) url(path string) string { return c.cfg.BaseURL + path }

func (c *Client) baseHeader() http.Header {
	h := http.Header{}
	h.Set("X-Requested-With", "XMLHttpRequest")
	h.Set("X-Fu-Golfer-Location", "foreup")
	return h
}

func (c *Client) authHeader(jwt string) http.Header {
	h := c.baseHeader()
	h.Set("Api-Key", c.cfg.APIKey)
	h.Set("X-Authorization", "Bearer "+jwt)
	return h
}

func itoa(n int) string { return strconv.Itoa(n) }
