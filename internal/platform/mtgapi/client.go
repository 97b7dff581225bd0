package mtgapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// PingMultiverseID is a long-lived printing used to check the upstream is reachable.
const PingMultiverseID = 386616

var (
	ErrNotFound         = errors.New("card not found")
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

type Config struct {
	Domain    string
	Version   string
	Resource  string
	Timeout   time.Duration
	RPS       int
	UserAgent string
}

// Client talks to the magicthegathering.io card API. It never retries:
// failures are returned to the caller as-is.
type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Every(time.Second / time.Duration(cfg.RPS))
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "proxydeck/1.0"
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		baseURL: strings.Join([]string{
			strings.TrimRight(cfg.Domain, "/"),
			strings.Trim(cfg.Version, "/"),
			strings.Trim(cfg.Resource, "/"),
		}, "/"),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// BaseURL returns {domain}/{version}/{resource}.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetCards returns every printing whose name matches exactly. An empty match
// list is an empty slice; a 404 response is ErrNotFound.
func (c *Client) GetCards(ctx context.Context, name string) ([]Card, error) {
	q := url.Values{}
	q.Set("name", `"`+strings.TrimSpace(name)+`"`)
	u := c.baseURL + "?" + q.Encode()

	var res CardsResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	if res.Cards == nil {
		return []Card{}, nil
	}
	return res.Cards, nil
}

// GetCard returns one printing by multiverse id.
func (c *Client) GetCard(ctx context.Context, multiverseID int) (*Card, error) {
	u := fmt.Sprintf("%s/%d", c.baseURL, multiverseID)

	var res CardResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	if res.Card == nil {
		return nil, ErrNotFound
	}
	return res.Card, nil
}

// Ping fetches a known printing.
func (c *Client) Ping(ctx context.Context) error {
	card, err := c.GetCard(ctx, PingMultiverseID)
	if err != nil {
		return fmt.Errorf("ping upstream: %w", err)
	}
	if card.ImageURL == "" {
		return fmt.Errorf("ping upstream: card %d has no image", PingMultiverseID)
	}
	return nil
}

// OpenImage starts a download of an image. The caller closes the body.
func (c *Client) OpenImage(ctx context.Context, imageURL string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, imageURL, "image/*")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	resp, err := c.do(ctx, url, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, url, accept string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp, nil
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrNotFound
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
}

// MultiverseID accepts both numeric and quoted multiverse ids.
type MultiverseID int

func (m *MultiverseID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("multiverseid %s: %w", data, err)
	}
	*m = MultiverseID(n)
	return nil
}
