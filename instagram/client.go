// Package instagram is a small client for the Instagram Graph API media listing
package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL    = "https://graph.instagram.com"
	DefaultFetchLimit = 20

	mediaFields = "id,caption,media_type,media_url,thumbnail_url,permalink,timestamp"
)

type Client struct {
	http    *http.Client
	baseURL *url.URL
	creds   CredentialsFunc
	limit   int
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

// WithCredentials sets the func consulted on every FetchMedia call.
// Credentials are not cached by the client so rotated tokens apply immediately.
func WithCredentials(fn CredentialsFunc) Option {
	return func(c *Client) { c.creds = fn }
}

// WithStaticCredentials is WithCredentials for fixed values
func WithStaticCredentials(userID, accessToken string) Option {
	return WithCredentials(func() Credentials {
		return Credentials{UserID: userID, AccessToken: accessToken}
	})
}

func WithFetchLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limit = n
		}
	}
}

func New(opts ...Option) *Client {
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:    http.DefaultClient,
		baseURL: u,
		creds:   func() Credentials { return Credentials{} },
		limit:   DefaultFetchLimit,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchMedia lists the most recent media of the configured account, newest
// first, capped at the fetch limit. It returns ErrMissingConfig without any
// network activity when credentials are incomplete, and *UpstreamError for
// every transport, status or decoding failure.
func (c *Client) FetchMedia(ctx context.Context) ([]Media, error) {
	creds := c.creds()
	if !creds.Complete() {
		return nil, ErrMissingConfig
	}

	u := *c.baseURL
	u.Path = path.Join(u.Path, creds.UserID, "media")
	q := u.Query()
	q.Set("fields", mediaFields)
	q.Set("limit", strconv.Itoa(c.limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	// the token travels as a bearer header so it never shows up in logged URLs
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken, TokenType: "Bearer"})
	hc := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.http), ts)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("GET %s: %w", u.Path, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("GET %s: %s: %s", u.Path, resp.Status, string(b)),
		}
	}

	var page mediaPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode media: %w", err)}
	}
	if page.Data == nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode media: missing data array")}
	}

	if len(page.Data) > c.limit {
		page.Data = page.Data[:c.limit]
	}
	return page.Data, nil
}
