package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/briangreenhill/socialfeed/feed"
)

// ProxyClient reads posts from the feed proxy endpoint. It is the Acquirer
// used in server mode.
type ProxyClient struct {
	http    *http.Client
	baseURL *url.URL
	network string
}

type ClientOption func(*ProxyClient)

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *ProxyClient) { c.http = h }
}

func WithNetwork(network string) ClientOption {
	return func(c *ProxyClient) { c.network = network }
}

// NewProxyClient creates a client for the proxy served at baseURL
func NewProxyClient(baseURL string, opts ...ClientOption) (*ProxyClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	c := &ProxyClient{http: http.DefaultClient, baseURL: u, network: feed.NetworkInstagram}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type errorBody struct {
	Error string `json:"error"`
}

// Acquire implements Acquirer
func (c *ProxyClient) Acquire(ctx context.Context, limit int) (feed.Page, error) {
	u := *c.baseURL
	u.Path = path.Join(u.Path, "api", c.network)
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return feed.Page{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return feed.Page{}, fmt.Errorf("GET %s: %w", u.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if json.Unmarshal(b, &eb) == nil && eb.Error != "" {
			return feed.Page{}, fmt.Errorf("GET %s: %s: %s", u.Path, resp.Status, eb.Error)
		}
		return feed.Page{}, fmt.Errorf("GET %s: %s", u.Path, resp.Status)
	}

	var page feed.Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return feed.Page{}, fmt.Errorf("decode feed: %w", err)
	}
	return page, nil
}

// Getter is anything that serves a feed directly, such as *feed.Proxy
type Getter interface {
	GetFeed(ctx context.Context, limit int) (*feed.Result, error)
}

// FromGetter adapts an in-process feed source to Acquirer
func FromGetter(g Getter) Acquirer {
	return AcquirerFunc(func(ctx context.Context, limit int) (feed.Page, error) {
		res, err := g.GetFeed(ctx, limit)
		if err != nil {
			return feed.Page{}, err
		}
		return res.Page, nil
	})
}
