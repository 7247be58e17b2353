package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mediaHandler(t *testing.T, n int, calls *int32) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/17841400000000000/media", r.URL.Path)
		assert.Equal(t, mediaFields, r.URL.Query().Get("fields"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("access_token"))

		items := make([]Media, 0, n)
		for i := 0; i < n; i++ {
			items = append(items, Media{
				ID:        fmt.Sprintf("%d", i+1),
				MediaType: "IMAGE",
				MediaURL:  fmt.Sprintf("https://cdn.example.com/%d.jpg", i+1),
				Permalink: fmt.Sprintf("https://www.instagram.com/p/%d/", i+1),
				Timestamp: "2024-05-01T10:00:00+0000",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": items})
	}
}

func TestFetchMedia(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(mediaHandler(t, 3, &calls))
	defer srv.Close()

	c := New(
		WithHTTPClient(srv.Client()),
		WithBaseURL(srv.URL),
		WithStaticCredentials("17841400000000000", "secret-token"),
	)

	media, err := c.FetchMedia(context.Background())
	require.NoError(t, err)
	require.Len(t, media, 3)
	assert.Equal(t, "1", media[0].ID)
	assert.Equal(t, "https://www.instagram.com/p/1/", media[0].Permalink)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchMediaCapsAtLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(mediaHandler(t, 25, &calls))
	defer srv.Close()

	c := New(
		WithHTTPClient(srv.Client()),
		WithBaseURL(srv.URL),
		WithStaticCredentials("17841400000000000", "secret-token"),
	)
	media, err := c.FetchMedia(context.Background())
	require.NoError(t, err)
	assert.Len(t, media, DefaultFetchLimit)
}

func TestFetchMediaIgnoresPagingCursor(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"data":[{"id":"1","media_url":"https://cdn.example.com/1.jpg"}],"paging":{"next":"%s/next"}}`, "http://"+r.Host)
	}))
	defer srv.Close()

	c := New(
		WithHTTPClient(srv.Client()),
		WithBaseURL(srv.URL),
		WithStaticCredentials("17841400000000000", "secret-token"),
	)
	media, err := c.FetchMedia(context.Background())
	require.NoError(t, err)
	assert.Len(t, media, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "only the first page is fetched")
}

func TestFetchMediaMissingConfig(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(mediaHandler(t, 3, &calls))
	defer srv.Close()

	tests := []struct {
		name  string
		creds Credentials
	}{
		{"nothing", Credentials{}},
		{"no token", Credentials{UserID: "17841400000000000"}},
		{"no user", Credentials{AccessToken: "secret-token"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(
				WithHTTPClient(srv.Client()),
				WithBaseURL(srv.URL),
				WithStaticCredentials(tt.creds.UserID, tt.creds.AccessToken),
			)
			_, err := c.FetchMedia(context.Background())
			require.ErrorIs(t, err, ErrMissingConfig)
			assert.False(t, IsUpstream(err))
		})
	}
	assert.Zero(t, atomic.LoadInt32(&calls), "no request may be made without credentials")
}

func TestFetchMediaReadsCredentialsPerCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(mediaHandler(t, 1, &calls))
	defer srv.Close()

	var creds Credentials
	c := New(
		WithHTTPClient(srv.Client()),
		WithBaseURL(srv.URL),
		WithCredentials(func() Credentials { return creds }),
	)

	_, err := c.FetchMedia(context.Background())
	require.ErrorIs(t, err, ErrMissingConfig)

	creds = Credentials{UserID: "17841400000000000", AccessToken: "secret-token"}
	_, err = c.FetchMedia(context.Background())
	require.NoError(t, err)
}

func TestFetchMediaUpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`},
		{"expired token", http.StatusBadRequest, `{"error":{"code":190}}`},
		{"malformed body", http.StatusOK, `{"data": [`},
		{"no data array", http.StatusOK, `{"paging":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(
				WithHTTPClient(srv.Client()),
				WithBaseURL(srv.URL),
				WithStaticCredentials("1", "tok"),
			)
			_, err := c.FetchMedia(context.Background())
			require.Error(t, err)

			var ue *UpstreamError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, tt.status, ue.StatusCode)
			assert.NotContains(t, err.Error(), "tok\"")
		})
	}
}

func TestFetchMediaNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := New(WithBaseURL(base), WithStaticCredentials("1", "tok"))
	_, err := c.FetchMedia(context.Background())
	require.Error(t, err)
	assert.True(t, IsUpstream(err))

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Zero(t, ue.StatusCode)
}
