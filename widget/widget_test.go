package widget

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/socialfeed/feed"
)

func staticPosts(n int) Acquirer {
	posts := make([]feed.Post, n)
	for i := range posts {
		posts[i] = feed.Post{
			ID:        fmt.Sprintf("p%d", i+1),
			Network:   feed.NetworkInstagram,
			URL:       fmt.Sprintf("https://www.instagram.com/p/%d/", i+1),
			Thumbnail: fmt.Sprintf("https://cdn.example.com/%d.jpg", i+1),
			Caption:   fmt.Sprintf("Caption %d", i+1),
			Alt:       "Instagram post from our association",
		}
	}
	return AcquirerFunc(func(ctx context.Context, limit int) (feed.Page, error) {
		return feed.Paginate(posts, limit), nil
	})
}

func failing() Acquirer {
	return AcquirerFunc(func(ctx context.Context, limit int) (feed.Page, error) {
		return feed.Page{}, errors.New("proxy down")
	})
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{Mode: ModeServer}, nil)
	assert.Error(t, err)

	_, err = New(Config{Mode: ModeEmbed}, nil)
	assert.Error(t, err)

	_, err = New(Config{Mode: ModeThirdParty}, nil)
	assert.Error(t, err)

	_, err = New(Config{Mode: Mode(42)}, staticPosts(1))
	assert.Error(t, err)

	w, err := New(Config{Mode: ModeThirdParty, ElfsightAppID: "app"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ModeThirdParty, w.Mode())
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{"": ModeServer, "server": ModeServer, "embed": ModeEmbed, "elfsight": ModeThirdParty}
	for in, want := range tests {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("iframe")
	assert.Error(t, err)
	assert.Equal(t, "elfsight", ModeThirdParty.String())
}

func TestRenderShell(t *testing.T) {
	w, err := New(Config{Mode: ModeServer}, staticPosts(1))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, w.RenderShell(&buf))
	out := buf.String()
	assert.Contains(t, out, `hx-get="/feed/grid"`)
	assert.Contains(t, out, "Loading posts")
}

func TestRenderGridServerMode(t *testing.T) {
	w, err := New(Config{Mode: ModeServer, LoadMoreURL: "/feed/more"}, staticPosts(8))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, w.RenderGrid(context.Background(), &buf, NewDocument(true), 6))
	out := buf.String()

	assert.Equal(t, 6, strings.Count(out, `class="social-feed__tile"`))
	assert.Contains(t, out, `src="https://cdn.example.com/1.jpg"`)
	assert.Contains(t, out, `hx-get="/feed/posts/p1"`)
	assert.Contains(t, out, `hx-post="/feed/more"`, "more posts exist, so the continuation is offered")
	assert.NotContains(t, out, "<script")
}

func TestRenderGridProfileLinkWithoutContinuation(t *testing.T) {
	w, err := New(Config{Mode: ModeServer, ProfileURL: "https://www.instagram.com/ourassociation/"}, staticPosts(8))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, w.RenderGrid(context.Background(), &buf, NewDocument(true), 6))
	out := buf.String()
	assert.NotContains(t, out, "hx-post")
	assert.Contains(t, out, `href="https://www.instagram.com/ourassociation/"`)
	assert.Contains(t, out, "See more on Instagram")
}

func TestRenderGridNoContinuationWhenExhausted(t *testing.T) {
	w, err := New(Config{Mode: ModeServer, LoadMoreURL: "/feed/more"}, staticPosts(3))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, w.RenderGrid(context.Background(), &buf, NewDocument(true), 6))
	assert.NotContains(t, buf.String(), "hx-post")
}

func TestRenderGridFailureIsEmptyState(t *testing.T) {
	for _, mode := range []Mode{ModeServer, ModeEmbed} {
		t.Run(mode.String(), func(t *testing.T) {
			w, err := New(Config{Mode: mode}, failing())
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, w.RenderGrid(context.Background(), &buf, NewDocument(true), 6))
			out := buf.String()
			assert.Contains(t, out, "No posts available")
			assert.NotContains(t, out, "proxy down", "error text never reaches the page")
		})
	}
}

func TestRenderGridEmptyFeed(t *testing.T) {
	w, err := New(Config{Mode: ModeServer}, staticPosts(0))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, w.RenderGrid(context.Background(), &buf, NewDocument(true), 6))
	assert.Contains(t, buf.String(), "No posts available")
}

func TestRenderGridThirdPartyDeferredOnServer(t *testing.T) {
	w, err := New(Config{Mode: ModeThirdParty, ElfsightAppID: "1234-abcd"}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	doc := NewDocument(false)
	require.NoError(t, w.RenderGrid(context.Background(), &buf, doc, 6))
	assert.Empty(t, strings.TrimSpace(buf.String()))
	assert.False(t, doc.HasScript(ElfsightPlatformSrc), "nothing is loaded before the page runs client side")
}

func TestRenderGridThirdPartyClientSide(t *testing.T) {
	w, err := New(Config{Mode: ModeThirdParty, ElfsightAppID: "1234-abcd"}, nil)
	require.NoError(t, err)

	doc := NewDocument(true)
	var buf bytes.Buffer
	require.NoError(t, w.RenderGrid(context.Background(), &buf, doc, 6))
	out := buf.String()
	assert.Contains(t, out, `class="elfsight-app-1234-abcd"`)
	assert.Equal(t, 1, strings.Count(out, ElfsightPlatformSrc))

	// the same page rendering again does not add a second platform tag
	buf.Reset()
	require.NoError(t, w.RenderGrid(context.Background(), &buf, doc, 6))
	assert.NotContains(t, buf.String(), `<script async src="`+ElfsightPlatformSrc)
	assert.Len(t, doc.Scripts(), 1)
}

func TestRenderGridThirdPartyAwaitsExistingPlatformTag(t *testing.T) {
	w, err := New(Config{Mode: ModeThirdParty, ElfsightAppID: "1234-abcd"}, nil)
	require.NoError(t, err)

	doc := NewDocument(true, ElfsightPlatformSrc)
	var buf bytes.Buffer
	require.NoError(t, w.RenderGrid(context.Background(), &buf, doc, 6))
	out := buf.String()

	assert.Contains(t, out, `class="elfsight-app-1234-abcd"`)
	assert.NotContains(t, out, `<script async src="`, "the existing tag is reused")
	assert.Contains(t, out, `data-await-src="`+ElfsightPlatformSrc+`"`)
	assert.Contains(t, out, `tag.addEventListener("load", function init()`)
	assert.Contains(t, out, `tag.removeEventListener("load", init)`)
	assert.Contains(t, out, "window.eapps")

	// initialized platform: no listener
	doc = NewDocument(true, ElfsightPlatformSrc)
	doc.MarkInitialized(ElfsightPlatformGlobal)
	buf.Reset()
	require.NoError(t, w.RenderGrid(context.Background(), &buf, doc, 6))
	assert.NotContains(t, buf.String(), "data-await-src")
}

func TestRenderPreview(t *testing.T) {
	acq := AcquirerFunc(func(ctx context.Context, limit int) (feed.Page, error) {
		return feed.Page{Posts: []feed.Post{{
			ID:        "p1",
			Network:   feed.NetworkInstagram,
			URL:       "https://www.instagram.com/p/1/",
			Thumbnail: "https://cdn.example.com/1.jpg",
			Caption:   `Bake sale <b>Saturday</b> & <script>alert(1)</script>`,
			Alt:       "alt",
		}}}, nil
	})
	w, err := New(Config{Mode: ModeServer}, acq)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, w.RenderPreview(context.Background(), &buf, NewDocument(true), "p1", 6))
	out := buf.String()
	assert.Contains(t, out, `role="dialog"`)
	assert.Contains(t, out, `href="https://www.instagram.com/p/1/"`)
	assert.Contains(t, out, "Bake sale Saturday &amp;")
	assert.NotContains(t, out, "<b>")
	assert.NotContains(t, out, "alert(1)")
	assert.Contains(t, out, `hx-get="/feed/close"`)

	err = w.RenderPreview(context.Background(), &buf, NewDocument(true), "nope", 6)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestRenderPreviewEmbedLoadsScriptOnce(t *testing.T) {
	w, err := New(Config{Mode: ModeEmbed}, staticPosts(3))
	require.NoError(t, err)

	doc := NewDocument(true)
	var first bytes.Buffer
	require.NoError(t, w.RenderPreview(context.Background(), &first, doc, "p1", 6))
	assert.Contains(t, first.String(), `class="instagram-media"`)
	assert.Equal(t, 1, strings.Count(first.String(), "https://www.instagram.com/embed.js"))
	assert.NotContains(t, first.String(), "Embeds.process")

	// a second preview on a page that already carries the script reuses it
	next := NewDocument(true, doc.Scripts()...)
	var second bytes.Buffer
	require.NoError(t, w.RenderPreview(context.Background(), &second, next, "p2", 6))
	assert.NotContains(t, second.String(), "embed.js")
	assert.Contains(t, second.String(), "Embeds.process")
}

func TestRenderPreviewThirdParty(t *testing.T) {
	w, err := New(Config{Mode: ModeThirdParty, ElfsightAppID: "x"}, nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	assert.ErrorIs(t, w.RenderPreview(context.Background(), &buf, NewDocument(true), "p1", 6), ErrPostNotFound)
}
