// Package feed turns raw network media into the posts served to the website
// and implements the cached proxy in front of the remote API.
package feed

import (
	"errors"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/briangreenhill/socialfeed/instagram"
)

const (
	NetworkInstagram = "instagram"

	// DefaultLimit is used when the caller gives no usable limit
	DefaultLimit = 6

	DefaultAltText = "Instagram post from our association"
)

// Post is one normalized feed item. Posts are values and are never modified
// after Normalize created them.
type Post struct {
	ID        string `json:"id"`
	Network   string `json:"network"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
	Date      string `json:"date"` // ISO-8601, as sent by the network
	Caption   string `json:"caption"`
	Alt       string `json:"alt"`
}

// Page is the response shape of the proxy endpoint
type Page struct {
	Posts   []Post `json:"posts"`
	HasMore bool   `json:"hasMore"`
}

// Normalize maps raw media into posts, keeping upstream order.
// Videos carry a thumbnail_url; everything else falls back to media_url.
func Normalize(media []instagram.Media, network, alt string) []Post {
	return lo.Map(media, func(m instagram.Media, _ int) Post {
		thumb := m.ThumbnailURL
		if thumb == "" {
			thumb = m.MediaURL
		}
		return Post{
			ID:        m.ID,
			Network:   network,
			URL:       m.Permalink,
			Thumbnail: thumb,
			Date:      m.Timestamp,
			Caption:   m.Caption,
			Alt:       alt,
		}
	})
}

// Paginate returns the first limit posts. HasMore is true iff there are more
// posts than limit. The result never aliases the input slice.
func Paginate(posts []Post, limit int) Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	head := lo.Slice(posts, 0, limit)
	out := make([]Post, len(head))
	copy(out, head)
	return Page{Posts: out, HasMore: len(posts) > limit}
}

// ParseLimit reads a limit query value. Missing, non-numeric, zero and
// negative values all yield def. There is no upper bound.
func ParseLimit(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// ErrUnknownNetwork is returned when no source serves the requested network
var ErrUnknownNetwork = errors.New("unknown network")
