package widget

import (
	"context"
	"fmt"

	"github.com/briangreenhill/socialfeed/feed"
)

// Mode selects how the widget obtains its posts. It is fixed when the widget
// is built.
type Mode int

const (
	// ModeServer reads posts from the feed proxy endpoint
	ModeServer Mode = iota
	// ModeEmbed reads posts from a source and renders previews with the
	// network's own embed script
	ModeEmbed
	// ModeThirdParty hands the whole feed to an Elfsight widget
	ModeThirdParty
)

func (m Mode) String() string {
	switch m {
	case ModeServer:
		return "server"
	case ModeEmbed:
		return "embed"
	case ModeThirdParty:
		return "elfsight"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a configuration value to a Mode
func ParseMode(s string) (Mode, error) {
	switch s {
	case "server", "":
		return ModeServer, nil
	case "embed":
		return ModeEmbed, nil
	case "elfsight", "third-party":
		return ModeThirdParty, nil
	}
	return 0, fmt.Errorf("unknown widget mode %q", s)
}

// Acquirer obtains up to limit posts
type Acquirer interface {
	Acquire(ctx context.Context, limit int) (feed.Page, error)
}

// AcquirerFunc adapts a func to Acquirer
type AcquirerFunc func(ctx context.Context, limit int) (feed.Page, error)

func (f AcquirerFunc) Acquire(ctx context.Context, limit int) (feed.Page, error) {
	return f(ctx, limit)
}
