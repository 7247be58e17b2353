package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/briangreenhill/socialfeed/cache"
	"github.com/briangreenhill/socialfeed/feed"
	"github.com/briangreenhill/socialfeed/instagram"
	"github.com/briangreenhill/socialfeed/internal/config"
)

const version = "v0.1.0"

func main() {
	if err := runCLI(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runCLI(args []string, out io.Writer) error {
	if len(args) == 0 {
		return runFetch(feed.DefaultLimit, out)
	}
	switch args[0] {
	case "help", "--help", "-h":
		fmt.Fprintln(out, "Usage: socialfeed [command]")
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  fetch [limit]          Fetch the feed once and print it as JSON (default)")
		fmt.Fprintln(out, "  help, --help, -h       Show this help message")
		fmt.Fprintln(out, "  version, --version, -v Show version")
		fmt.Fprintln(out, "Environment:")
		fmt.Fprintln(out, "  INSTAGRAM_USER_ID       Instagram account id (required)")
		fmt.Fprintln(out, "  INSTAGRAM_ACCESS_TOKEN  Instagram access token (required)")
		fmt.Fprintln(out, "  INSTAGRAM_GRAPH_URL     Graph API base URL (optional)")
	case "version", "--version", "-v":
		fmt.Fprintln(out, "socialfeed "+version)
	case "fetch", "--fetch", "-f":
		limit := feed.DefaultLimit
		if len(args) > 1 {
			limit = feed.ParseLimit(args[1], feed.DefaultLimit)
		}
		return runFetch(limit, out)
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
	return nil
}

// runFetch performs one proxy lookup with an empty cache and prints the page
func runFetch(limit int, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}
	if !creds.HasCredentials() {
		return fmt.Errorf("no Instagram credentials configured. Please set INSTAGRAM_USER_ID and INSTAGRAM_ACCESS_TOKEN")
	}

	client := instagram.New(
		instagram.WithHTTPClient(&http.Client{Timeout: cfg.HTTPClientTimeout}),
		instagram.WithBaseURL(cfg.Instagram.GraphURL),
		instagram.WithFetchLimit(cfg.Feed.FetchLimit),
		instagram.WithStaticCredentials(creds.UserID, creds.AccessToken),
	)
	proxy := feed.NewInstagramProxy(client, cache.NewSlot[feed.Post](), feed.WithAltText(cfg.Feed.AltText))

	res, err := proxy.GetFeed(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("failed to get feed from %s: %w", proxy.DisplayName(), err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Page)
}
