package source

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/zappabad/stocky/internal/news"
)

const summaryLen = 300

// Feed is one configured RSS or Atom feed. Name becomes the company of every
// record the feed yields, so each feed is its own topic.
type Feed struct {
	Name string `mapstructure:"name" yaml:"name"`
	URL  string `mapstructure:"url" yaml:"url"`
}

// RSS fetches records from a set of feeds in parallel.
type RSS struct {
	feeds []Feed
}

// NewRSS creates an RSS source.
func NewRSS(feeds []Feed) *RSS {
	return &RSS{feeds: feeds}
}

// FetchNewsList returns the items of every feed, in feed order. Feeds that
// fail are skipped; an error is returned only when none succeeds.
func (r *RSS) FetchNewsList(ctx context.Context) ([]news.Record, error) {
	if len(r.feeds) == 0 {
		return nil, errors.New("no feeds configured")
	}

	results := make([][]news.Record, len(r.feeds))
	errs := make([]error, len(r.feeds))

	// per-feed errors are kept in errs so one bad feed does not cancel the rest
	var g errgroup.Group
	for i, f := range r.feeds {
		g.Go(func() error {
			results[i], errs[i] = r.fetch(ctx, f)
			return nil
		})
	}
	g.Wait()

	var out []news.Record
	failed := 0
	for i := range r.feeds {
		if errs[i] != nil {
			failed++
			continue
		}
		out = append(out, results[i]...)
	}
	if failed == len(r.feeds) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (r *RSS) fetch(ctx context.Context, f Feed) ([]news.Record, error) {
	// one parser per fetch, gofeed.Parser is not safe for concurrent use
	parser := gofeed.NewParser()
	feed, err := parser.ParseURLWithContext(f.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", f.Name, err)
	}

	records := make([]news.Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Title == "" {
			continue
		}
		desc := item.Description
		if desc == "" {
			desc = item.Content
		}

		rec := news.Record{
			ID:      recordID(item),
			Title:   strings.TrimSpace(item.Title),
			Summary: truncate(stripHTML(desc), summaryLen),
			Content: stripHTML(item.Content),
			Company: f.Name,
			Source:  item.Link,
		}
		if len(item.Categories) > 0 {
			rec.Category = item.Categories[0]
		}
		if item.PublishedParsed != nil {
			rec.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
		} else if item.UpdatedParsed != nil {
			rec.PublishedAt = item.UpdatedParsed.UTC().Format(time.RFC3339)
		}
		records = append(records, rec)
	}
	return records, nil
}

// recordID derives a stable positive id from the item link, or its guid or
// title when the link is missing.
func recordID(item *gofeed.Item) news.RecordID {
	key := item.Link
	if key == "" {
		key = item.GUID
	}
	if key == "" {
		key = item.Title
	}
	h := sha256.Sum256([]byte(key))
	return news.RecordID(binary.BigEndian.Uint64(h[:8]) &^ (1 << 63))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
