package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Iron-Ham/mosaic/internal/errors"
	"github.com/Iron-Ham/mosaic/internal/feed"
)

// Fetcher produces the entries of one category.
type Fetcher interface {
	Category() feed.Category
	Fetch(ctx context.Context) ([]feed.Entry, error)
}

type remoteFetcher struct {
	category  feed.Category
	url       string
	transport Transport
	timeout   time.Duration
	decode    func(category string, body []byte) ([]feed.Entry, error)
}

// NewFetcher returns the Fetcher for category c reading baseURL/<c>.
// timeout bounds each Fetch (0 = none).
func NewFetcher(c feed.Category, t Transport, baseURL string, timeout time.Duration) (Fetcher, error) {
	f := &remoteFetcher{
		category:  c,
		url:       strings.TrimSuffix(baseURL, "/") + "/" + string(c),
		transport: t,
		timeout:   timeout,
	}
	switch c {
	case feed.CategoryBanners:
		f.decode = decodeEntries[feed.Banner]
	case feed.CategoryArticles:
		f.decode = decodeEntries[feed.Article]
	case feed.CategoryUsers:
		f.decode = decodeEntries[feed.User]
	case feed.CategoryStats:
		f.decode = decodeEntries[feed.Stat]
	case feed.CategoryAds:
		f.decode = decodeEntries[feed.Ad]
	default:
		return nil, errors.Wrapf(errors.ErrUnknownCategory, "new fetcher %q", c)
	}
	return f, nil
}

// NewFetchers returns one Fetcher per category in section order.
func NewFetchers(t Transport, baseURL string, timeout time.Duration) []Fetcher {
	out := make([]Fetcher, 0, len(feed.Categories()))
	for _, c := range feed.Categories() {
		f, err := NewFetcher(c, t, baseURL, timeout)
		if err != nil {
			// Categories() only yields known categories.
			panic(err)
		}
		out = append(out, f)
	}
	return out
}

func (f *remoteFetcher) Category() feed.Category { return f.category }

// Fetch requests the category payload. Expiry of the per-fetch timeout is a
// TransportError; cancellation of ctx itself is returned as ctx.Err().
func (f *remoteFetcher) Fetch(ctx context.Context) ([]feed.Entry, error) {
	reqCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	body, err := f.transport.Get(reqCtx, f.url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, errors.NewTransportError(f.url, fmt.Errorf("timed out after %s: %w", f.timeout, err))
		}
		return nil, err
	}
	return f.decode(string(f.category), body)
}

func decodeEntries[T feed.Entry](category string, body []byte) ([]feed.Entry, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, errors.NewFormatError(category, "empty response body", errors.ErrEmptyResponse)
	}

	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, errors.NewFormatError(category, "decode body", err)
	}

	out := make([]feed.Entry, 0, len(items))
	for i, item := range items {
		if item.EntryID() == "" {
			return nil, errors.NewFormatError(category, fmt.Sprintf("entry %d has no id", i), nil)
		}
		out = append(out, item)
	}
	return out, nil
}

// Func adapts a function to a Fetcher.
func Func(c feed.Category, fn func(ctx context.Context) ([]feed.Entry, error)) Fetcher {
	return funcFetcher{category: c, fn: fn}
}

type funcFetcher struct {
	category feed.Category
	fn       func(ctx context.Context) ([]feed.Entry, error)
}

func (f funcFetcher) Category() feed.Category                         { return f.category }
func (f funcFetcher) Fetch(ctx context.Context) ([]feed.Entry, error) { return f.fn(ctx) }
