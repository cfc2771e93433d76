package source

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/mosaic/internal/errors"
	"github.com/Iron-Ham/mosaic/internal/feed"
)

// Fixtures are the demo payloads served by SimulatedTransport and the feed
// server. The YAML layout mirrors the struct:
//
//	banners:
//	  - id: banner-1
//	    title: Kotlin MVI
//	    subtitle: State, intent and effect in one place
//	ads:
//	  - id: ad-1
//	    text: Try our coroutine course!
type Fixtures struct {
	Banners  []feed.Banner  `yaml:"banners"`
	Articles []feed.Article `yaml:"articles"`
	Users    []feed.User    `yaml:"users"`
	Stats    []feed.Stat    `yaml:"stats"`
	Ads      []feed.Ad      `yaml:"ads"`
}

// DefaultFixtures returns the built-in payloads: 2 banners, 3 articles,
// 3 users, 3 stats and 2 ads.
func DefaultFixtures() *Fixtures {
	return &Fixtures{
		Banners: []feed.Banner{
			{ID: "banner-1", Title: "Kotlin MVI", Subtitle: "State, intent and effect in one place"},
			{ID: "banner-2", Title: "Compose lists", Subtitle: "One lazy column, many row types"},
		},
		Articles: []feed.Article{
			{ID: "article-1", Title: "Coroutines 101", Summary: "launch, async and structured concurrency"},
			{ID: "article-2", Title: "StateFlow basics", Summary: "Why it suits declarative UI"},
			{ID: "article-3", Title: "Error handling", Summary: "Showing retry and error states"},
		},
		Users: []feed.User{
			{ID: "user-1", Name: "An", Role: "Android developer"},
			{ID: "user-2", Name: "Le", Role: "Backend developer"},
			{ID: "user-3", Name: "Mi", Role: "Designer"},
		},
		Stats: []feed.Stat{
			{ID: "stat-1", Label: "In progress", Value: "128"},
			{ID: "stat-2", Label: "Pending", Value: "24"},
			{ID: "stat-3", Label: "Done", Value: "512"},
		},
		Ads: []feed.Ad{
			{ID: "ad-1", Text: "Try our coroutine course!"},
			{ID: "ad-2", Text: "Build UIs faster with Compose"},
		},
	}
}

// LoadFixtures reads a YAML fixtures file. Categories absent from the file
// keep their built-in payloads.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	var overrides Fixtures
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}

	f := DefaultFixtures()
	if overrides.Banners != nil {
		f.Banners = overrides.Banners
	}
	if overrides.Articles != nil {
		f.Articles = overrides.Articles
	}
	if overrides.Users != nil {
		f.Users = overrides.Users
	}
	if overrides.Stats != nil {
		f.Stats = overrides.Stats
	}
	if overrides.Ads != nil {
		f.Ads = overrides.Ads
	}
	return f, nil
}

// Payload returns the JSON body served for category c.
func (f *Fixtures) Payload(c feed.Category) ([]byte, error) {
	var v any
	switch c {
	case feed.CategoryBanners:
		v = f.Banners
	case feed.CategoryArticles:
		v = f.Articles
	case feed.CategoryUsers:
		v = f.Users
	case feed.CategoryStats:
		v = f.Stats
	case feed.CategoryAds:
		v = f.Ads
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownCategory, c)
	}
	return json.Marshal(v)
}

// DelayRange is the simulated latency window of one category.
type DelayRange struct {
	Min, Max time.Duration
}

// DefaultDelays returns the per-category latency windows.
func DefaultDelays() map[feed.Category]DelayRange {
	ms := func(lo, hi int) DelayRange {
		return DelayRange{Min: time.Duration(lo) * time.Millisecond, Max: time.Duration(hi) * time.Millisecond}
	}
	return map[feed.Category]DelayRange{
		feed.CategoryBanners:  ms(300, 700),
		feed.CategoryArticles: ms(500, 900),
		feed.CategoryUsers:    ms(200, 600),
		feed.CategoryStats:    ms(300, 700),
		feed.CategoryAds:      ms(250, 650),
	}
}
