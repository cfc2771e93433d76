package feed

import (
	"fmt"

	"github.com/Iron-Ham/mosaic/internal/errors"
)

// Category names one of the independent sources. The section order of a
// composite list follows Categories.
type Category string

const (
	CategoryBanners  Category = "banners"
	CategoryArticles Category = "articles"
	CategoryUsers    Category = "users"
	CategoryStats    Category = "stats"
	CategoryAds      Category = "ads"
)

// Categories returns every category in section order.
func Categories() []Category {
	return []Category{CategoryBanners, CategoryArticles, CategoryUsers, CategoryStats, CategoryAds}
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errors.ErrUnknownCategory, s)
}

// ItemKind is the entry kind a category's section holds.
func (c Category) ItemKind() Kind {
	switch c {
	case CategoryBanners:
		return KindBanner
	case CategoryArticles:
		return KindArticle
	case CategoryUsers:
		return KindUser
	case CategoryStats:
		return KindStat
	case CategoryAds:
		return KindAd
	default:
		return -1
	}
}

// HeaderID is the identifier of the category's section header.
func (c Category) HeaderID() string {
	return "section-" + string(c)
}
