// Package i18n holds the user-visible strings of mosaic in every supported
// locale and renders them through golang.org/x/text message catalogs.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/Iron-Ham/mosaic/internal/feed"
)

// Key identifies a translatable string.
type Key string

const (
	KeyClicked       Key = "click.message"
	KeyRefreshFailed Key = "refresh.failed"
	KeyUnknownError  Key = "error.unknown"
	KeyFooterHint    Key = "footer.hint"

	KeyTitle      Key = "screen.title"
	KeyLoad       Key = "action.load"
	KeyRefresh    Key = "action.refresh"
	KeyRetry      Key = "action.retry"
	KeyLoadFailed Key = "state.load_failed"
	KeyEmpty      Key = "state.empty"
	KeyRefreshing Key = "state.refreshing"
	KeyLoading    Key = "state.loading"
	KeyHelp       Key = "help.keys"
)

// SectionKey returns the key of a category's header title.
func SectionKey(c feed.Category) Key {
	return Key("section." + string(c))
}

var supported = []language.Tag{language.English, language.SimplifiedChinese}

var translations = map[language.Tag]map[Key]string{
	language.English: {
		KeyClicked:       "clicked: %s",
		KeyRefreshFailed: "refresh failed: %s",
		KeyUnknownError:  "unknown error",
		KeyFooterHint:    "End of list",

		SectionKey(feed.CategoryBanners):  "Banners",
		SectionKey(feed.CategoryArticles): "Articles",
		SectionKey(feed.CategoryUsers):    "Users",
		SectionKey(feed.CategoryStats):    "Stats",
		SectionKey(feed.CategoryAds):      "Sponsored",

		KeyTitle:      "MVI List",
		KeyLoad:       "Load",
		KeyRefresh:    "Refresh",
		KeyRetry:      "Retry",
		KeyLoadFailed: "Failed to load",
		KeyEmpty:      "No data",
		KeyRefreshing: "Refreshing…",
		KeyLoading:    "Loading…",
		KeyHelp:       "r refresh · enter open · j/k move · g/G top/bottom · q quit",
	},
	language.SimplifiedChinese: {
		KeyClicked:       "点击了：%s",
		KeyRefreshFailed: "刷新失败：%s",
		KeyUnknownError:  "未知错误",
		KeyFooterHint:    "列表结束",

		SectionKey(feed.CategoryBanners):  "横幅",
		SectionKey(feed.CategoryArticles): "文章",
		SectionKey(feed.CategoryUsers):    "用户",
		SectionKey(feed.CategoryStats):    "统计",
		SectionKey(feed.CategoryAds):      "赞助",

		KeyTitle:      "MVI 列表",
		KeyLoad:       "加载",
		KeyRefresh:    "刷新",
		KeyRetry:      "重试",
		KeyLoadFailed: "加载失败",
		KeyEmpty:      "暂无数据",
		KeyRefreshing: "刷新中…",
		KeyLoading:    "加载中…",
		KeyHelp:       "r 刷新 · enter 打开 · j/k 移动 · g/G 顶部/底部 · q 退出",
	},
}

var (
	matcher = language.NewMatcher(supported)
	cat     = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for k, v := range msgs {
			// Only fails for malformed messages, which the table above does
			// not contain.
			if err := b.SetString(tag, string(k), v); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Translator renders strings for one locale.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Translator for the supported locale closest to locale.
// Unknown or malformed locales fall back to English.
func New(locale string) *Translator {
	tag := language.English
	if requested, err := language.Parse(locale); err == nil {
		_, idx, conf := matcher.Match(requested)
		if conf != language.No {
			tag = supported[idx]
		}
	}
	return &Translator{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(cat)),
	}
}

// Tag returns the resolved locale.
func (t *Translator) Tag() language.Tag { return t.tag }

// T renders key with args.
func (t *Translator) T(key Key, args ...any) string {
	return t.printer.Sprintf(string(key), args...)
}

// Clicked renders the click notification.
func (t *Translator) Clicked(label string) string { return t.T(KeyClicked, label) }

// RefreshFailed renders the refresh failure notification.
func (t *Translator) RefreshFailed(reason string) string { return t.T(KeyRefreshFailed, reason) }

// UnknownError renders the reason used when a failure carries no message.
func (t *Translator) UnknownError() string { return t.T(KeyUnknownError) }

// Labels returns the section titles and footer hint for the composer.
func (t *Translator) Labels() feed.Labels {
	titles := make(map[feed.Category]string, len(feed.Categories()))
	for _, c := range feed.Categories() {
		titles[c] = t.T(SectionKey(c))
	}
	return feed.Labels{Titles: titles, FooterHint: t.T(KeyFooterHint)}
}

// Locales returns the supported locale codes.
func Locales() []string {
	out := make([]string, 0, len(supported))
	for _, tag := range supported {
		base, _ := tag.Base()
		out = append(out, base.String())
	}
	return out
}
