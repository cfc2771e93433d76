package i18n

import (
	"slices"
	"testing"

	"golang.org/x/text/language"

	"github.com/Iron-Ham/mosaic/internal/feed"
)

func TestNew_MatchesLocale(t *testing.T) {
	tests := []struct {
		locale string
		want   language.Tag
	}{
		{"en", language.English},
		{"en-GB", language.English},
		{"zh", language.SimplifiedChinese},
		{"zh-CN", language.SimplifiedChinese},
		{"", language.English},
		{"not a locale!", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			if got := New(tt.locale).Tag(); got != tt.want {
				t.Errorf("Tag() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranslator_Messages(t *testing.T) {
	tests := []struct {
		locale        string
		clicked       string
		refreshFailed string
		unknown       string
	}{
		{"en", "clicked: Kotlin MVI", "refresh failed: timeout", "unknown error"},
		{"zh", "点击了：Kotlin MVI", "刷新失败：timeout", "未知错误"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			tr := New(tt.locale)
			if got := tr.Clicked("Kotlin MVI"); got != tt.clicked {
				t.Errorf("Clicked() = %q, want %q", got, tt.clicked)
			}
			if got := tr.RefreshFailed("timeout"); got != tt.refreshFailed {
				t.Errorf("RefreshFailed() = %q, want %q", got, tt.refreshFailed)
			}
			if got := tr.UnknownError(); got != tt.unknown {
				t.Errorf("UnknownError() = %q, want %q", got, tt.unknown)
			}
		})
	}
}

func TestTranslator_LabelsMatchDefaults(t *testing.T) {
	got := New("en").Labels()
	want := feed.DefaultLabels()

	if got.FooterHint != want.FooterHint {
		t.Errorf("FooterHint = %q, want %q", got.FooterHint, want.FooterHint)
	}
	for _, c := range feed.Categories() {
		if got.Titles[c] != want.Titles[c] {
			t.Errorf("Titles[%s] = %q, want %q", c, got.Titles[c], want.Titles[c])
		}
	}
}

func TestTranslator_ChineseLabels(t *testing.T) {
	l := New("zh").Labels()
	if l.Titles[feed.CategoryAds] != "赞助" {
		t.Errorf("ads title = %q", l.Titles[feed.CategoryAds])
	}
	if l.FooterHint != "列表结束" {
		t.Errorf("FooterHint = %q", l.FooterHint)
	}
}

func TestTranslations_Complete(t *testing.T) {
	en := translations[language.English]
	for tag, msgs := range translations {
		for k := range en {
			if _, ok := msgs[k]; !ok {
				t.Errorf("%v is missing %q", tag, k)
			}
		}
	}
}

func TestLocales(t *testing.T) {
	got := Locales()
	if !slices.Equal(got, []string{"en", "zh"}) {
		t.Errorf("Locales() = %v", got)
	}
}
