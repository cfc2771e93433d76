package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Iron-Ham/mosaic/internal/config"
	mosaicerrors "github.com/Iron-Ham/mosaic/internal/errors"
	"github.com/Iron-Ham/mosaic/internal/event"
	"github.com/Iron-Ham/mosaic/internal/feed"
	"github.com/Iron-Ham/mosaic/internal/store"
)

// executeCommand runs the root command with args and returns captured output
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { resetFlags(rootCmd) })

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores scalar flags to their defaults between runs; cobra
// keeps flag values on the package-level commands.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed && !strings.HasSuffix(f.Value.Type(), "Slice") {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// isolate points every config and state path at temporary directories.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("MOSAIC_LOGGING_ENABLED", "false")
	t.Setenv("MOSAIC_OTEL_ENABLED", "false")
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "mosaic" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "mosaic")
	}

	cmdMap := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		cmdMap[c.Name()] = true
	}
	for _, expected := range []string{"run", "fetch", "serve", "config"} {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestFetch_Text(t *testing.T) {
	isolate(t)

	out, err := executeCommand(t, "fetch")
	if err != nil {
		t.Fatalf("fetch error = %v", err)
	}
	for _, want := range []string{"== Banners ==", "[banner] Kotlin MVI", "[ad] Try our coroutine course!", "-- End of list --"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFetch_JSON(t *testing.T) {
	isolate(t)

	out, err := executeCommand(t, "fetch", "--json")
	if err != nil {
		t.Fatalf("fetch error = %v", err)
	}

	var rows []struct {
		Kind  string          `json:"kind"`
		Entry json.RawMessage `json:"entry"`
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(rows) != 19 {
		t.Fatalf("len(rows) = %d, want 19", len(rows))
	}
	if rows[0].Kind != "section_header" || rows[17].Kind != "footer" {
		t.Errorf("first/last kinds = %s/%s", rows[0].Kind, rows[17].Kind)
	}
}

func TestFetch_FailFastFault(t *testing.T) {
	isolate(t)

	_, err := executeCommand(t, "fetch", "--policy", "fail_fast", "--fault-rate", "1")
	if err == nil || !strings.Contains(err.Error(), "simulated network error") {
		t.Errorf("fetch error = %v, want simulated network error", err)
	}
}

func TestFetch_InvalidConfig(t *testing.T) {
	isolate(t)
	t.Setenv("MOSAIC_AGGREGATE_POLICY", "retry")

	_, err := executeCommand(t, "fetch")
	if err == nil || !strings.Contains(err.Error(), "aggregate.policy") {
		t.Errorf("fetch error = %v, want a policy validation error", err)
	}
}

func TestRun_Headless(t *testing.T) {
	tests := []struct {
		locale string
		want   []string
	}{
		{"en", []string{"== Banners ==", "[user] @An (Android developer)", "-- End of list --"}},
		{"zh", []string{"== 横幅 ==", "== 赞助 ==", "-- 列表结束 --"}},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			isolate(t)
			t.Setenv("MOSAIC_TUI_LOCALE", tt.locale)

			out, err := executeCommand(t, "run", "--headless")
			if err != nil {
				t.Fatalf("run error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

type failingFetcher struct{}

func (failingFetcher) FetchAll(context.Context) ([]feed.Entry, error) {
	return nil, mosaicerrors.NewAggregateError("", mosaicerrors.ErrInjectedFault)
}

func TestRunHeadless_LoadFailure(t *testing.T) {
	st := store.New(failingFetcher{})
	if err := st.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer st.Stop()

	var out bytes.Buffer
	err := runHeadless(context.Background(), &out, st, event.NewBus())
	if err == nil || err.Error() != "load failed: simulated network error" {
		t.Errorf("runHeadless() = %v", err)
	}
}

func TestRunHeadless_Cancelled(t *testing.T) {
	st := store.New(failingFetcher{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The store is never started, so only the context can end the wait.
	err := runHeadless(ctx, &bytes.Buffer{}, st, event.NewBus())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("runHeadless() = %v, want context.Canceled", err)
	}
}

func TestConfigInit(t *testing.T) {
	isolate(t)

	out, err := executeCommand(t, "config", "init")
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(out, "Created config file") {
		t.Errorf("output = %q", out)
	}

	data, err := os.ReadFile(config.ConfigFile())
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "policy: isolated") {
		t.Error("template should document the policy")
	}

	if _, err := executeCommand(t, "config", "init"); err == nil {
		t.Error("second init should fail")
	}
}

func TestConfigShowAndPath(t *testing.T) {
	isolate(t)

	out, err := executeCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	for _, want := range []string{"aggregate:", "policy: isolated", "locale: en"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out, err = executeCommand(t, "config", "path")
	if err != nil {
		t.Fatalf("config path error = %v", err)
	}
	if !strings.Contains(out, "MOSAIC_") || !strings.Contains(out, "themes") {
		t.Errorf("path output = %q", out)
	}
}

func TestFormatEntry(t *testing.T) {
	tests := []struct {
		entry feed.Entry
		want  string
	}{
		{feed.SectionHeader{ID: "section-banners", Title: "Banners"}, "== Banners =="},
		{feed.Banner{ID: "b", Title: "Kotlin MVI", Subtitle: "s"}, "  [banner] Kotlin MVI: s"},
		{feed.Article{ID: "a", Title: "T", Summary: "S"}, "  [article] T: S"},
		{feed.User{ID: "u", Name: "An", Role: "dev"}, "  [user] @An (dev)"},
		{feed.Stat{ID: "s", Label: "Done", Value: "512"}, "  [stat] Done: 512"},
		{feed.Ad{ID: "ad", Text: "Buy"}, "  [ad] Buy"},
		{feed.Footer{ID: "footer", Hint: "End of list"}, "-- End of list --"},
	}

	for _, tt := range tests {
		t.Run(tt.entry.Kind().String(), func(t *testing.T) {
			if got := formatEntry(tt.entry); got != tt.want {
				t.Errorf("formatEntry() = %q, want %q", got, tt.want)
			}
		})
	}
}
