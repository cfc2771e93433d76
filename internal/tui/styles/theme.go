package styles

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// themeFile is a custom theme on disk. It starts from a built-in base and
// overrides any subset of its colors:
//
//	name: Ocean
//	base: nord
//	colors:
//	  accent: "#0EA5E9"
//	  banner: "#EC4899"
type themeFile struct {
	Name   string            `yaml:"name"`
	Base   string            `yaml:"base"`
	Colors map[string]string `yaml:"colors"`
}

var hexColor = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// LoadTheme reads a theme file and returns the resulting palette.
func LoadTheme(path string) (Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Palette{}, fmt.Errorf("reading theme file: %w", err)
	}
	return ParseTheme(data)
}

// ParseTheme decodes a YAML theme. Unknown color keys and malformed hex
// values are rejected so typos do not silently fall back to the base.
func ParseTheme(data []byte) (Palette, error) {
	var tf themeFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return Palette{}, fmt.Errorf("parsing theme file: %w", err)
	}
	if tf.Name == "" {
		return Palette{}, errors.New("theme name is required")
	}

	base := tf.Base
	if base == "" {
		base = DefaultTheme
	}
	p, ok := builtin[base]
	if !ok {
		return Palette{}, fmt.Errorf("unknown base theme %q (built-in: %s)", base, strings.Join(themeOrder, ", "))
	}

	slots := p.slots()
	keys := make([]string, 0, len(tf.Colors))
	for k := range tf.Colors {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		v := tf.Colors[k]
		slot, ok := slots[k]
		if !ok {
			return Palette{}, fmt.Errorf("unknown color %q", k)
		}
		if !hexColor.MatchString(v) {
			return Palette{}, fmt.Errorf("color %q has invalid value %q (expected #RGB or #RRGGBB)", k, v)
		}
		*slot = lipgloss.Color(v)
	}
	return p, nil
}
