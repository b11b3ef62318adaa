// Package locale resolves the display language for a session and serves
// translated strings from the catalogs embedded in the binary.
//
// English (en_GB) is the source language: its strings live in the code
// itself, so the catalogs only carry translations. A missing key falls
// back to the source string rather than erroring, matching the usual
// gettext behaviour.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

//go:embed catalogs/*.toml
var catalogFS embed.FS

// supported lists the display locales this build ships, source language
// first. The matcher below relies on that ordering for fallbacks.
var supported = []language.Tag{
	language.MustParse("en-GB"),
	language.MustParse("fr-FR"),
	language.MustParse("nl"),
}

var matcher = language.NewMatcher(supported)

// Supported returns the locales this build can display.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supported))
	copy(tags, supported)
	return tags
}

// Catalog translates source strings into one supported locale.
type Catalog struct {
	tag      language.Tag
	chosenBy string
	strings  map[string]string
}

// Resolve picks the display locale for this session. A non-empty
// requested value (the --locale flag) wins, then the LC_ALL, LC_MESSAGES
// and LANG environment variables, then English.
//
// The returned catalog is always usable. The error is non-nil when an
// explicitly requested locale could not be honoured, so callers can warn
// and carry on in the fallback.
func Resolve(requested string, getenv func(string) string) (*Catalog, error) {
	if requested != "" {
		cat, err := match(requested, "--locale")
		if err != nil {
			return sourceCatalog("default"), err
		}
		return cat, nil
	}

	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := getenv(name)
		if value == "" {
			continue
		}
		cat, err := match(value, name)
		if err != nil {
			continue
		}
		return cat, nil
	}
	return sourceCatalog("default"), nil
}

func match(raw, chosenBy string) (*Catalog, error) {
	normalised := normalise(raw)
	if normalised == "" {
		return nil, fmt.Errorf("locale %q is not a language tag", raw)
	}
	tag, err := language.Parse(normalised)
	if err != nil {
		return nil, fmt.Errorf("unrecognised locale %q", raw)
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return nil, fmt.Errorf("locale %q is not available in this build", raw)
	}
	return load(supported[index], chosenBy)
}

// normalise strips the encoding and modifier suffixes found in POSIX
// locale names ("fr_FR.UTF-8", "nl_NL@euro") and maps the C and POSIX
// locales to nothing.
func normalise(raw string) string {
	value := strings.TrimSpace(raw)
	if i := strings.IndexAny(value, ".@"); i >= 0 {
		value = value[:i]
	}
	if value == "" || value == "C" || value == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(value, "_", "-")
}

func sourceCatalog(chosenBy string) *Catalog {
	return &Catalog{tag: supported[0], chosenBy: chosenBy}
}

func load(tag language.Tag, chosenBy string) (*Catalog, error) {
	if tag == supported[0] {
		return sourceCatalog(chosenBy), nil
	}

	name := "catalogs/" + strings.ReplaceAll(tag.String(), "-", "_") + ".toml"
	data, err := fs.ReadFile(catalogFS, name)
	if err != nil {
		return sourceCatalog("default"), fmt.Errorf("catalog for %s missing: %w", tag, err)
	}

	translations := make(map[string]string)
	if err := toml.Unmarshal(data, &translations); err != nil {
		return sourceCatalog("default"), fmt.Errorf("catalog for %s unreadable: %w", tag, err)
	}
	return &Catalog{tag: tag, chosenBy: chosenBy, strings: translations}, nil
}

// Tr returns the translation for a source string, or the source string
// itself when no translation exists.
func (c *Catalog) Tr(msgid string) string {
	if translated, ok := c.strings[msgid]; ok && translated != "" {
		return translated
	}
	return msgid
}

// Tag returns the locale the catalog serves.
func (c *Catalog) Tag() language.Tag {
	return c.tag
}

// ChosenBy names what selected this locale: "--locale", one of the
// LC_ALL/LC_MESSAGES/LANG variables, or "default".
func (c *Catalog) ChosenBy() string {
	return c.chosenBy
}

// DisplayName returns the locale's name in its own language, e.g.
// "français (France)".
func (c *Catalog) DisplayName() string {
	return display.Self.Name(c.tag)
}
