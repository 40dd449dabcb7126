package icon

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// DefaultAliases maps names that streams report to the icon name the
// application actually installs.
var DefaultAliases = map[string]string{
	"google-chrome-stable": "google-chrome",
	"chrome":               "google-chrome",
	"code - oss":           "code",
	"org.gnome.epiphany":   "org.gnome.Epiphany",
	"webkitwebprocess":     "org.gnome.Epiphany",
}

// Normalize lowercases s, strips a trailing ".desktop" and collapses each
// whitespace run into a single hyphen.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSuffix(s, ".desktop")
	return whitespaceRun.ReplaceAllString(s, "-")
}

// Aliases is a lookup table keyed by normalized names.
type Aliases map[string]string

// NewAliases merges the given tables in order (later tables win) and
// normalizes every key so it matches normalized candidates.
func NewAliases(tables ...map[string]string) Aliases {
	a := make(Aliases)
	for _, t := range tables {
		for k, v := range t {
			a[Normalize(k)] = v
		}
	}
	return a
}

// Canonical returns the alias target for name, or name itself.
func (a Aliases) Canonical(name string) string {
	if v, ok := a[name]; ok {
		return v
	}
	return name
}

func basename(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
