package mixer

import (
	"strconv"
	"strings"
)

const keySeparator = "|"

// IdentityKey derives the key under which a stream's volume is remembered:
// lowercased application name, executable basename and host, joined by "|".
// Missing fields leave empty segments, so streams lacking the same fields
// share a key.
func IdentityKey(props Properties) string {
	return strings.Join([]string{
		strings.ToLower(props[PropAppName]),
		strings.ToLower(basename(props[PropBinary])),
		strings.ToLower(props[PropHost]),
	}, keySeparator)
}

// Title is the label shown for a stream.
func Title(id StreamID, props Properties) string {
	if name := props[PropAppName]; name != "" {
		return name
	}
	if name := props[PropMediaName]; name != "" {
		return name
	}
	return "App " + strconv.FormatUint(uint64(id), 10)
}

func basename(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
