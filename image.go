package markdownload

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// UnknownImageExt marks image filenames whose extension can only be derived
// from the content type of the downloaded file.
const UnknownImageExt = ".idunno"

// ImageFilename derives the local filename for an image source: the last
// path segment of src without its query, sanitized, prefixed with prefix.
// Inline data sources are named after their media subtype.
func ImageFilename(src, prefix, disallowed string) string {
	if rest, ok := strings.CutPrefix(src, "data:"); ok {
		mediatype, _, _ := strings.Cut(rest, ",")
		mediatype, _, _ = strings.Cut(mediatype, ";")
		_, subtype, _ := strings.Cut(mediatype, "/")
		if subtype == "" {
			subtype = "bin"
		}
		return prefix + SanitizeFilename("image."+subtype, disallowed)
	}

	name := src
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '?'); i > 0 {
		name = name[:i]
	}
	if !strings.Contains(name, ".") {
		name += UnknownImageExt
	}
	return prefix + SanitizeFilename(name, disallowed)
}

// Add records filename for src and returns the name actually assigned.
// A filename already taken by another source gets a numeric suffix before
// its extension ("a.png", "a.1.png", "a.2.png").
func (m ImageMap) Add(src, filename string) string {
	if existing, ok := m[src]; ok && existing == filename {
		return filename
	}
	taken := func(name string) bool {
		for s, f := range m {
			if f == name && s != src {
				return true
			}
		}
		return false
	}
	for i := 1; taken(filename); i++ {
		parts := strings.Split(filename, ".")
		if i == 1 {
			parts = slices.Insert(parts, len(parts)-1, strconv.Itoa(i))
		} else {
			parts[len(parts)-2] = strconv.Itoa(i)
		}
		filename = strings.Join(parts, ".")
	}
	m[src] = filename
	return filename
}

// EscapeImagePath escapes each segment of a slash separated image filename
// for use as a Markdown link target.
func EscapeImagePath(filename string) string {
	segments := strings.Split(filename, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
