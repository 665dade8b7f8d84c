package markdownload

import "strings"

// illegalFilenameChars are removed from every generated file or folder name.
const illegalFilenameChars = `/?<>\:*|"`

// SanitizeFilename makes s safe to use as a file or folder name. It removes
// characters that are illegal on common filesystems and every character of
// disallowed, turns non-breaking spaces into plain spaces, collapses
// whitespace runs and trims the result. An empty string is returned as is.
func SanitizeFilename(s, disallowed string) string {
	if s == "" {
		return s
	}
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalFilenameChars, r) || strings.ContainsRune(disallowed, r) {
			return -1
		}
		if r == '\u00a0' {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
