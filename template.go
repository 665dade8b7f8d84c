package markdownload

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/nleeper/goment"
)

// TemplateEnv carries the inputs of a template expansion besides the article.
type TemplateEnv struct {
	// Now is the instant every {date:FORMAT} placeholder renders.
	Now time.Time

	// DisallowedChars are stripped from field values before they are
	// substituted. Empty means field values are used verbatim.
	DisallowedChars string
}

// Template is a parsed placeholder template such as "{pageTitle} ({date:YYYY})".
// Parse once with ParseTemplate and expand it against any number of articles.
type Template struct {
	nodes []templateNode
}

type templateNode struct {
	placeholder bool
	text        string // literal text, or the raw placeholder body
	name        string
	arg         string
	hasArg      bool
}

// ParseTemplate splits s into literal runs and {name[:arg]} placeholders.
// A placeholder ends at the first closing brace and cannot span lines; a brace
// that does not open a well-formed placeholder is kept as literal text.
func ParseTemplate(s string) *Template {
	t := &Template{}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.nodes = append(t.nodes, templateNode{text: lit.String()})
			lit.Reset()
		}
	}

	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			lit.WriteString(s)
			break
		}
		end := strings.IndexByte(s[open+1:], '}')
		if end < 0 {
			lit.WriteString(s)
			break
		}
		body := s[open+1 : open+1+end]
		if strings.ContainsAny(body, "{\n\r\u2028\u2029") {
			lit.WriteString(s[:open+1])
			s = s[open+1:]
			continue
		}

		lit.WriteString(s[:open])
		flush()
		name, arg, hasArg := strings.Cut(body, ":")
		t.nodes = append(t.nodes, templateNode{
			placeholder: true,
			text:        body,
			name:        name,
			arg:         arg,
			hasArg:      hasArg,
		})
		s = s[open+1+end+1:]
	}
	flush()

	return t
}

// Expand renders the template against a. Substituted values are emitted as
// they are and never scanned for further placeholders. Placeholders that
// resolve to nothing are removed.
func (t *Template) Expand(a *Article, env TemplateEnv) string {
	if a == nil {
		a = &Article{}
	}

	var b strings.Builder
	for _, n := range t.nodes {
		if !n.placeholder {
			b.WriteString(n.text)
			continue
		}
		b.WriteString(n.evaluate(a, env))
	}
	return b.String()
}

func (n templateNode) evaluate(a *Article, env TemplateEnv) string {
	field := func(key string) (string, bool) {
		v, ok := a.Lookup(key)
		if ok && v != "" && env.DisallowedChars != "" {
			v = SanitizeFilename(v, env.DisallowedChars)
		}
		return v, ok
	}

	// Meta keys such as "og:title" contain colons, so the whole body is
	// tried as a field name before it is split into name and argument.
	if v, ok := field(n.text); ok {
		return v
	}
	if i := strings.LastIndexByte(n.text, ':'); i >= 0 {
		if transform, ok := caseTransforms[n.text[i+1:]]; ok {
			if v, ok := field(n.text[:i]); ok {
				return transform(v)
			}
		}
	}

	switch n.name {
	case "date":
		if n.hasArg && n.arg != "" {
			return formatDate(env.Now, n.arg)
		}
	case "keywords":
		return strings.Join(a.Keywords, unescapeSeparator(n.arg))
	}
	return ""
}

// ExpandTemplate parses and expands tmpl against a at the current time.
func ExpandTemplate(tmpl string, a *Article, disallowedChars string) string {
	return ParseTemplate(tmpl).Expand(a, TemplateEnv{
		Now:             time.Now(),
		DisallowedChars: disallowedChars,
	})
}

// formatDate renders now with moment.js format tokens.
func formatDate(now time.Time, format string) string {
	g, err := goment.New(now)
	if err != nil {
		return ""
	}
	return g.Format(format)
}

// unescapeSeparator resolves one level of backslash escapes so "\n" written
// in a template yields a newline. Invalid escapes leave sep unchanged.
func unescapeSeparator(sep string) string {
	if !strings.Contains(sep, `\`) {
		return sep
	}
	quoted, err := json.Marshal(sep)
	if err != nil {
		return sep
	}
	var out string
	if err := json.Unmarshal([]byte(strings.ReplaceAll(string(quoted), `\\`, `\`)), &out); err != nil {
		return sep
	}
	return out
}

var caseTransforms = map[string]func(string) string{
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
	"kebab": func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, " ", "-"))
	},
	"mixed-kebab": func(s string) string {
		return strings.ReplaceAll(s, " ", "-")
	},
	"snake": func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, " ", "_"))
	},
	"mixed_snake": func(s string) string {
		return strings.ReplaceAll(s, " ", "_")
	},
	"obsidian-cal": func(s string) string {
		s = strings.ReplaceAll(s, " ", "-")
		for strings.Contains(s, "--") {
			s = strings.ReplaceAll(s, "--", "-")
		}
		return s
	},
	"camel": func(s string) string {
		return mapFirstRune(joinWords(s), strings.ToLower)
	},
	"pascal": func(s string) string {
		return mapFirstRune(joinWords(s), strings.ToUpper)
	},
}

// joinWords removes each space and upper-cases the character that follows it.
// A space followed by other whitespace is dropped together with it.
func joinWords(s string) string {
	rs := []rune(s)
	var b strings.Builder
	for i := 0; i < len(rs); i++ {
		if rs[i] == ' ' && i+1 < len(rs) && !isLineTerminator(rs[i+1]) {
			if next := rs[i+1]; !unicode.IsSpace(next) {
				b.WriteString(strings.ToUpper(string(next)))
			}
			i++
			continue
		}
		b.WriteRune(rs[i])
	}
	return b.String()
}

func mapFirstRune(s string, fn func(string) string) string {
	for i, r := range s {
		if isLineTerminator(r) {
			return s
		}
		return fn(string(r)) + s[i+len(string(r)):]
	}
	return s
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}
