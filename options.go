package markdownload

import (
	"encoding/json"
	"maps"
	"reflect"
	"strings"
	"sync"
)

// Image styles.
const (
	ImageStyleMarkdown         = "markdown"
	ImageStyleBase64           = "base64"
	ImageStyleObsidian         = "obsidian"
	ImageStyleObsidianNoFolder = "obsidian-nofolder"
	ImageStyleOriginalSource   = "originalSource"
	ImageStyleNoImage          = "noImage"
)

// Options controls Markdown styling, templating and asset handling. Field
// names serialize to the same keys callers use in overrides.
type Options struct {
	HeadingStyle        string  `json:"headingStyle"`
	HR                  string  `json:"hr"`
	BulletListMarker    string  `json:"bulletListMarker"`
	CodeBlockStyle      string  `json:"codeBlockStyle"`
	Fence               string  `json:"fence"`
	EmDelimiter         string  `json:"emDelimiter"`
	StrongDelimiter     string  `json:"strongDelimiter"`
	LinkStyle           string  `json:"linkStyle"`
	LinkReferenceStyle  string  `json:"linkReferenceStyle"`
	ImageStyle          string  `json:"imageStyle"`
	ImageRefStyle       string  `json:"imageRefStyle"`
	Frontmatter         string  `json:"frontmatter"`
	Backmatter          string  `json:"backmatter"`
	Title               string  `json:"title"`
	IncludeTemplate     bool    `json:"includeTemplate"`
	SaveAs              bool    `json:"saveAs"`
	DownloadImages      bool    `json:"downloadImages"`
	ImagePrefix         string  `json:"imagePrefix"`
	MdClipsFolder       *string `json:"mdClipsFolder"`
	DisallowedChars     string  `json:"disallowedChars"`
	DownloadMode        string  `json:"downloadMode"`
	TurndownEscape      bool    `json:"turndownEscape"`
	ContextMenus        bool    `json:"contextMenus"`
	ObsidianIntegration bool    `json:"obsidianIntegration"`
	ObsidianVault       string  `json:"obsidianVault"`
	ObsidianFolder      string  `json:"obsidianFolder"`
	Puppeteer           bool    `json:"puppeteer"`

	// Extra holds override keys this version does not recognize. They are
	// carried through untouched and serialized alongside the known keys.
	Extra map[string]any `json:"-"`
}

// DefaultFrontmatter is the template prepended to every clip by default.
const DefaultFrontmatter = "---\ncreated: {date:YYYY-MM-DDTHH:mm:ss} (UTC {date:Z})\ntags: [{keywords}]\nsource: {baseURI}\nauthor: {byline}\n---\n\n# {pageTitle}\n\n> ## Excerpt\n> {excerpt}\n\n---"

// DefaultOptions returns the built-in option baseline.
func DefaultOptions() Options {
	return Options{
		HeadingStyle:       "atx",
		HR:                 "___",
		BulletListMarker:   "-",
		CodeBlockStyle:     "fenced",
		Fence:              "```",
		EmDelimiter:        "_",
		StrongDelimiter:    "**",
		LinkStyle:          "inlined",
		LinkReferenceStyle: "full",
		ImageStyle:         ImageStyleMarkdown,
		ImageRefStyle:      "inlined",
		Frontmatter:        DefaultFrontmatter,
		Backmatter:         "",
		Title:              "{pageTitle}",
		IncludeTemplate:    true,
		ImagePrefix:        "{pageTitle}/",
		DisallowedChars:    "[]#^",
		DownloadMode:       "downloadsApi",
		TurndownEscape:     true,
		ContextMenus:       true,
	}
}

// Overrides is one layer of option values keyed by option name.
type Overrides map[string]any

// EnvOverrides reads the environment-level option layer through getenv.
// Unset variables contribute nothing.
func EnvOverrides(getenv func(string) string) Overrides {
	o := Overrides{}
	if v := getenv("DOWNLOAD_IMAGES"); v != "" {
		o["downloadImages"] = v == "true"
	}
	if v := getenv("IMAGE_STYLE"); v != "" {
		o["imageStyle"] = v
	}
	if v := getenv("USE_PUPPETEER"); v != "" {
		o["puppeteer"] = v == "true"
	}
	return o
}

// OptionLayers are the three option sources in increasing priority.
type OptionLayers struct {
	Defaults Options
	Env      Overrides
	Call     Overrides
}

// Resolve overlays the environment and call layers onto the defaults.
func (l OptionLayers) Resolve() Options {
	opts := l.Defaults
	opts.Extra = maps.Clone(l.Defaults.Extra)
	opts.apply(l.Env)
	opts.apply(l.Call)
	return opts
}

// ResolveOptions returns the effective options for one call: defaults,
// overlaid by env, overlaid by call. It never fails; a value of the wrong
// type for a known key is ignored.
func ResolveOptions(env, call Overrides) Options {
	return OptionLayers{Defaults: DefaultOptions(), Env: env, Call: call}.Resolve()
}

func (o *Options) apply(layer Overrides) {
	known := optionKeys()
	for key, value := range layer {
		if _, ok := known[key]; !ok {
			if o.Extra == nil {
				o.Extra = make(map[string]any)
			}
			o.Extra[key] = value
			continue
		}
		buf, err := json.Marshal(map[string]any{key: value})
		if err != nil {
			continue
		}
		next := *o
		if key == "mdClipsFolder" {
			next.MdClipsFolder = nil
		}
		if err := json.Unmarshal(buf, &next); err != nil {
			continue
		}
		next.Extra = o.Extra
		*o = next
	}
}

// Overrides returns the options as an override layer, including Extra keys.
func (o Options) Overrides() Overrides {
	out := Overrides{}
	maps.Copy(out, o.Extra)
	buf, err := json.Marshal(optionsJSON(o))
	if err != nil {
		return out
	}
	var known map[string]any
	if err := json.Unmarshal(buf, &known); err != nil {
		return out
	}
	maps.Copy(out, known)
	return out
}

// MarshalJSON serializes known options and Extra keys into one object.
func (o Options) MarshalJSON() ([]byte, error) {
	if len(o.Extra) == 0 {
		return json.Marshal(optionsJSON(o))
	}
	return json.Marshal(map[string]any(o.Overrides()))
}

// optionsJSON strips the MarshalJSON method to avoid recursion.
type optionsJSON Options

var optionKeys = sync.OnceValue(func() map[string]struct{} {
	keys := make(map[string]struct{})
	t := reflect.TypeFor[Options]()
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = struct{}{}
		}
	}
	return keys
})
