// Package docs embeds the topic pages shown by `taskboard docs`.
package docs

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

type Topic struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Topics lists every page, sorted by name. The title is the page's first
// "# " heading.
func Topics() []Topic {
	paths, err := fs.Glob(contentFS, "content/*.md")
	if err != nil {
		return []Topic{}
	}
	out := make([]Topic, 0, len(paths))
	for _, p := range paths {
		name := strings.TrimSuffix(path.Base(p), ".md")
		body, _ := contentFS.ReadFile(p)
		out = append(out, Topic{Name: name, Title: title(string(body), name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func title(body, fallback string) string {
	for _, line := range strings.Split(body, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return fallback
}

// Get returns the markdown of a topic, matched case-insensitively.
func Get(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, "/\\") {
		return "", false
	}
	b, err := contentFS.ReadFile(path.Join("content", name+".md"))
	if err != nil {
		return "", false
	}
	return string(b), true
}
