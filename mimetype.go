package umt

import (
	"mime"
	"path/filepath"
	"strings"
)

// MimeType identifies the content type of a node: "major/minor", the
// wildcards "major/*" and "*/*", or a kind-qualified form "major/minor:kind".
type MimeType string

// Wildcard mime types.
const (
	AnyMimeType MimeType = "*/*"
	wildcard             = "*"
)

// Major returns the part before the slash ("text" for "text/markdown:image").
func (m MimeType) Major() string {
	major, _, _ := strings.Cut(string(m.Base()), "/")
	return major
}

// Base strips the ":kind" qualifier, if any.
func (m MimeType) Base() MimeType {
	base, _, _ := strings.Cut(string(m), ":")
	return MimeType(base)
}

// Kind returns the ":kind" qualifier, or "" when unqualified.
func (m MimeType) Kind() string {
	_, kind, _ := strings.Cut(string(m), ":")
	return kind
}

// Wildcard returns "major/*".
func (m MimeType) Wildcard() MimeType {
	return MimeType(m.Major() + "/" + wildcard)
}

// Qualify returns "mime:kind". An empty kind returns m unchanged.
func (m MimeType) Qualify(kind string) MimeType {
	if kind == "" {
		return m.Base()
	}
	return MimeType(string(m.Base()) + ":" + kind)
}

// IsWildcard reports whether the minor part (or both parts) is "*".
func (m MimeType) IsWildcard() bool {
	_, minor, _ := strings.Cut(string(m.Base()), "/")
	return minor == wildcard
}

func (m MimeType) String() string { return string(m) }

// creationKeys lists hook registration keys for a node, most specific first.
func creationKeys(m MimeType, kind string) []MimeType {
	base := m.Base()
	keys := make([]MimeType, 0, 4)
	if kind != "" {
		keys = append(keys, base.Qualify(kind))
	}
	keys = append(keys, base)
	if w := base.Wildcard(); w != base {
		keys = append(keys, w)
	}
	if base != AnyMimeType {
		keys = append(keys, AnyMimeType)
	}
	return keys
}

// serializerKeys lists the serializer fallback chain for a format pair.
func serializerKeys(from, to MimeType) []serKey {
	from = from.Base()
	keys := []serKey{{from: from, to: to}}
	if w := from.Wildcard(); w != from && from.Major() != "" {
		keys = append(keys, serKey{from: w, to: to})
	}
	if from != AnyMimeType {
		keys = append(keys, serKey{from: AnyMimeType, to: to})
	}
	return keys
}

// Extensions that the standard mime table does not know or maps
// differently across platforms.
var extensionTypes = map[string]MimeType{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".mdown":    "text/markdown",
	".html":     "text/html",
	".htm":      "text/html",
	".json":     "application/json",
	".xml":      "application/xml",
	".txt":      "text/plain",
	".text":     "text/plain",
	".png":      "image/png",
	".jpg":      "image/jpeg",
	".jpeg":     "image/jpeg",
	".gif":      "image/gif",
	".webp":     "image/webp",
	".svg":      "image/svg+xml",
}

// Content types that name the same format.
var mimeAliases = map[MimeType]MimeType{
	"text/x-markdown":       "text/markdown",
	"text/xml":              "application/xml",
	"application/xhtml+xml": "text/html",
	"text/json":             "application/json",
}

// DetectMimeType maps a declared content type ("text/html; charset=utf-8"),
// a filename ("notes.md") or a bare extension ("md") to a mime type. It
// does not consult any registry; see Engine.MimeTypeOf.
func DetectMimeType(input string) (MimeType, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}

	if m, ok := typeByExtension(filepath.Ext(input)); ok {
		return m, true
	}

	if strings.Contains(input, "/") {
		mediaType, _, err := mime.ParseMediaType(input)
		if err == nil && strings.Count(mediaType, "/") == 1 {
			return normalizeMimeType(MimeType(mediaType)), true
		}
		return "", false
	}

	return typeByExtension("." + strings.TrimPrefix(input, "."))
}

func typeByExtension(ext string) (MimeType, bool) {
	ext = strings.ToLower(ext)
	if ext == "" || ext == "." {
		return "", false
	}
	if m, ok := extensionTypes[ext]; ok {
		return m, true
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if mediaType, _, err := mime.ParseMediaType(t); err == nil {
			return normalizeMimeType(MimeType(mediaType)), true
		}
	}
	return "", false
}

func normalizeMimeType(m MimeType) MimeType {
	m = MimeType(strings.ToLower(string(m)))
	if alias, ok := mimeAliases[m]; ok {
		return alias
	}
	return m
}
