package assets

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
)

// ManifestName is the file, relative to the asset root, that lists every asset.
const ManifestName = "AssetLists.txt"

// Kind is the declared kind of an asset.
type Kind int

const (
	// Static assets must exist, are hash-checked against a sidecar and are read-only.
	Static Kind = iota
	// Dynamic assets must exist and are writable.
	Dynamic
	// Optional assets may be missing and are created on first write.
	Optional
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "Static"
	case Dynamic:
		return "Dynamic"
	case Optional:
		return "Optional"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a manifest token to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "Static":
		return Static, true
	case "Dynamic":
		return Dynamic, true
	case "Optional":
		return Optional, true
	}
	return 0, false
}

// Writable reports whether handles of this kind accept writes.
func (k Kind) Writable() bool { return k == Dynamic || k == Optional }

// Entry is one manifest line.
type Entry struct {
	Path string // slash-separated, relative to the asset root
	Kind Kind
	Line int
}

// ParseManifest reads AssetLists.txt content. Each non-blank, non-comment line holds
// `<relative-path> <kind>`, optionally followed by a `#` comment. Malformed lines and
// duplicate paths fail with a ParsingError naming the line.
//
// Parameters:
//   - r: the manifest content
//
// Returns:
//   - []Entry: the entries in file order
//   - error: a ParsingError, or an I/O error from r
func ParseManifest(r io.Reader) ([]Entry, error) {
	var entries []Entry
	seen := make(map[string]int)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, manifestErr(line, "expected `<path> <kind>`, found %d tokens", len(fields))
		}
		rel, err := CleanPath(fields[0])
		if err != nil {
			return nil, manifestErr(line, "%v", err)
		}
		kind, ok := ParseKind(fields[1])
		if !ok {
			return nil, manifestErr(line, "unknown kind %q", fields[1])
		}
		if prev, dup := seen[rel]; dup {
			return nil, manifestErr(line, "duplicate path %q (first declared on line %d)", rel, prev)
		}
		seen[rel] = line
		entries = append(entries, Entry{Path: rel, Kind: kind, Line: line})
	}
	if err := sc.Err(); err != nil {
		return nil, apperr.FromIO("manifest.parse", ManifestName, err)
	}
	return entries, nil
}

func manifestErr(line int, format string, args ...any) error {
	return apperr.Wrap(apperr.ParsingError, "manifest.parse", fmt.Sprintf("%s:%d", ManifestName, line),
		fmt.Errorf(format, args...))
}

// CleanPath normalizes an asset path to slash form and rejects paths that escape the root.
//
// Parameters:
//   - p: a relative path in either slash or OS form
//
// Returns:
//   - string: the cleaned slash-separated path
//   - error: an error if p is empty, absolute, or escapes the root
func CleanPath(p string) (string, error) {
	p = filepath.ToSlash(p)
	if p == "" {
		return "", fmt.Errorf("empty path")
	}
	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return "", fmt.Errorf("path %q must be relative", p)
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("path %q escapes the asset root", p)
	}
	return cleaned, nil
}
