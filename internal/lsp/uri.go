package lsp

import (
	"path/filepath"
	"strings"

	"go.lsp.dev/uri"
)

// uriToPath returns the local path of a file URI. A bare path is accepted
// as is; other schemes (untitled:, git:) have no path.
func uriToPath(raw string) string {
	switch {
	case raw == "":
		return ""
	case !strings.Contains(raw, ":") || filepath.IsAbs(raw):
		return absPath(raw)
	case !strings.HasPrefix(raw, uri.FileScheme+":"):
		return ""
	}
	u, err := uri.Parse(raw)
	if err != nil {
		return ""
	}
	return absPath(u.Filename())
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func pathToURI(path string) string {
	if path == "" {
		return ""
	}
	return string(uri.File(path))
}

// canonicalURI maps equivalent spellings of a file URI to one key. Non-file
// URIs (untitled buffers) are kept verbatim.
func canonicalURI(raw string) string {
	if path := uriToPath(raw); path != "" {
		return pathToURI(path)
	}
	return raw
}
