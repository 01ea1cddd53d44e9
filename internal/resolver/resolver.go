// Package resolver translates between editor URIs and workspace paths.
package resolver

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// File is one workspace file seen from every side.
type File struct {
	URI          protocol.DocumentUri
	AbsolutePath string
	RelativePath string // relative to the workspace root
}

type Resolver struct {
	root string
}

// New returns a resolver for the workspace rooted at root, which may be a
// file URI or a path. An empty root resolves relative paths against the
// current directory.
func New(root string) (*Resolver, error) {
	if strings.HasPrefix(root, "file:") {
		path, err := URIToPath(root)
		if err != nil {
			return nil, err
		}
		root = path
	}
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root %q: %w", root, err)
	}
	return &Resolver{root: abs}, nil
}

func (r *Resolver) Root() string { return r.root }

// Resolve accepts a file URI, an absolute path or a path relative to the
// workspace root.
func (r *Resolver) Resolve(base string) (File, error) {
	if base == "" {
		return File{}, fmt.Errorf("empty path")
	}
	if strings.HasPrefix(base, "file:") {
		path, err := URIToPath(base)
		if err != nil {
			return File{}, err
		}
		return r.resolveAbsolute(path)
	}
	if filepath.IsAbs(base) {
		return r.resolveAbsolute(base)
	}
	return r.resolveAbsolute(filepath.Join(r.root, base))
}

func (r *Resolver) resolveAbsolute(path string) (File, error) {
	cleaned := filepath.Clean(path)
	rel, err := filepath.Rel(r.root, cleaned)
	if err != nil {
		return File{}, fmt.Errorf("failed to relate %s to %s: %w", cleaned, r.root, err)
	}
	return File{
		URI:          PathToURI(cleaned),
		AbsolutePath: cleaned,
		RelativePath: filepath.ToSlash(rel),
	}, nil
}

// Inside reports whether f lies under the workspace root.
func (f File) Inside() bool {
	return f.RelativePath != ".." && !strings.HasPrefix(f.RelativePath, "../")
}

// URIToPath converts a file URI to a local path.
func URIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid uri %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported uri scheme %q", u.Scheme)
	}
	return filepath.FromSlash(u.Path), nil
}

// PathToURI converts an absolute path to a file URI.
func PathToURI(path string) protocol.DocumentUri {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(filepath.Clean(path)),
	}
	return u.String()
}
