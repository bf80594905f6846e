package assetfs

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DirProvider resolves asset names against a directory on the host
// filesystem, rejecting any name that would escape the root via "..".
type DirProvider struct {
	Root       string
	IgnoreCase bool
}

// NewDirProvider returns a provider rooted at root.
func NewDirProvider(root string) *DirProvider {
	return &DirProvider{Root: root}
}

func (p *DirProvider) resolve(name string) (string, bool) {
	if strings.Contains(name, "..") {
		return "", false
	}
	full := filepath.Join(p.Root, filepath.FromSlash(name))
	if !p.IgnoreCase {
		return full, true
	}
	if found, ok := caseInsensitiveResolve(p.Root, name); ok {
		return found, true
	}
	return full, true
}

func (p *DirProvider) Exists(name string) bool {
	full, ok := p.resolve(name)
	if !ok {
		return false
	}
	_, err := os.Stat(full)
	return err == nil
}

func (p *DirProvider) Open(name string) (io.ReadCloser, bool) {
	full, ok := p.resolve(name)
	if !ok {
		return nil, false
	}
	f, err := openShared(full)
	if err != nil {
		return nil, false
	}
	return f, true
}

// caseInsensitiveResolve walks root's entries looking for a path-component
// match, for hosts whose asset packs were authored on a case-insensitive
// filesystem but are now served from one that isn't.
func caseInsensitiveResolve(root, name string) (string, bool) {
	parts := strings.Split(name, "/")
	cur := root
	for _, part := range parts {
		if part == "" {
			continue
		}
		entries, err := os.ReadDir(cur)
		if err != nil {
			return "", false
		}
		matched := ""
		for _, e := range entries {
			if strings.EqualFold(e.Name(), part) {
				matched = e.Name()
				break
			}
		}
		if matched == "" {
			return "", false
		}
		cur = filepath.Join(cur, matched)
	}
	return cur, true
}
