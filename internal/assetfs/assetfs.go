// Package assetfs implements the ordered asset provider chain: plain
// directories, ZIP pack files, and embedded resources resolved through one
// name->byte-blob interface.
//
// Providers are tried in insertion order and the search terminates on the
// first hit. A missing asset is not exceptional — Open returns (nil,
// false) and LoadAll returns (nil, false); callers that want the error
// kind spelled out use errs.ErrNotFound via MustLoadAll.
package assetfs

import (
	"bytes"
	"io"
	"os"
	"path"
	"strings"

	"github.com/kazikikaziki/misc-sub002/internal/debug"
	"github.com/kazikikaziki/misc-sub002/internal/errs"
)

// Provider is the capability set every asset source implements.
type Provider interface {
	Exists(name string) bool
	Open(name string) (io.ReadCloser, bool)
}

// Loader resolves asset names through an ordered chain of providers,
// falling back to the host filesystem if none are registered.
type Loader struct {
	providers []Provider
	Logger    *debug.Logger
}

// NewLoader returns an empty loader. Add providers with AddProvider in the
// priority order they should be tried.
func NewLoader(logger *debug.Logger) *Loader {
	return &Loader{Logger: logger}
}

// AddProvider appends p to the end of the search chain.
func (l *Loader) AddProvider(p Provider) {
	l.providers = append(l.providers, p)
}

// Exists reports whether any provider (or, absent providers, the host
// filesystem) has name.
func (l *Loader) Exists(name string) bool {
	name = normalize(name)
	for _, p := range l.providers {
		if p.Exists(name) {
			return true
		}
	}
	if len(l.providers) == 0 {
		_, err := os.Stat(name)
		return err == nil
	}
	return false
}

// Open resolves name against the provider chain, returning the first hit.
// If no provider is registered it falls back to the host filesystem.
func (l *Loader) Open(name string) (io.ReadCloser, bool) {
	name = normalize(name)
	for i, p := range l.providers {
		if rc, ok := p.Open(name); ok {
			if l.Logger != nil {
				l.Logger.LogAssetf(debug.LogLevelDebug, "resolved %q via provider #%d", name, i)
			}
			return rc, true
		}
	}
	if len(l.providers) == 0 {
		f, err := os.Open(name)
		if err != nil {
			return nil, false
		}
		return f, true
	}
	if l.Logger != nil {
		l.Logger.LogAssetf(debug.LogLevelWarning, "asset not found: %q", name)
	}
	return nil, false
}

// LoadAll reads an asset's entire contents.
func (l *Loader) LoadAll(name string) ([]byte, bool) {
	rc, ok := l.Open(name)
	if !ok {
		return nil, false
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false
	}
	return data, true
}

// MustLoadAll is LoadAll with the not_found case made explicit as
// errs.ErrNotFound, for callers that want a single error-returning path.
func (l *Loader) MustLoadAll(name string) ([]byte, error) {
	data, ok := l.LoadAll(name)
	if !ok {
		return nil, errs.New(errs.KindNotFound, "assetfs.Loader.MustLoadAll", nil)
	}
	return data, nil
}

// normalize applies the asset path convention from spec.md §6: forward
// slashes, relative paths only.
func normalize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "/")
	return path.Clean(name)
}

type bytesReadCloser struct {
	*bytes.Reader
}

func (bytesReadCloser) Close() error { return nil }

func newBytesReadCloser(b []byte) io.ReadCloser {
	return bytesReadCloser{bytes.NewReader(b)}
}
