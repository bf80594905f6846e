package assetfs

import (
	"embed"
	"io"
)

// EmbedProvider resolves asset names against a compiled-in embed.FS, for
// assets that must be available with no filesystem or pack file present.
type EmbedProvider struct {
	FS     embed.FS
	Prefix string // directory inside FS that asset names are relative to
}

// NewEmbedProvider wraps fs, treating names as relative to prefix.
func NewEmbedProvider(fs embed.FS, prefix string) *EmbedProvider {
	return &EmbedProvider{FS: fs, Prefix: prefix}
}

func (p *EmbedProvider) fullName(name string) string {
	if p.Prefix == "" {
		return name
	}
	return p.Prefix + "/" + name
}

func (p *EmbedProvider) Exists(name string) bool {
	_, err := p.FS.Open(p.fullName(name))
	if err != nil {
		return false
	}
	return true
}

func (p *EmbedProvider) Open(name string) (io.ReadCloser, bool) {
	f, err := p.FS.Open(p.fullName(name))
	if err != nil {
		return nil, false
	}
	return f, true
}
