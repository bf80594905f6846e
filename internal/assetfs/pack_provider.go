package assetfs

import (
	"io"
	"os"

	"github.com/kazikikaziki/misc-sub002/internal/archive"
)

// PackProvider resolves asset names against entries of an already-open ZIP
// archive, making archive.Reader a drop-in Provider in the AssetLoader
// chain (spec.md §2's "archives are ZipArchive entries exposed through the
// same interface").
type PackProvider struct {
	reader   *archive.Reader
	password string
	opts     archive.FindOptions
}

// NewPackProvider wraps an already-opened archive reader. password is used
// for every entry lookup in this pack; packs with per-entry passwords need
// one PackProvider per password, layered in the loader chain.
func NewPackProvider(reader *archive.Reader, password string, opts archive.FindOptions) *PackProvider {
	return &PackProvider{reader: reader, password: password, opts: opts}
}

// OpenPackFile opens path as a ZIP pack and wraps it in a PackProvider.
func OpenPackFile(path, password string, opts archive.FindOptions) (*PackProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	reader, err := archive.Open(f, info.Size(), nil)
	if err != nil {
		f.Close()
		return nil, err
	}
	return NewPackProvider(reader, password, opts), nil
}

func (p *PackProvider) Exists(name string) bool {
	return p.reader.FindEntry(name, p.opts) != nil
}

func (p *PackProvider) Open(name string) (io.ReadCloser, bool) {
	e := p.reader.FindEntry(name, p.opts)
	if e == nil {
		return nil, false
	}
	data, err := p.reader.Extract(e, p.password)
	if err != nil {
		return nil, false
	}
	return newBytesReadCloser(data), true
}
