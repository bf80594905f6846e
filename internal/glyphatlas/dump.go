package glyphatlas

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/jsummers/gobmp"
	"github.com/nfnt/resize"
)

// DumpPagesBMP writes one BMP file per page to dir, named page-0000.bmp,
// page-0001.bmp, ... for visual inspection of the packing. It's a debug aid,
// never called from the hot path.
func (a *Atlas) DumpPagesBMP(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, p := range a.pages {
		name := filepath.Join(dir, fmt.Sprintf("page-%04d.bmp", i))
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		err = writePageBMP(f, p.Image)
		cerr := f.Close()
		if err != nil {
			return err
		}
		if cerr != nil {
			return cerr
		}
	}
	return nil
}

// writePageBMP renders an 8-bit alpha page as a grayscale BMP (alpha encoded
// as luminance, since BMP has no native alpha-only format).
func writePageBMP(w io.Writer, a *image.Alpha) error {
	gray := image.NewGray(a.Bounds())
	for y := a.Bounds().Min.Y; y < a.Bounds().Max.Y; y++ {
		for x := a.Bounds().Min.X; x < a.Bounds().Max.X; x++ {
			v := a.AlphaAt(x, y).A
			gray.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return gobmp.Encode(w, gray)
}

// DumpPageThumbnailBMP writes a scaled-down thumbnail of page index, handy
// for eyeballing packing density on large atlases without opening the
// full-resolution page.
func (a *Atlas) DumpPageThumbnailBMP(index int, path string, maxSide uint) error {
	if index < 0 || index >= len(a.pages) {
		return fmt.Errorf("glyphatlas: page index %d out of range", index)
	}
	p := a.pages[index]
	thumb := resize.Thumbnail(maxSide, maxSide, p.Image, resize.Lanczos3)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	gray := image.NewGray(thumb.Bounds())
	for y := thumb.Bounds().Min.Y; y < thumb.Bounds().Max.Y; y++ {
		for x := thumb.Bounds().Min.X; x < thumb.Bounds().Max.X; x++ {
			r, _, _, _ := thumb.At(x, y).RGBA()
			gray.SetGray(x, y, color.Gray{Y: uint8(r >> 8)})
		}
	}
	return gobmp.Encode(f, gray)
}
