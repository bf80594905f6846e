// Command packtool builds and inspects the ZIP asset packs consumed by
// assetfs.PackProvider.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kazikikaziki/misc-sub002/internal/archive"
)

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = build(os.Args[2], os.Args[3:])
	case "list":
		err = list(os.Args[2])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "packtool:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: packtool build <output.zip> <file-or-dir>...")
	fmt.Println("       packtool list <pack.zip>")
}

func build(outputPath string, inputs []string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	w := archive.NewWriter(out, nil)
	w.SetCompressLevel(9)

	for _, input := range inputs {
		if err := addPath(w, input); err != nil {
			return err
		}
	}
	return w.Close()
}

func addPath(w *archive.Writer, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return addFile(w, root, filepath.Base(root))
	}
	return filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return addFile(w, path, filepath.ToSlash(rel))
	})
}

func addFile(w *archive.Writer, path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	fmt.Printf("adding %s (%d bytes)\n", name, len(data))
	return w.AddEntry(name, data, archive.FileStamp{ModTime: info.ModTime()})
}

func list(packPath string) error {
	f, err := os.Open(packPath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	r, err := archive.Open(f, info.Size(), nil)
	if err != nil {
		return err
	}
	for _, e := range r.Entries() {
		fmt.Printf("%10d  %s\n", e.UncompressedSize, e.Name)
	}
	return nil
}
