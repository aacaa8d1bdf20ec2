// Package archive builds Walk abstraction on top of "archive/zip" for
// documentation bundles carrying navtree scripts.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/text/encoding"
)

// File is a regular file inside archive.
type File struct {
	// Name is path inside archive, converted to UTF-8 when archive does not
	// mark it as such and decoder was provided.
	Name string
	// Raw is the name as stored in archive.
	Raw string

	zf *zip.File
}

func (f *File) Open() (io.ReadCloser, error) {
	return f.zf.Open()
}

// ReadAll reads whole file, refusing files larger than limit when limit is
// positive.
func (f *File) ReadAll(limit int64) ([]byte, error) {
	if limit > 0 && f.zf.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("zip entry %q is too large (%d bytes)", f.Name, f.zf.UncompressedSize64)
	}
	r, err := f.zf.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to
// Walk. If an error is returned, processing stops.
type WalkFunc func(archive string, file *File) error

// Walk calls walkFn for every regular file under pathIn (a file or a directory
// inside archive, empty for the whole archive) in natural name order. Entries
// with path traversal components ("..") or absolute paths fail the walk to
// prevent Zip Slip attacks. Non-empty pathIn matching nothing is an error.
func Walk(archive, pathIn string, dec *encoding.Decoder, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	pathIn = strings.Trim(path.Clean("/"+strings.ReplaceAll(pathIn, `\`, "/")), "/")

	files := make([]*File, 0, len(r.File))
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		file := &File{Name: name, Raw: name, zf: f}
		if dec != nil && f.FileHeader.NonUTF8 {
			if n, err := dec.String(name); err == nil {
				file.Name = n
			}
		}
		if !inPath(file.Name, pathIn) {
			continue
		}
		files = append(files, file)
	}
	if len(pathIn) > 0 && len(files) == 0 {
		return fmt.Errorf("path %q not found in archive", pathIn)
	}

	slices.SortStableFunc(files, func(a, b *File) int {
		switch {
		case a.Name == b.Name:
			return 0
		case natural.Less(a.Name, b.Name):
			return -1
		}
		return 1
	})

	for _, f := range files {
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

// inPath reports whether name is pathIn itself or is located under it.
func inPath(name, pathIn string) bool {
	if len(pathIn) == 0 || name == pathIn {
		return true
	}
	return strings.HasPrefix(name, pathIn+"/")
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
