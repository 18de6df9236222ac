// Package archive builds a Walk abstraction on top of "archive/zip" for
// processing deck collections shipped as zip files.
package archive

import (
	"archive/zip"
	"path"
	"strings"
)

// WalkFunc is the type of the function called for each file in the archive
// visited by Walk. The archive argument is the path passed to Walk, the file
// argument is the zip.File of an entry under the requested prefix. Returning
// an error stops the walk.
type WalkFunc func(archive string, file *zip.File) error

// Walk calls walkFn for every regular file in the archive whose name starts
// with prefix. Entries with path traversal components ("..") or absolute
// paths are skipped, a hostile collection must not be able to smuggle names
// that escape the output directory.
func Walk(archive, prefix string, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			continue
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, prefix) {
			if err := walkFn(archive, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// isSafePath returns false for entry names that could escape the extraction
// directory.
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
