package compile

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
)

// isArchiveFile sniffs file content for the zip signature. Extension alone is
// not trusted, deck collections get shipped around with all kinds of names.
func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return false, err
	}

	kind, err := filetype.Match(head[:n])
	if err != nil {
		return false, err
	}
	return kind == matchers.TypeZip, nil
}

// isDeckFile reports whether the path looks like a deck source. YAML has no
// magic bytes, so this is an extension check.
func isDeckFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// isDeckInArchive applies the same check to an archive entry.
func isDeckInArchive(f *zip.File) bool {
	return isDeckFile(f.FileHeader.Name)
}
