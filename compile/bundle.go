package compile

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"

	fixzip "github.com/hidez8891/zip"

	"slidec/assets"
)

const bundleDocumentName = "index.html"

// writeBundle packs the document and its assets into a single zip archive.
// The archive is staged to a temporary file first and then rewritten without
// data descriptors, some viewers refuse entries that carry them.
func writeBundle(doc string, files []assets.Asset, outPath string) error {
	tmp, err := os.CreateTemp(path.Dir(outPath), ".bundle-*.zip")
	if err != nil {
		return fmt.Errorf("unable to create temporary bundle: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := writeBundleEntries(tmp, doc, files); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to finalize temporary bundle: %w", err)
	}

	return copyZipWithoutDataDescriptors(tmpName, outPath)
}

func writeBundleEntries(w io.Writer, doc string, files []assets.Asset) error {
	zw := zip.NewWriter(w)
	defer zw.Close()

	if err := writeDataToZip(zw, bundleDocumentName, []byte(doc)); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}
	for _, a := range files {
		if err := writeDataToZip(zw, a.Path, a.Data); err != nil {
			return fmt.Errorf("unable to write asset %s: %w", a.Path, err)
		}
	}
	return zw.Close()
}

func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func copyZipWithoutDataDescriptors(from, to string) error {

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}
