// Package assets copies and optimizes the images a presentation refers to.
// References in slide sources are paths relative to the source file; on the
// output side every image lands in a flat assets directory next to the
// document, so sibling names from different source directories are de-duped.
package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"slidec/config"
	"slidec/jpegquality"
)

// AssetDir is the directory, relative to the output document, where all
// referenced images are placed.
const AssetDir = "assets"

// Asset is a single output file: its original reference, the output-relative
// path and the (possibly re-encoded) payload.
type Asset struct {
	Ref  string
	Path string
	Data []byte
}

// Plan maps every reference to its output-relative path. Basename collisions
// between different references get a numeric suffix, repeated references map
// to the same entry.
func Plan(refs []string) map[string]string {
	plan := make(map[string]string, len(refs))
	taken := make(map[string]string, len(refs))

	for _, ref := range refs {
		if _, done := plan[ref]; done {
			continue
		}
		base := filepath.Base(filepath.FromSlash(ref))
		name := base
		for n := 2; ; n++ {
			prev, used := taken[name]
			if !used || prev == ref {
				break
			}
			ext := filepath.Ext(base)
			name = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(base, ext), n, ext)
		}
		taken[name] = ref
		plan[ref] = path.Join(AssetDir, name)
	}
	return plan
}

// Collect reads every planned asset from disk, optimizing images on the way
// per configuration. Missing files are substituted with a generated
// placeholder when enabled and skipped with a warning otherwise; a single
// unreadable image never fails the whole deck.
func Collect(plan map[string]string, srcDir string, cfg *config.AssetsConfig, log *zap.Logger) []Asset {
	out := make([]Asset, 0, len(plan))

	for ref, outPath := range plan {
		data, err := os.ReadFile(filepath.Join(srcDir, filepath.FromSlash(ref)))
		if err != nil {
			if cfg.UsePlaceholder {
				log.Warn("Referenced image is missing, using placeholder", zap.String("ref", ref), zap.Error(err))
				out = append(out, Asset{Ref: ref, Path: outPath, Data: placeholderPNG(log)})
			} else {
				log.Warn("Referenced image is missing, skipping", zap.String("ref", ref), zap.Error(err))
			}
			continue
		}
		out = append(out, Asset{Ref: ref, Path: outPath, Data: optimize(ref, data, cfg, log)})
	}
	return out
}

// optimize resizes and re-encodes a single image according to configuration.
// Anything it cannot handle is passed through untouched.
func optimize(ref string, data []byte, cfg *config.AssetsConfig, log *zap.Logger) []byte {
	kind, err := filetype.Image(data)
	if err != nil {
		// not a raster image (could be SVG), leave as is
		log.Debug("Leaving non-raster asset untouched", zap.String("ref", ref))
		return data
	}

	needResize := cfg.Resize != config.ImageResizeModeNone && cfg.MaxWidth > 0
	if !needResize && !cfg.Optimize {
		return data
	}

	img, imgType, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn("Unable to decode image, leaving as is", zap.String("ref", ref), zap.String("type", kind.MIME.Value), zap.Error(err))
		return data
	}

	changed := false

	if needResize && img.Bounds().Dx() > cfg.MaxWidth {
		switch cfg.Resize {
		case config.ImageResizeModeKeepAR:
			img = imaging.Resize(img, cfg.MaxWidth, 0, imaging.Lanczos)
		case config.ImageResizeModeStretch:
			img = imaging.Resize(img, cfg.MaxWidth, img.Bounds().Dy(), imaging.Lanczos)
		}
		changed = true
	}

	if cfg.Optimize && !changed {
		switch imgType {
		case "jpeg":
			jr, err := jpegquality.NewWithBytes(data)
			if err != nil {
				log.Warn("Unable to detect JPEG quality level, skipping", zap.String("ref", ref), zap.Error(err))
				break
			}
			if q := jr.Quality(); q > cfg.JPEGQuality {
				log.Debug("JPEG quality level higher than requested, reencoding",
					zap.String("ref", ref), zap.Int("detected", q), zap.Int("requested", cfg.JPEGQuality))
				changed = true
			}
		case "png":
			changed = true
		}
	}

	if !changed {
		return data
	}

	encoded, err := encode(img, imgType, cfg)
	if err != nil {
		log.Warn("Unable to encode processed image, leaving as is", zap.String("ref", ref), zap.Error(err))
		return data
	}
	if encoded == nil {
		return data
	}
	return encoded
}

func encode(img image.Image, imgType string, cfg *config.AssetsConfig) ([]byte, error) {
	buf := new(bytes.Buffer)
	switch imgType {
	case "png":
		if err := imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
			return nil, err
		}
	case "jpeg":
		if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(cfg.JPEGQuality)); err != nil {
			return nil, err
		}
	default:
		// resized gif/bmp/tiff/webp sources are stored as png
		if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Write stores collected assets under the output document's directory.
func Write(outDir string, files []Asset) error {
	for _, a := range files {
		target := filepath.Join(outDir, filepath.FromSlash(a.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("unable to create asset directory: %w", err)
		}
		if err := os.WriteFile(target, a.Data, 0644); err != nil {
			return fmt.Errorf("unable to write asset %s: %w", a.Path, err)
		}
	}
	return nil
}
