package assets

import (
	"bytes"
	_ "embed"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
)

//go:embed placeholder.svg
var placeholderSVG []byte

// maxRasterDim caps rasterization size to keep buffer allocations sane.
const maxRasterDim = 2048

var placeholderOnce = sync.OnceValue(func() []byte {
	img, err := rasterizeSVG(placeholderSVG, 0, 0)
	if err != nil {
		return nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
})

// placeholderPNG returns the rasterized stand-in image for missing
// references. Rasterization runs once, every caller shares the bytes.
func placeholderPNG(log *zap.Logger) []byte {
	data := placeholderOnce()
	if data == nil {
		log.Error("Unable to rasterize placeholder image")
	}
	return data
}

// rasterizeSVG renders SVG data to an RGBA image on a white background.
// With no target dimensions the viewBox size is kept, a single dimension
// scales proportionally, both fit the image into the box.
func rasterizeSVG(svgData []byte, targetW, targetH int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, err
	}

	intrW := max(int(math.Ceil(icon.ViewBox.W)), 1)
	intrH := max(int(math.Ceil(icon.ViewBox.H)), 1)

	w, h := intrW, intrH
	switch {
	case targetW <= 0 && targetH <= 0:
		// keep intrinsic size
	case targetW > 0 && targetH <= 0:
		w = targetW
		h = int(math.Round(float64(w) * float64(intrH) / float64(intrW)))
	case targetH > 0 && targetW <= 0:
		h = targetH
		w = int(math.Round(float64(h) * float64(intrW) / float64(intrH)))
	default:
		scale := math.Min(float64(targetW)/float64(intrW), float64(targetH)/float64(intrH))
		w = int(math.Round(float64(intrW) * scale))
		h = int(math.Round(float64(intrH) * scale))
	}
	w = max(w, 1)
	h = max(h, 1)

	if w > maxRasterDim || h > maxRasterDim {
		s := min(float64(maxRasterDim)/float64(w), float64(maxRasterDim)/float64(h))
		w = max(int(math.Round(float64(w)*s)), 1)
		h = max(int(math.Round(float64(h)*s)), 1)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return dst, nil
}
