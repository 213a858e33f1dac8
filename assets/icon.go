// Package assets holds files embedded into the binary.
package assets

import (
	_ "embed"
	"fmt"
	"image"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed companion_icon.svg
var iconSVG string

// IconSizes are the square sizes handed to the window manager
var IconSizes = []int{16, 32, 48, 64, 128, 256}

// Icons renders the embedded icon at every size in IconSizes. Sizes that fail
// to render are skipped.
func Icons() []image.Image {
	var icons []image.Image
	for _, size := range IconSizes {
		if img, err := Icon(size); err == nil {
			icons = append(icons, img)
		}
	}
	return icons
}

// Icon renders the embedded icon at size×size
func Icon(size int) (*image.RGBA, error) {
	return renderSVG(iconSVG, size)
}

func renderSVG(svgData string, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid icon size %d", size)
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(svgData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse icon: %w", err)
	}

	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	return rgba, nil
}
