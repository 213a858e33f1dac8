package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIcon(t *testing.T) {
	img, err := Icon(64)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())

	// Centre of the face is opaque, the rounded corner is not
	assert.Equal(t, uint8(255), img.RGBAAt(32, 26).A)
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A)
}

func TestIcons(t *testing.T) {
	icons := Icons()
	require.Len(t, icons, len(IconSizes))
	for i, img := range icons {
		assert.Equal(t, IconSizes[i], img.Bounds().Dx())
	}
}

func TestRenderSVGErrors(t *testing.T) {
	_, err := renderSVG(iconSVG, 0)
	assert.Error(t, err)

	_, err = renderSVG("<svg", 32)
	assert.Error(t, err)
}
