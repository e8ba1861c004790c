package services

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRCodeDataURI(t *testing.T) {
	uri, err := QRCodeDataURI("https://bharatprint.app/view/abc")
	require.NoError(t, err)

	const prefix = "data:image/png;base64,"
	require.True(t, strings.HasPrefix(uri, prefix))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, b.Dx(), b.Dy())
	assert.Zero(t, b.Dx()%qrModulePixels)

	// The quiet zone is white.
	r, g, bl, _ := img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, bl})

	// The finder pattern's top-left module is drawn in the brand colour.
	r, g, bl, _ = img.At(qrBorder*qrModulePixels, qrBorder*qrModulePixels).RGBA()
	assert.Equal(t, []uint32{0x1313, 0x4242, 0x5252}, []uint32{r, g, bl})
}
