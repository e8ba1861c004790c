package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/boombuler/barcode/qr"
)

const (
	qrModulePixels = 10
	qrBorder       = 5
)

var qrForeground = color.RGBA{R: 0x13, G: 0x42, B: 0x52, A: 0xff}

// QRCodeDataURI renders data as a PNG QR code and returns it as a data URI.
func QRCodeDataURI(data string) (string, error) {
	code, err := qr.Encode(data, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}

	modules := code.Bounds().Dx()
	size := (modules + 2*qrBorder) * qrModulePixels
	img := image.NewPaletted(image.Rect(0, 0, size, size), color.Palette{color.White, qrForeground})

	for my := 0; my < modules; my++ {
		for mx := 0; mx < modules; mx++ {
			r, _, _, _ := code.At(mx, my).RGBA()
			if r >= 0x8000 {
				continue
			}
			x0 := (mx + qrBorder) * qrModulePixels
			y0 := (my + qrBorder) * qrModulePixels
			for y := y0; y < y0+qrModulePixels; y++ {
				for x := x0; x < x0+qrModulePixels; x++ {
					img.SetColorIndex(x, y, 1)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
