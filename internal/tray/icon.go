package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
)

const iconSize = 32

var (
	bodyColor   = color.RGBA{R: 0x2b, G: 0x6c, B: 0xb0, A: 0xff}
	buttonColor = color.RGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff}
)

// Icon renders the tray icon: PNG everywhere, wrapped in an ICO container
// on Windows.
func Icon() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, drawIcon(iconSize)); err != nil {
		return nil, err
	}
	if runtime.GOOS == "windows" {
		return wrapICO(buf.Bytes(), iconSize), nil
	}
	return buf.Bytes(), nil
}

// drawIcon draws a gamepad silhouette: a rounded body with a D-pad on the
// left and two face buttons on the right.
func drawIcon(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	s := float64(size)

	inEllipse := func(x, y, cx, cy, rx, ry float64) bool {
		dx, dy := (x-cx)/rx, (y-cy)/ry
		return dx*dx+dy*dy <= 1
	}
	for py := range size {
		for px := range size {
			x, y := float64(px)+0.5, float64(py)+0.5
			body := inEllipse(x, y, s*0.30, s*0.55, s*0.26, s*0.30) ||
				inEllipse(x, y, s*0.70, s*0.55, s*0.26, s*0.30) ||
				(x > s*0.30 && x < s*0.70 && y > s*0.30 && y < s*0.70)
			if !body {
				continue
			}
			c := bodyColor
			dpad := (x > s*0.19 && x < s*0.37 && y > s*0.50 && y < s*0.58) ||
				(x > s*0.24 && x < s*0.32 && y > s*0.44 && y < s*0.64)
			face := inEllipse(x, y, s*0.66, s*0.48, s*0.05, s*0.05) ||
				inEllipse(x, y, s*0.76, s*0.60, s*0.05, s*0.05)
			if dpad || face {
				c = buttonColor
			}
			img.SetRGBA(px, py, c)
		}
	}
	return img
}

// wrapICO embeds one PNG image in an ICO file.
func wrapICO(pngData []byte, size int) []byte {
	const headerLen = 6 + 16
	var buf bytes.Buffer
	dim := uint8(size)
	if size >= 256 {
		dim = 0
	}
	binary.Write(&buf, binary.LittleEndian, struct {
		Reserved, Type, Count uint16
		Width, Height         uint8
		Colors, Reserved2     uint8
		Planes, BitCount      uint16
		Size, Offset          uint32
	}{
		Type:     1,
		Count:    1,
		Width:    dim,
		Height:   dim,
		Planes:   1,
		BitCount: 32,
		Size:     uint32(len(pngData)),
		Offset:   headerLen,
	})
	buf.Write(pngData)
	return buf.Bytes()
}
