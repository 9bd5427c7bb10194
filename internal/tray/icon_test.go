package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawIcon(t *testing.T) {
	img := drawIcon(iconSize)
	assert.Equal(t, iconSize, img.Bounds().Dx())
	assert.Zero(t, img.RGBAAt(0, 0).A, "corners are transparent")
	assert.Equal(t, bodyColor, img.RGBAAt(iconSize/2, iconSize/2))
}

func TestIconIsDecodable(t *testing.T) {
	data, err := Icon()
	require.NoError(t, err)
	if bytes.HasPrefix(data, []byte{0, 0, 1, 0}) {
		data = data[22:]
	}
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, iconSize, img.Bounds().Dy())
}

func TestWrapICO(t *testing.T) {
	payload := []byte("png")
	ico := wrapICO(payload, 32)
	require.Len(t, ico, 22+len(payload))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(ico[2:]), "type icon")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(ico[4:]), "one image")
	assert.Equal(t, uint8(32), ico[6])
	assert.Equal(t, uint32(len(payload)), binary.LittleEndian.Uint32(ico[14:]))
	assert.Equal(t, uint32(22), binary.LittleEndian.Uint32(ico[18:]))
	assert.Equal(t, payload, ico[22:])

	assert.Zero(t, wrapICO(payload, 256)[6], "256 is stored as 0")
}
