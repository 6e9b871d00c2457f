package ui

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeIcon_PNG(t *testing.T) {
	b, err := encodeIcon(LevelGreen, "linux")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())

	// Corners are transparent, the center of the disc is not.
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a)
	_, _, _, a = img.At(16, 4).RGBA()
	assert.NotZero(t, a)
}

func TestEncodeIcon_ICO(t *testing.T) {
	b, err := encodeIcon(LevelRed, "windows")
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(b), 6+16*len(iconSizes))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(b[2:4]))
	assert.Equal(t, uint16(len(iconSizes)), binary.LittleEndian.Uint16(b[4:6]))

	for i, size := range iconSizes {
		entry := b[6+16*i:]
		assert.Equal(t, byte(size), entry[0])
		n := binary.LittleEndian.Uint32(entry[8:12])
		off := binary.LittleEndian.Uint32(entry[12:16])
		require.LessOrEqual(t, int(off+n), len(b))
		img, err := png.Decode(bytes.NewReader(b[off : off+n]))
		require.NoError(t, err)
		assert.Equal(t, size, img.Bounds().Dx())
	}
}

func TestIcon_LevelsDiffer(t *testing.T) {
	seen := map[string]Level{}
	for _, l := range []Level{LevelGreen, LevelYellow, LevelRed, LevelMuted} {
		key := string(Icon(l))
		_, dup := seen[key]
		assert.False(t, dup, "icon for %v duplicates another level", l)
		seen[key] = l
	}
}
