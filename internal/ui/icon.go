package ui

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"runtime"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Tray icons are drawn at startup rather than shipped as resources: a filled
// disc in the level color with a "C" ring cut into it.
var iconSizes = []int{16, 32}

var (
	iconMu    sync.Mutex
	iconCache = map[Level][]byte{}
)

// Icon returns the encoded tray icon for a level: ICO on Windows, PNG
// elsewhere.
func Icon(l Level) []byte {
	iconMu.Lock()
	defer iconMu.Unlock()
	if b, ok := iconCache[l]; ok {
		return b
	}
	b, err := encodeIcon(l, runtime.GOOS)
	if err != nil {
		// Encoding an in-memory RGBA image does not fail in practice.
		panic(err)
	}
	iconCache[l] = b
	return b
}

func encodeIcon(l Level, goos string) ([]byte, error) {
	if goos == "windows" {
		return encodeICO(l)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, drawIcon(l, iconSizes[len(iconSizes)-1])); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func iconColors(l Level) (disc, glyph colorful.Color) {
	switch l {
	case LevelGreen:
		return LevelColor(LevelGreen), ColorBackground
	case LevelYellow:
		return mustHex(hexIconYellow), ColorHeader
	case LevelRed:
		return LevelColor(LevelRed), ColorBackground
	default:
		return ColorMuted, ColorBackground
	}
}

func toNRGBA(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(alpha * 255))}
}

// drawIcon rasterizes the glyph with 4x4 supersampling per pixel.
func drawIcon(l Level, size int) *image.NRGBA {
	const samples = 4
	disc, glyph := iconColors(l)
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	c := float64(size) / 2
	outer := c - 0.5
	ringOuter := outer * 0.68
	ringInner := outer * 0.38
	// Opening of the C, in radians either side of the positive x axis.
	gap := math.Pi / 4

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			var inDisc, inGlyph int
			for sy := 0; sy < samples; sy++ {
				for sx := 0; sx < samples; sx++ {
					px := float64(x) + (float64(sx)+0.5)/samples - c
					py := float64(y) + (float64(sy)+0.5)/samples - c
					d := math.Hypot(px, py)
					if d > outer {
						continue
					}
					inDisc++
					if d >= ringInner && d <= ringOuter && math.Abs(math.Atan2(py, px)) > gap {
						inGlyph++
					}
				}
			}
			if inDisc == 0 {
				continue
			}
			coverage := float64(inDisc) / (samples * samples)
			mix := float64(inGlyph) / float64(inDisc)
			img.SetNRGBA(x, y, toNRGBA(disc.BlendRgb(glyph, mix), coverage))
		}
	}
	return img
}

// encodeICO packs one PNG image per size into an ICO container.
func encodeICO(l Level) ([]byte, error) {
	images := make([][]byte, 0, len(iconSizes))
	for _, size := range iconSizes {
		var buf bytes.Buffer
		if err := png.Encode(&buf, drawIcon(l, size)); err != nil {
			return nil, err
		}
		images = append(images, buf.Bytes())
	}

	var out bytes.Buffer
	header := struct {
		Reserved, Type, Count uint16
	}{0, 1, uint16(len(images))}
	if err := binary.Write(&out, binary.LittleEndian, header); err != nil {
		return nil, err
	}

	offset := uint32(6 + 16*len(images))
	for i, data := range images {
		entry := struct {
			Width, Height, Colors, Reserved uint8
			Planes, BitCount                uint16
			Size, Offset                    uint32
		}{uint8(iconSizes[i]), uint8(iconSizes[i]), 0, 0, 1, 32, uint32(len(data)), offset}
		if err := binary.Write(&out, binary.LittleEndian, entry); err != nil {
			return nil, err
		}
		offset += uint32(len(data))
	}
	for _, data := range images {
		out.Write(data)
	}
	return out.Bytes(), nil
}
