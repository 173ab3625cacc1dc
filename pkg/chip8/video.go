package chip8

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"gochip8/pkg/grid"
)

var (
	DefaultOnColor  = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	DefaultOffColor = color.RGBA{0x00, 0x00, 0x00, 0xFF}
)

// FramebufferRGBA decodes the display into a 64×32 RGBA8888 byte slice
// (length 64*32*4), painting lit pixels with on and dark ones with off.
func (c *CPU) FramebufferRGBA(on, off color.RGBA) []byte {
	pixels := make([]byte, VideoWidth*VideoHeight*4)
	c.FillRGBA(pixels, on, off)
	return pixels
}

// FillRGBA is FramebufferRGBA into a caller-owned buffer, for renderers that
// upload every frame. dst must hold at least 64*32*4 bytes.
func (c *CPU) FillRGBA(dst []byte, on, off color.RGBA) {
	for i, px := range c.Video {
		col := off
		if px == PixelOn {
			col = on
		}
		dst[i*4+0] = col.R
		dst[i*4+1] = col.G
		dst[i*4+2] = col.B
		dst[i*4+3] = col.A
	}
}

// FramebufferImage returns the display as an *image.RGBA using the default colors.
func (c *CPU) FramebufferImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, VideoWidth, VideoHeight))
	for i, px := range c.Video {
		x, y := grid.GetGridCoords(i, VideoWidth)
		if px == PixelOn {
			img.SetRGBA(x, y, DefaultOnColor)
		} else {
			img.SetRGBA(x, y, DefaultOffColor)
		}
	}
	return img
}

// SaveScreenshot encodes the display as a PNG and writes it to filename.
func (c *CPU) SaveScreenshot(filename string) error {
	img := c.FramebufferImage()
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
