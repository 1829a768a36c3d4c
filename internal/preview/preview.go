// Package preview renders published chunk meshes into a top-down image.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"citysim/internal/meshing"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Render paints one pixel per vertex for a size x size grid of n-quad
// chunks. Chunks without a mesh stay transparent; a later mesh for the
// same chunk wins.
func Render(meshes []meshing.Mesh, n, size int) *image.RGBA {
	edge := size*n + 1
	img := image.NewRGBA(image.Rect(0, 0, edge, edge))
	row := n + 1
	for _, m := range meshes {
		if len(m.Colors) != row*row {
			continue
		}
		ox, oy := m.Coord[0]*n, m.Coord[1]*n
		for y := 0; y <= n; y++ {
			for x := 0; x <= n; x++ {
				img.SetRGBA(ox+x, oy+y, toRGBA(m.Colors[y*row+x]))
			}
		}
	}
	return img
}

func toRGBA(c mgl32.Vec4) color.RGBA {
	b := func(v float32) uint8 { return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5) }
	// image.RGBA stores premultiplied alpha
	a := mgl32.Clamp(c.W(), 0, 1)
	return color.RGBA{R: b(c.X() * a), G: b(c.Y() * a), B: b(c.Z() * a), A: b(a)}
}

// Scale resamples src to a square of pixels edge length.
func Scale(src image.Image, pixels int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, pixels, pixels))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// Caption writes a line of text into the top-left corner.
func Caption(img draw.Image, text string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, 4+basicfont.Face7x13.Ascent),
	}
	d.DrawString(text)
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode preview: %w", err)
	}
	return f.Close()
}
