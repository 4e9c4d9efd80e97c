package chart

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	ink        = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	barColour  = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
)

const (
	marginLeft   = 60
	marginRight  = 30
	marginTop    = 50
	marginBottom = 120
)

// Native draws the chart in-process with the standard image packages and the
// basicfont bitmap face.
type Native struct {
	width, height int
}

func NewNative(width, height int) *Native {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Native{width: width, height: height}
}

func (n *Native) Render(ctx context.Context, data Data) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, n.width, n.height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	plot := image.Rect(marginLeft, marginTop, n.width-marginRight, n.height-marginBottom)

	// axes
	fill(img, image.Rect(plot.Min.X-1, plot.Min.Y, plot.Min.X, plot.Max.Y), ink)
	fill(img, image.Rect(plot.Min.X-1, plot.Max.Y, plot.Max.X, plot.Max.Y+1), ink)

	label(img, n.width/2-60, marginTop/2, "Events numbers")
	label(img, plot.Min.X+plot.Dx()/2-12, plot.Max.Y+60, "Date")
	label(img, 4, marginTop-10, "Number of events")

	top := data.maxValue() + 1
	for v := 0; v <= top; v++ {
		y := plot.Max.Y - v*plot.Dy()/top
		label(img, plot.Min.X-20, y+4, strconv.Itoa(v))
		fill(img, image.Rect(plot.Min.X-5, y, plot.Min.X-1, y+1), ink)
	}

	bars := data.Bars()
	if len(bars) > 0 {
		slot := plot.Dx() / len(bars)
		width := max(slot/5, 2)
		for i, b := range bars {
			x := plot.Min.X + i*slot + (slot-width)/2
			h := b.Value * plot.Dy() / top
			fill(img, image.Rect(x, plot.Max.Y-h, x+width, plot.Max.Y), barColour)
			label(img, x+width/2-35, plot.Max.Y+18+(i%2)*14, b.Label)
		}
	}

	label(img, marginLeft, n.height-30, data.Footer())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func label(img draw.Image, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(ink),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
