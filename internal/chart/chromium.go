package chart

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultChromiumTimeout = 30 * time.Second

var svgPage = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html><body style="margin:0;background:#fff;font-family:sans-serif">
<svg data-ready="true" xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}">
  <text x="{{.MidX}}" y="30" text-anchor="middle" font-size="18">Events numbers</text>
  <line x1="{{.Left}}" y1="{{.Top}}" x2="{{.Left}}" y2="{{.Bottom}}" stroke="#202020"/>
  <line x1="{{.Left}}" y1="{{.Bottom}}" x2="{{.Right}}" y2="{{.Bottom}}" stroke="#202020"/>
  {{range .Bars}}
  <rect x="{{.X}}" y="{{.Y}}" width="{{.W}}" height="{{.H}}" fill="#1f77b4"/>
  <text x="{{.LabelX}}" y="{{.LabelY}}" text-anchor="middle" font-size="11">{{.Label}}</text>
  {{end}}
  <text x="{{.MidX}}" y="{{.DateY}}" text-anchor="middle" font-size="13">Date</text>
  <text x="{{.Left}}" y="{{.FooterY}}" font-size="13">{{.Footer}}</text>
</svg>
</body></html>`))

type svgBar struct {
	X, Y, W, H     int
	LabelX, LabelY int
	Label          string
}

type svgView struct {
	Width, Height            int
	Left, Right, Top, Bottom int
	MidX, DateY, FooterY     int
	Bars                     []svgBar
	Footer                   string
}

// Chromium lays the chart out as SVG and screenshots it with a headless
// Chromium driven by chromedp.
type Chromium struct {
	width, height int
	timeout       time.Duration
}

func NewChromium(width, height int, timeout time.Duration) *Chromium {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if timeout <= 0 {
		timeout = defaultChromiumTimeout
	}
	return &Chromium{width: width, height: height, timeout: timeout}
}

// Page returns the HTML document that gets screenshotted.
func (c *Chromium) Page(data Data) ([]byte, error) {
	v := svgView{
		Width: c.width, Height: c.height,
		Left: marginLeft, Right: c.width - marginRight,
		Top: marginTop, Bottom: c.height - marginBottom,
		MidX:    c.width / 2,
		DateY:   c.height - marginBottom + 60,
		FooterY: c.height - 30,
		Footer:  data.Footer(),
	}

	bars := data.Bars()
	top := data.maxValue() + 1
	plotW, plotH := v.Right-v.Left, v.Bottom-v.Top
	if len(bars) > 0 {
		slot := plotW / len(bars)
		w := max(slot/5, 2)
		for i, b := range bars {
			x := v.Left + i*slot + (slot-w)/2
			h := b.Value * plotH / top
			v.Bars = append(v.Bars, svgBar{
				X: x, Y: v.Bottom - h, W: w, H: h,
				LabelX: x + w/2, LabelY: v.Bottom + 18 + (i%2)*14,
				Label: b.Label,
			})
		}
	}

	var buf bytes.Buffer
	if err := svgPage.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("chart: render page: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Chromium) Render(parent context.Context, data Data) ([]byte, error) {
	page, err := c.Page(data)
	if err != nil {
		return nil, err
	}

	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, c.timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(c.width), int64(c.height)),
		chromedp.Navigate("data:text/html;base64," + base64.StdEncoding.EncodeToString(page)),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("chart: chromedp run failed: %w", err)
	}
	return png, nil
}
