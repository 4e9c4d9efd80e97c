// Package chart renders the event frequency report as a PNG bar chart.
package chart

import (
	"context"
	"fmt"
	"sort"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Data is the statistics report being drawn.
type Data struct {
	Total             int
	TotalCurrentWeek  int
	TotalCurrentMonth int
	PerDays           map[string]int // YYYY-MM-DD -> events starting that day
}

// Bar is one column of the chart.
type Bar struct {
	Label string
	Value int
}

// Bars returns the per-day counts in date order.
func (d Data) Bars() []Bar {
	bars := make([]Bar, 0, len(d.PerDays))
	for day, n := range d.PerDays {
		bars = append(bars, Bar{Label: day, Value: n})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Label < bars[j].Label })
	return bars
}

// Footer is the caption printed under the chart.
func (d Data) Footer() string {
	return fmt.Sprintf("total: %d    total-current-week: %d    total-current-month: %d",
		d.Total, d.TotalCurrentWeek, d.TotalCurrentMonth)
}

func (d Data) maxValue() int {
	m := 0
	for _, n := range d.PerDays {
		if n > m {
			m = n
		}
	}
	return m
}

// Renderer turns a report into PNG bytes.
type Renderer interface {
	Render(ctx context.Context, data Data) ([]byte, error)
}

// New returns the renderer registered under name: "native" or "chromium".
func New(name string) (Renderer, error) {
	switch name {
	case "", "native":
		return NewNative(DefaultWidth, DefaultHeight), nil
	case "chromium":
		return NewChromium(DefaultWidth, DefaultHeight, 0), nil
	default:
		return nil, fmt.Errorf("unknown chart renderer %q", name)
	}
}
