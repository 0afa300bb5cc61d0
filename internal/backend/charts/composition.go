package charts

import (
	"bytes"
	"cmp"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"slices"
	"strconv"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// OtherLabel collects the categories beyond the bar limit
const OtherLabel = "Other"

const (
	rowHeight   = 22
	barHeight   = 16
	margin      = 12
	charWidth   = 7
	maxLabelLen = 28
	countGap    = 6
)

var palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf"}

// Bar is one labelled count of the chart
type Bar struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Bars sorts counts descending (ties by label) and folds everything past limit into OtherLabel.
// Empty labels are dropped. A limit <= 0 keeps every category.
func Bars(counts map[string]int, limit int) []Bar {
	bars := make([]Bar, 0, len(counts))
	for label, count := range counts {
		if label == "" || count <= 0 {
			continue
		}
		bars = append(bars, Bar{Label: label, Count: count})
	}
	slices.SortFunc(bars, func(a, b Bar) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	if limit <= 0 || len(bars) <= limit {
		return bars
	}
	other := Bar{Label: OtherLabel}
	for _, bar := range bars[limit:] {
		other.Count += bar.Count
	}
	return append(bars[:limit:limit], other)
}

type layout struct {
	width, height int
	labelWidth    int
	plotWidth     int
	maxCount      int
}

func newLayout(bars []Bar, width int) layout {
	l := layout{width: width, height: 2*margin + len(bars)*rowHeight}
	longest := 0
	for _, bar := range bars {
		longest = max(longest, min(len(bar.Label), maxLabelLen))
		l.maxCount = max(l.maxCount, bar.Count)
	}
	l.labelWidth = longest*charWidth + 2*countGap
	countWidth := len(strconv.Itoa(l.maxCount))*charWidth + countGap
	l.plotWidth = max(width-l.labelWidth-countWidth-2*margin, 1)
	return l
}

func (l layout) barWidth(count int) int {
	if l.maxCount == 0 {
		return 0
	}
	return max(count*l.plotWidth/l.maxCount, 1)
}

// SVG renders the bars as shapes only; labels are drawn after rasterization
func SVG(bars []Bar, width int) []byte {
	l := newLayout(bars, width)
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		l.width, l.height, l.width, l.height)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" fill="#ffffff"/>`, l.width, l.height)
	fmt.Fprintf(&b, `<rect x="%d" y="%d" width="1" height="%d" fill="#333333"/>`,
		margin+l.labelWidth-1, margin, len(bars)*rowHeight)
	for i, bar := range bars {
		y := margin + i*rowHeight + (rowHeight-barHeight)/2
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`,
			margin+l.labelWidth, y, l.barWidth(bar.Count), barHeight, palette[i%len(palette)])
	}
	b.WriteString(`</svg>`)
	return b.Bytes()
}

// PNG rasterizes the bar chart and draws category labels and counts onto it
func PNG(bars []Bar, width int) ([]byte, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no data to chart")
	}
	l := newLayout(bars, width)
	slog.Debug("charts: rendering composition chart", "bars", len(bars), "width", l.width, "height", l.height)

	canvas, err := rasterizeSVG(SVG(bars, width), l.width, l.height)
	if err != nil {
		return nil, err
	}

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.RGBA{0x22, 0x22, 0x22, 0xff}),
		Face: basicfont.Face7x13,
	}
	for i, bar := range bars {
		baseline := margin + i*rowHeight + rowHeight/2 + 4
		label := truncate(bar.Label, maxLabelLen)
		labelX := margin + l.labelWidth - countGap - len(label)*charWidth
		drawer.Dot = fixed.P(labelX, baseline)
		drawer.DrawString(label)

		drawer.Dot = fixed.P(margin+l.labelWidth+l.barWidth(bar.Count)+countGap, baseline)
		drawer.DrawString(strconv.Itoa(bar.Count))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode chart as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// rasterizeSVG renders an SVG byte slice onto a white canvas of the given dimensions
func rasterizeSVG(svgData []byte, targetW, targetH int) (*image.RGBA, error) {
	if targetW <= 0 || targetH <= 0 {
		return nil, fmt.Errorf("invalid target dimensions for SVG rendering: %dx%d", targetW, targetH)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}
	icon.SetTarget(0, 0, float64(targetW), float64(targetH))

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(targetW, targetH, dst, dst.Bounds())
	dasher := rasterx.NewDasher(targetW, targetH, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

func truncate(label string, n int) string {
	runes := []rune(label)
	if len(runes) <= n {
		return label
	}
	return string(runes[:n-1]) + "~"
}
