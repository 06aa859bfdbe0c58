// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisSeparator       = " │ "
	terminalWidthBackup = 80
)

var plotMarkers = []byte{'*', '+'}

// Plot renders a text plot for the provided series, one marker style
// per series, sharing a single vertical scale.
func Plot(w io.Writer, title string, series []Series, width, height int) error {
	series = filterSeries(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	minVal, maxVal := seriesMinMax(series)
	if math.Abs(maxVal-minVal) < 1e-9 {
		minVal--
		maxVal++
	}

	grid := make([][]byte, height)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", width))
	}
	for si, s := range series {
		marker := plotMarkers[si%len(plotMarkers)]
		values := resample(s.Values, width)
		for x, v := range values {
			row := valueToRow(v, minVal, maxVal, height)
			grid[row][x] = marker
		}
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	topLabel := fmt.Sprintf("%.0f", maxVal)
	bottomLabel := fmt.Sprintf("%.0f", minVal)
	labelWidth := len(topLabel)
	if len(bottomLabel) > labelWidth {
		labelWidth = len(bottomLabel)
	}
	for i, line := range grid {
		label := strings.Repeat(" ", labelWidth)
		switch i {
		case 0:
			label = fmt.Sprintf("%*s", labelWidth, topLabel)
		case height - 1:
			label = fmt.Sprintf("%*s", labelWidth, bottomLabel)
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", label, axisSeparator, string(line)); err != nil {
			return err
		}
	}
	legend := make([]string, 0, len(series))
	for si, s := range series {
		legend = append(legend, fmt.Sprintf("%c %s", plotMarkers[si%len(plotMarkers)], s.Name))
	}
	if _, err := fmt.Fprintf(w, "Legend: %s\n", strings.Join(legend, "  ")); err != nil {
		return err
	}
	return nil
}

// PlotWidthFor returns the grid width available inside a total line
// width, accounting for the axis labels.
func PlotWidthFor(totalWidth int) int {
	width := totalWidth - len(axisSeparator) - 5
	if width < minPlotWidth {
		width = minPlotWidth
	}
	return width
}

func autoPlotWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		w = terminalWidthBackup
	}
	return PlotWidthFor(w)
}

func filterSeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func seriesMinMax(series []Series) (minVal, maxVal float64) {
	minVal = math.Inf(1)
	maxVal = math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
	}
	return minVal, maxVal
}

// resample stretches or squeezes values onto width columns by nearest
// index.
func resample(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	if len(values) == 1 {
		out := make([]float64, width)
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	out := make([]float64, width)
	for x := 0; x < width; x++ {
		pos := float64(x) / float64(width-1) * float64(len(values)-1)
		out[x] = values[int(math.Round(pos))]
	}
	return out
}

func valueToRow(v, minVal, maxVal float64, height int) int {
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(height-1)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}
