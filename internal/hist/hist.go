// Package hist prints horizontal bar charts from CSV rows holding a field,
// a label and a value, as produced by frequency tables.
package hist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

var (
	simpleBarChars  = []string{"╸", "━"}
	complexBarChars = []string{"▏", "▎", "▍", "▌", "▋", "▊", "▉", "█"}
)

// MinCols is the narrowest chart that can be drawn.
const MinCols = 30

// Options configures how histograms are read and drawn.
type Options struct {
	// Name is the histogram name used when the field column is absent.
	Name  string
	Field string
	Label string
	Value string

	Simple      bool
	Rainbow     bool
	HidePercent bool
	ForceColors bool

	// Cols is the chart width. Zero uses the terminal width, or 80 when the
	// output is not a terminal.
	Cols int
	// DomainMax is "max", "sum" or an absolute value.
	DomainMax string
	Unit      string

	NoHeaders bool
	Delimiter rune
}

func (o *Options) applyDefaults() {
	if o.Name == "" {
		o.Name = "unknown"
	}
	if o.Field == "" {
		o.Field = "field"
	}
	if o.Label == "" {
		o.Label = "value"
	}
	if o.Value == "" {
		o.Value = "count"
	}
	if o.DomainMax == "" {
		o.DomainMax = "max"
	}
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
}

// Bar is one line of a histogram.
type Bar struct {
	Label string
	Value float64
}

// Histogram is the list of bars of one field, in input order.
type Histogram struct {
	Field string
	Bars  []Bar
}

func (h *Histogram) Len() int {
	return len(h.Bars)
}

func (h *Histogram) Sum() float64 {
	var sum float64
	for _, bar := range h.Bars {
		sum += bar.Value
	}
	return sum
}

func (h *Histogram) Max() float64 {
	m := h.Bars[0].Value
	for _, bar := range h.Bars[1:] {
		m = max(m, bar.Value)
	}
	return m
}

func (h *Histogram) labelMaxWidth() int {
	width := 0
	for _, bar := range h.Bars {
		width = max(width, runewidth.StringWidth(bar.Label))
	}
	return width
}

// Read groups the rows of r into histograms sorted by field.
func Read(r io.Reader, opts Options) ([]*Histogram, error) {
	opts.applyDefaults()

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.FieldsPerRecord = -1

	first, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	header := first
	if opts.NoHeaders {
		header = make([]string, len(first))
	}

	labelPos, ok := types.ResolveColumn(header, opts.Label)
	if !ok {
		return nil, fmt.Errorf("cannot find label column %q", opts.Label)
	}
	valuePos, ok := types.ResolveColumn(header, opts.Value)
	if !ok {
		return nil, fmt.Errorf("cannot find value column %q", opts.Value)
	}
	fieldPos, hasField := types.ResolveColumn(header, opts.Field)

	byField := make(map[string]*Histogram)
	add := func(record []string) error {
		if len(record) <= max(labelPos, valuePos) {
			return fmt.Errorf("row has %d columns", len(record))
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[valuePos]), 64)
		if err != nil {
			return fmt.Errorf("could not parse value %q", record[valuePos])
		}

		field := opts.Name
		if hasField && fieldPos < len(record) {
			field = record[fieldPos]
		}

		h, ok := byField[field]
		if !ok {
			h = &Histogram{Field: field}
			byField[field] = h
		}
		h.Bars = append(h.Bars, Bar{Label: record[labelPos], Value: value})
		return nil
	}

	if opts.NoHeaders {
		if err := add(first); err != nil {
			return nil, err
		}
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := add(record); err != nil {
			return nil, err
		}
	}

	histograms := make([]*Histogram, 0, len(byField))
	for _, h := range byField {
		histograms = append(histograms, h)
	}
	slices.SortFunc(histograms, func(a, b *Histogram) int {
		return strings.Compare(a.Field, b.Field)
	})
	return histograms, nil
}

// Run reads histograms from r and draws them on w.
func Run(r io.Reader, w io.Writer, opts Options) error {
	histograms, err := Read(r, opts)
	if err != nil {
		return err
	}
	return Render(w, histograms, opts)
}

// Render draws histograms on w. Colors are emitted only when w is a
// terminal, unless ForceColors is set.
func Render(w io.Writer, histograms []*Histogram, opts Options) error {
	opts.applyDefaults()

	cols := opts.Cols
	if cols <= 0 {
		cols = terminalCols(w)
	}
	if cols < MinCols {
		return errors.New("not enough cols to print anything")
	}

	d := newDrawer(w, opts)
	for _, h := range histograms {
		if h.Len() == 0 {
			continue
		}
		if err := d.draw(h, cols); err != nil {
			return err
		}
	}
	return nil
}

func terminalCols(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(f.Fd()) {
		if width, _, err := term.GetSize(f.Fd()); err == nil && width > 0 {
			return width
		}
	}
	return 80
}

type drawer struct {
	w       io.Writer
	opts    Options
	printer *message.Printer
	chars   []string

	field   lipgloss.Style
	info    lipgloss.Style
	percent lipgloss.Style
	dim     lipgloss.Style
	rainbow []lipgloss.Style
}

func newDrawer(w io.Writer, opts Options) *drawer {
	renderer := lipgloss.NewRenderer(w)
	if opts.ForceColors {
		renderer.SetColorProfile(termenv.ANSI)
	}

	chars := complexBarChars
	if opts.Simple {
		chars = simpleBarChars
	}

	d := &drawer{
		w:       w,
		opts:    opts,
		printer: message.NewPrinter(language.English),
		chars:   chars,
		field:   renderer.NewStyle().Foreground(lipgloss.Color("2")),
		info:    renderer.NewStyle().Foreground(lipgloss.Color("6")),
		percent: renderer.NewStyle().Foreground(lipgloss.Color("5")),
		dim:     renderer.NewStyle().Faint(true),
	}
	for _, c := range []string{"1", "3", "2", "6", "4", "5"} {
		d.rainbow = append(d.rainbow, renderer.NewStyle().Foreground(lipgloss.Color(c)))
	}
	return d
}

func (d *drawer) format(f float64) string {
	return d.printer.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}

func (d *drawer) domainMax(h *Histogram) (float64, error) {
	switch d.opts.DomainMax {
	case "max":
		return h.Max(), nil
	case "sum":
		return h.Sum(), nil
	}
	f, err := strconv.ParseFloat(d.opts.DomainMax, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown domain max %q, should be one of \"max\", \"sum\" or a number", d.opts.DomainMax)
	}
	return f, nil
}

func (d *drawer) draw(h *Histogram, cols int) error {
	sum := h.Sum()
	domainMax, err := d.domainMax(h)
	if err != nil {
		return err
	}

	unit := d.opts.Unit
	fmt.Fprintf(d.w, "\nHistogram for %s (bars: %s, sum: %s, max: %s):\n\n",
		d.field.Render(h.Field),
		d.info.Render(d.format(float64(h.Len()))),
		d.info.Render(d.format(sum)+unit),
		d.info.Render(d.format(h.Max())+unit))

	pctCols := 8
	if d.opts.HidePercent {
		pctCols = 0
	}

	countCols := 0
	for _, bar := range h.Bars {
		countCols = max(countCols, utf8.RuneCountInString(d.format(bar.Value)))
	}

	remaining := cols - pctCols
	labelCols := min(remaining*4/10, h.labelMaxWidth())
	barCols := remaining - countCols - runewidth.StringWidth(unit) - labelCols - 4
	if barCols < 1 {
		return errors.New("not enough cols to draw the bars")
	}

	odd := false
	for i, bar := range h.Bars {
		width := scale(bar.Value, domainMax, float64(barCols))
		drawn := createBar(d.chars, min(width, float64(barCols)))
		drawn += strings.Repeat(" ", max(0, barCols-utf8.RuneCountInString(drawn)))

		switch {
		case d.opts.Rainbow:
			drawn = d.rainbow[i%len(d.rainbow)].Render(drawn)
		case !d.opts.Simple:
			if odd {
				drawn = d.dim.Render(drawn)
			}
			odd = !odd
		}

		label := runewidth.FillRight(runewidth.Truncate(bar.Label, labelCols, "…"), labelCols)
		switch bar.Label {
		case "<rest>", "<null>", "<NaN>":
			label = d.dim.Render(label)
		}

		pct := ""
		if !d.opts.HidePercent {
			pct = d.percent.Render(fmt.Sprintf(" %6.2f%%", bar.Value/sum*100))
		}

		count := runewidth.FillLeft(d.format(bar.Value), countCols)
		fmt.Fprintf(d.w, "%s |%s%s|%s|\n", label, d.info.Render(count+unit), pct, drawn)
	}
	return nil
}

// scale maps x from [0, domainMax] to [0, size].
func scale(x, domainMax, size float64) float64 {
	if domainMax == 0 {
		return 0
	}
	return max(0, x*size/domainMax)
}

// createBar draws width cells of full chars, the fractional remainder
// rendered with a partial char.
func createBar(chars []string, width float64) string {
	full := chars[len(chars)-1]
	whole := int(width)
	bar := strings.Repeat(full, whole)

	fract := width - float64(whole)
	if fract < 1e-9 {
		return bar
	}
	return bar + chars[int(float64(len(chars)-1)*fract)]
}
